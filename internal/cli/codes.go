// ABOUTME: The codes command: list the leaf codes included in a group
// ABOUTME: Index order; optionally with descriptions

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mheron/grouptree/pkg/codefile"
)

type codesFlags struct {
	group string
	docs  bool
}

// NewCodesCommand creates the "codes" command.
func NewCodesCommand() *cobra.Command {
	flags := &codesFlags{}

	cmd := &cobra.Command{
		Use:   "codes FILE",
		Short: "List the codes included in a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := codefile.Load(args[0])
			if err != nil {
				return err
			}
			codes, err := tree.CodesInGroup(flags.group)
			if err != nil {
				return err
			}
			for _, code := range codes {
				if flags.docs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", code.Name, code.Docs)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), code.Name)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.group, "group", "", "Group to list (required)")
	cmd.Flags().BoolVar(&flags.docs, "docs", false, "Include code descriptions")
	cmd.MarkFlagRequired("group")

	return cmd
}
