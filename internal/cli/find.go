// ABOUTME: The find command: exact-match a code against the taxonomy
// ABOUTME: Prints the code's name and description

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mheron/grouptree/pkg/codefile"
)

// NewFindCommand creates the "find" command.
func NewFindCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "find FILE CODE",
		Short: "Look a code up in a codes file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := codefile.Load(args[0])
			if err != nil {
				return err
			}
			leaf, err := tree.FindExact(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", leaf.Name, leaf.Docs)
			return nil
		},
	}
}
