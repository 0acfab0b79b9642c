// ABOUTME: The groups command: list the groups a codes file declares
// ABOUTME: One name per line, in catalog order

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mheron/grouptree/pkg/codefile"
)

// NewGroupsCommand creates the "groups" command.
func NewGroupsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "groups FILE",
		Short: "List the groups declared in a codes file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := codefile.Load(args[0])
			if err != nil {
				return err
			}
			for _, g := range tree.Groups {
				fmt.Fprintln(cmd.OutOrStdout(), g)
			}
			return nil
		},
	}
}
