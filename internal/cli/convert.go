// ABOUTME: The convert command: rewrite a codes file in another format
// ABOUTME: Formats are chosen by the file extensions

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mheron/grouptree/pkg/codefile"
)

// NewConvertCommand creates the "convert" command.
func NewConvertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert SRC DST",
		Short: "Convert a codes file between YAML, JSON, and JSONC",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := codefile.Load(args[0])
			if err != nil {
				return err
			}
			if err := codefile.Save(args[1], tree); err != nil {
				return err
			}
			srcFormat, _ := codefile.DetectFormat(args[0])
			dstFormat, _ := codefile.DetectFormat(args[1])
			fmt.Fprintf(cmd.OutOrStdout(), "converted %s (%s) -> %s (%s)\n",
				args[0], srcFormat, args[1], dstFormat)
			return nil
		},
	}
}
