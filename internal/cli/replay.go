// ABOUTME: The replay command: recover unsaved edits from a session journal
// ABOUTME: Dry run by default; --save writes the recovered tree back

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mheron/grouptree/pkg/session"
)

// NewReplayCommand creates the "replay" command.
func NewReplayCommand() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "replay JOURNAL",
		Short: "Rebuild an interrupted session from its edit journal",
		Long: `Re-apply the unsaved edits recorded in a session journal onto a fresh
load of its codes file and report the recovered state. Replay refuses a
journal whose codes file changed since the session opened it. Without
--save this is a dry run; the journal is left in place either way until
a save checkpoints it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Replay(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			info := s.Info()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:     %s\n", info.Path)
			fmt.Fprintf(out, "group:    %s\n", info.Group)
			fmt.Fprintf(out, "edits:    %d\n", info.Revision)
			fmt.Fprintf(out, "included: %d\n", info.Counts.TotalIncluded)

			if !save {
				fmt.Fprintln(out, "dry run; pass --save to write the recovered edits")
				return nil
			}
			if err := s.Save(); err != nil {
				return err
			}
			fmt.Fprintf(out, "saved %s\n", info.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Write the recovered edits back to the codes file")
	return cmd
}
