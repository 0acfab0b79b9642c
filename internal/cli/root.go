// ABOUTME: Cobra command tree for the grouptree binary
// ABOUTME: Root command wires persistent logging flags and exit-code handling

// Package cli implements the grouptree command tree. Each subcommand
// lives in its own file and is registered on the root command here.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mheron/grouptree/internal/logger"
)

// Exit codes: 1 for usage and load errors, 2 for validation findings.
const (
	exitGeneral  = 1
	exitFindings = 2
)

// findingsError marks a command that completed but found problems
// worth a distinct exit code (the check command).
type findingsError struct {
	count int
}

func (e *findingsError) Error() string {
	return fmt.Sprintf("%d finding(s)", e.count)
}

var (
	logLevel  string
	logPretty bool
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewRootCommand creates the root command with every subcommand
// registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "grouptree",
		Short: "Group editor for hierarchical clinical code taxonomies",
		Long: `grouptree edits named code groups over a clinical coding taxonomy
(ICD-10, OPCS-4). Groups are stored as sparse exclusion markers in the
codes file; toggling a subtree in or out of a group keeps the marker
set minimal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "pretty", logger.AutoPretty(), "Pretty console logging")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewGroupsCommand())
	rootCmd.AddCommand(NewCodesCommand())
	rootCmd.AddCommand(NewFindCommand())
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewConvertCommand())
	rootCmd.AddCommand(NewReplayCommand())

	return rootCmd
}

// Execute runs the root command and translates errors to exit codes.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		var findings *findingsError
		if errors.As(err, &findings) {
			fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
			os.Exit(exitFindings)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitGeneral)
	}
}
