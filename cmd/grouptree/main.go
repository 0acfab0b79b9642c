// ABOUTME: Entry point for the grouptree binary
// ABOUTME: Builds the command tree and maps errors to exit codes

package main

import (
	"github.com/mheron/grouptree/internal/cli"
)

// version is stamped at build time via ldflags.
var version = "dev"

func main() {
	cli.Version = version
	cli.Execute(cli.NewRootCommand())
}
