// ABOUTME: The check command: validate a codes file's marker hygiene
// ABOUTME: Reports redundant markers and markers naming undeclared groups

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mheron/grouptree/pkg/codefile"
	"github.com/mheron/grouptree/pkg/codetree"
)

// NewCheckCommand creates the "check" command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Validate a codes file",
		Long: `Load a codes file and report its shape: node and leaf counts, the
declared groups, redundant exclusion markers (a node marked for a group
its parent already excludes), and markers naming undeclared groups.
Exits non-zero when findings exist.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := codefile.Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "nodes:  %d\n", tree.NumNodes())
			fmt.Fprintf(out, "leaves: %d\n", tree.NumLeaves())
			fmt.Fprintf(out, "groups: %v\n", tree.Groups)

			findings := 0
			for _, finding := range checkMarkers(tree) {
				fmt.Fprintln(out, finding)
				findings++
			}
			if findings > 0 {
				return &findingsError{count: findings}
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
}

// checkMarkers walks the tree collecting minimality violations and
// markers for groups the catalog does not declare.
func checkMarkers(tree *codetree.Tree) []string {
	var findings []string

	var walk func(n *codetree.Node, path string, inherited codetree.GroupSet)
	walk = func(n *codetree.Node, path string, inherited codetree.GroupSet) {
		where := path + "/" + n.Name
		for _, g := range n.Exclude.Sorted() {
			if inherited.Contains(g) {
				findings = append(findings,
					fmt.Sprintf("redundant marker: %s excludes %q but an ancestor already does", where, g))
			}
			if !tree.HasGroup(g) {
				findings = append(findings,
					fmt.Sprintf("undeclared group: %s excludes %q which the catalog does not declare", where, g))
			}
		}

		carried := inherited
		if len(n.Exclude) > 0 {
			carried = inherited.Clone()
			if carried == nil {
				carried = codetree.GroupSet{}
			}
			for _, g := range n.Exclude.Sorted() {
				carried[g] = struct{}{}
			}
		}
		for _, child := range n.Categories {
			walk(child, where, carried)
		}
	}
	for _, child := range tree.Categories {
		walk(child, "", nil)
	}
	return findings
}
