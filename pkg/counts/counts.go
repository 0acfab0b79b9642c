// ABOUTME: Bottom-up count aggregation over membership and highlights
// ABOUTME: Produces per-node inclusion/highlight triples for the active group

// Package counts reduces the tree bottom-up into per-node triples of
// included, highlighted, and included-and-highlighted leaf counts for
// one group, threading inherited exclusion down exactly like the
// membership query. It runs after every tree or query change.
package counts

import "github.com/mheron/grouptree/pkg/codetree"

// Aggregate computes the transient Counts triple for every node and
// returns the root triple (the totals the user-facing counters show).
// Highlight flags are read as-is; run the search pass first.
func Aggregate(t *codetree.Tree, group string) codetree.Counts {
	var root codetree.Counts
	for _, child := range t.Categories {
		root = root.Add(aggregateNode(child, group, false))
	}
	return root
}

func aggregateNode(n *codetree.Node, group string, parentExcluded bool) codetree.Counts {
	excluded := n.IsExcluded(group, parentExcluded)
	var c codetree.Counts
	if n.IsLeaf() {
		if !excluded {
			c.TotalIncluded = 1
		}
		if n.Highlighted {
			c.TotalHighlighted = 1
		}
		if !excluded && n.Highlighted {
			c.IncludedAndHighlighted = 1
		}
	} else {
		// A child's own triple already reflects inherited exclusion;
		// summing needs no further masking.
		for _, child := range n.Categories {
			c = c.Add(aggregateNode(child, group, excluded))
		}
	}
	counts := c
	n.Counts = &counts
	return c
}
