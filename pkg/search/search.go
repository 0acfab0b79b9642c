// ABOUTME: Free-text search overlay for the code taxonomy
// ABOUTME: Parses comma-separated phrases and propagates highlight flags bottom-up

// Package search matches free-text queries against leaf codes and
// annotates the tree with transient highlight flags. Highlighting is
// entirely independent of group membership.
package search

import (
	"strings"

	"github.com/mheron/grouptree/pkg/codetree"
)

// Query is a parsed search query: phrases a text must contain one of,
// and phrases it must not contain any of. All phrases are lower case.
type Query struct {
	Include []string
	Exclude []string
}

// ParseQuery splits a raw query on commas into trimmed, lower-cased
// phrases. A leading '!' marks an exclude phrase; empty pieces are
// dropped.
func ParseQuery(raw string) Query {
	var q Query
	for _, piece := range strings.Split(raw, ",") {
		phrase := strings.ToLower(strings.TrimSpace(piece))
		if phrase == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(phrase, "!"); ok {
			rest = strings.TrimSpace(rest)
			if rest != "" {
				q.Exclude = append(q.Exclude, rest)
			}
			continue
		}
		q.Include = append(q.Include, phrase)
	}
	return q
}

// IsEmpty reports whether the query has no phrases at all.
func (q Query) IsEmpty() bool {
	return len(q.Include) == 0 && len(q.Exclude) == 0
}

// Matches reports whether the text satisfies the query: at least one
// include phrase is a substring of the lower-cased text and no exclude
// phrase is. A query without include phrases matches nothing.
func (q Query) Matches(text string) bool {
	if len(q.Include) == 0 {
		return false
	}
	text = strings.ToLower(text)
	hit := false
	for _, phrase := range q.Include {
		if strings.Contains(text, phrase) {
			hit = true
			break
		}
	}
	if !hit {
		return false
	}
	for _, phrase := range q.Exclude {
		if strings.Contains(text, phrase) {
			return false
		}
	}
	return true
}

// Apply sets or clears the transient Highlighted flag on every node of
// the tree for the query. A leaf is highlighted when its name or docs
// matches; a category is highlighted when any descendant leaf is.
// Re-applying the same query yields the same flags.
func Apply(t *codetree.Tree, q Query) {
	for _, child := range t.Categories {
		applyNode(child, q)
	}
}

func applyNode(n *codetree.Node, q Query) bool {
	if n.IsLeaf() {
		n.Highlighted = q.Matches(n.Name) || q.Matches(n.Docs)
		return n.Highlighted
	}
	// Every child is visited even after a hit: their flags must be
	// set too.
	any := false
	for _, child := range n.Categories {
		if applyNode(child, q) {
			any = true
		}
	}
	n.Highlighted = any
	return any
}
