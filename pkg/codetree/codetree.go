// ABOUTME: Data model for a clinical code taxonomy with group exclusion markers
// ABOUTME: Defines Node and Tree structures plus traversal and deep-copy helpers

// Package codetree implements a hierarchical clinical code taxonomy
// (e.g. ICD-10 or OPCS-4) with named code groups represented by sparse
// exclusion markers. A leaf belongs to every group by default; a group
// marker on a node removes the node's whole subtree from that group
// unless a descendant explicitly carves it back in.
package codetree

// Node is one node of the taxonomy: a category when Categories is
// non-nil, a leaf code otherwise. Categories with zero children are
// indistinguishable from leaves in the persisted form, so importers
// must never produce them.
type Node struct {
	Name string `yaml:"name" json:"name"`
	Docs string `yaml:"docs" json:"docs"`

	// Index orders this node among its siblings and drives code lookup.
	Index Index `yaml:"index" json:"index"`

	// Categories holds the ordered children. nil marks a leaf code.
	Categories []*Node `yaml:"categories,omitempty" json:"categories,omitempty"`

	// Exclude lists the groups whose membership stops at this node.
	// An absent set contributes nothing; exclusion may still be
	// inherited from an ancestor.
	Exclude GroupSet `yaml:"exclude,omitempty" json:"exclude,omitempty"`

	// Highlighted and Counts are transient search/count annotations.
	// They are stripped before the tree is persisted.
	Highlighted bool    `yaml:"highlighted,omitempty" json:"highlighted,omitempty"`
	Counts      *Counts `yaml:"counts,omitempty" json:"counts,omitempty"`
}

// Tree is the taxonomy root: the top-level categories plus the catalog
// of declared group names. Groups is kept sorted and unique and is
// never empty once a tree has been loaded.
type Tree struct {
	Categories []*Node  `yaml:"categories" json:"categories"`
	Groups     []string `yaml:"groups" json:"groups"`
}

// Counts is the transient per-node aggregation triple computed for the
// active group and the current search highlights.
type Counts struct {
	TotalIncluded          int `yaml:"totalIncluded" json:"totalIncluded"`
	TotalHighlighted       int `yaml:"totalHighlighted" json:"totalHighlighted"`
	IncludedAndHighlighted int `yaml:"includedAndHighlighted" json:"includedAndHighlighted"`
}

// Add returns the component-wise sum of two triples.
func (c Counts) Add(other Counts) Counts {
	return Counts{
		TotalIncluded:          c.TotalIncluded + other.TotalIncluded,
		TotalHighlighted:       c.TotalHighlighted + other.TotalHighlighted,
		IncludedAndHighlighted: c.IncludedAndHighlighted + other.IncludedAndHighlighted,
	}
}

// IsLeaf reports whether the node is a leaf code.
func (n *Node) IsLeaf() bool {
	return n.Categories == nil
}

// AddExclude adds a group marker to the node.
func (n *Node) AddExclude(group string) {
	if n.Exclude == nil {
		n.Exclude = GroupSet{}
	}
	n.Exclude[group] = struct{}{}
}

// RemoveExclude drops a group marker from the node. An emptied set is
// nilled out so it vanishes from the persisted form.
func (n *Node) RemoveExclude(group string) {
	delete(n.Exclude, group)
	if len(n.Exclude) == 0 {
		n.Exclude = nil
	}
}

// Clone deep-copies the node and its subtree, annotations included.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Name:        n.Name,
		Docs:        n.Docs,
		Index:       n.Index,
		Exclude:     n.Exclude.Clone(),
		Highlighted: n.Highlighted,
	}
	if n.Counts != nil {
		counts := *n.Counts
		out.Counts = &counts
	}
	if n.Categories != nil {
		out.Categories = make([]*Node, len(n.Categories))
		for i, child := range n.Categories {
			out.Categories[i] = child.Clone()
		}
	}
	return out
}

// Clone deep-copies the whole tree. Mutating operations copy first so
// the caller's previous tree value stays valid.
func (t *Tree) Clone() *Tree {
	out := &Tree{
		Categories: make([]*Node, len(t.Categories)),
		Groups:     append([]string(nil), t.Groups...),
	}
	for i, child := range t.Categories {
		out.Categories[i] = child.Clone()
	}
	return out
}

// Walk visits every node of the tree in depth-first pre-order.
func (t *Tree) Walk(fn func(*Node)) {
	for _, child := range t.Categories {
		walkNode(child, fn)
	}
}

func walkNode(n *Node, fn func(*Node)) {
	fn(n)
	for _, child := range n.Categories {
		walkNode(child, fn)
	}
}

// NumNodes returns the total node count (categories plus leaves).
func (t *Tree) NumNodes() int {
	total := 0
	t.Walk(func(*Node) { total++ })
	return total
}

// NumLeaves returns the leaf code count.
func (t *Tree) NumLeaves() int {
	total := 0
	t.Walk(func(n *Node) {
		if n.IsLeaf() {
			total++
		}
	})
	return total
}
