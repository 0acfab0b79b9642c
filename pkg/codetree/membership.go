// ABOUTME: Group membership predicates over the exclusion marker chain
// ABOUTME: Exclusion is the OR of own and inherited markers, top-down

package codetree

// IsExcluded reports whether the node's subtree is excluded from the
// group, given the exclusion state of its parent. Exclusion is
// inherited: a node is excluded when any ancestor-or-self carries the
// group marker.
func (n *Node) IsExcluded(group string, parentExcluded bool) bool {
	return parentExcluded || n.Exclude.Contains(group)
}

// IsIncluded is the negation of IsExcluded.
func (n *Node) IsIncluded(group string, parentExcluded bool) bool {
	return !n.IsExcluded(group, parentExcluded)
}

// SubtreeExcluded reports the effective exclusion state of the node at
// path: the OR of the group marker over the node and its ancestors.
// Callers use it to pick between ExcludeSubtree and IncludeSubtree.
func (t *Tree) SubtreeExcluded(path Path, group string) (bool, error) {
	chain, err := t.resolveChain(path)
	if err != nil {
		return false, err
	}
	excluded := false
	for _, node := range chain {
		excluded = node.IsExcluded(group, excluded)
	}
	return excluded, nil
}

// WalkLeaves visits every leaf with its effective exclusion state for
// the group, threading parentExcluded down from the root in one pass.
func (t *Tree) WalkLeaves(group string, fn func(leaf *Node, excluded bool)) {
	for _, child := range t.Categories {
		walkLeaves(child, group, false, fn)
	}
}

func walkLeaves(n *Node, group string, parentExcluded bool, fn func(leaf *Node, excluded bool)) {
	excluded := n.IsExcluded(group, parentExcluded)
	if n.IsLeaf() {
		fn(n, excluded)
		return
	}
	for _, child := range n.Categories {
		walkLeaves(child, group, excluded, fn)
	}
}
