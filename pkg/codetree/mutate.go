// ABOUTME: Minimal-edit subtree toggling for group membership
// ABOUTME: Copy-on-write exclude/include operations over sparse markers

package codetree

import "fmt"

// Path addresses a node as child indices from the root; the first
// index selects among the top-level categories.
type Path []int

// NodeAt resolves a path to its node. The empty path is invalid: the
// root is not a node.
func (t *Tree) NodeAt(path Path) (*Node, error) {
	chain, err := t.resolveChain(path)
	if err != nil {
		return nil, err
	}
	return chain[len(chain)-1], nil
}

// resolveChain returns every node along the path, outermost first.
func (t *Tree) resolveChain(path Path) ([]*Node, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	chain := make([]*Node, 0, len(path))
	siblings := t.Categories
	for depth, idx := range path {
		if idx < 0 || idx >= len(siblings) {
			return nil, fmt.Errorf("%w: index %d at depth %d (have %d children)",
				ErrInvalidPath, idx, depth, len(siblings))
		}
		node := siblings[idx]
		chain = append(chain, node)
		siblings = node.Categories
	}
	return chain, nil
}

// ExcludeSubtree removes the subtree at path from the group, returning
// a new tree; the input tree is never modified. All markers inside the
// subtree are stripped first, so the single marker placed at the target
// covers the whole subtree and the representation stays minimal no
// matter how fragmented the previous state was.
func ExcludeSubtree(t *Tree, path Path, group string) (*Tree, error) {
	out := t.Clone()
	chain, err := out.resolveChain(path)
	if err != nil {
		return nil, err
	}
	target := chain[len(chain)-1]
	for _, child := range target.Categories {
		stripGroup(child, group)
	}
	target.AddExclude(group)
	return out, nil
}

func stripGroup(n *Node, group string) {
	n.RemoveExclude(group)
	for _, child := range n.Categories {
		stripGroup(child, group)
	}
}

// IncludeSubtree puts the subtree at path back into the group while
// everything else under the nearest excluding ancestor stays out,
// returning a new tree. The walk from that ancestor down to the target
// re-excludes every sibling subtree along the path, then clears the
// markers on the path itself; the hole carved this way keeps marker
// count proportional to the inclusion boundary, not the leaf count.
//
// The target must currently be excluded by some ancestor-or-self; when
// no marker is found on the path the caller acted on stale membership
// state and the operation fails with ErrNotExcluded.
func IncludeSubtree(t *Tree, path Path, group string) (*Tree, error) {
	out := t.Clone()
	chain, err := out.resolveChain(path)
	if err != nil {
		return nil, err
	}

	// Nearest ancestor-or-self carrying the marker.
	anchor := -1
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].Exclude.Contains(group) {
			anchor = i
			break
		}
	}
	if anchor == -1 {
		return nil, fmt.Errorf("%w: group %q has no marker on path %v", ErrNotExcluded, group, path)
	}

	for i := anchor; i < len(chain)-1; i++ {
		current, next := chain[i], chain[i+1]
		for _, sibling := range current.Categories {
			if sibling != next {
				sibling.AddExclude(group)
			}
		}
		current.RemoveExclude(group)
	}
	chain[len(chain)-1].RemoveExclude(group)
	return out, nil
}
