// ABOUTME: Group catalog operations and membership enumeration
// ABOUTME: Add, remove, and rename groups; list the codes a group contains

package codetree

import (
	"fmt"
	"sort"
)

// Code is one leaf as surfaced to callers enumerating a group.
type Code struct {
	Name string `json:"name"`
	Docs string `json:"docs"`
}

// HasGroup reports whether the group is declared in the catalog.
func (t *Tree) HasGroup(group string) bool {
	i := sort.SearchStrings(t.Groups, group)
	return i < len(t.Groups) && t.Groups[i] == group
}

// CodesInGroup returns every leaf included in the group, in index
// order. The group must be declared.
func (t *Tree) CodesInGroup(group string) ([]Code, error) {
	if !t.HasGroup(group) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, group)
	}
	var codes []Code
	t.WalkLeaves(group, func(leaf *Node, excluded bool) {
		if !excluded {
			codes = append(codes, Code{Name: leaf.Name, Docs: leaf.Docs})
		}
	})
	return codes, nil
}

// AddGroup declares a new group, returning a new tree. A new group
// contains every leaf: membership is the default and the tree gains no
// markers.
func AddGroup(t *Tree, group string) (*Tree, error) {
	if t.HasGroup(group) {
		return nil, fmt.Errorf("%w: %q", ErrGroupExists, group)
	}
	out := t.Clone()
	i := sort.SearchStrings(out.Groups, group)
	out.Groups = append(out.Groups, "")
	copy(out.Groups[i+1:], out.Groups[i:])
	out.Groups[i] = group
	return out, nil
}

// RemoveGroup drops a group from the catalog and strips its markers
// tree-wide, returning a new tree. The catalog must stay non-empty.
func RemoveGroup(t *Tree, group string) (*Tree, error) {
	if !t.HasGroup(group) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, group)
	}
	if len(t.Groups) == 1 {
		return nil, fmt.Errorf("%w: %q", ErrLastGroup, group)
	}
	out := t.Clone()
	i := sort.SearchStrings(out.Groups, group)
	out.Groups = append(out.Groups[:i], out.Groups[i+1:]...)
	out.Walk(func(n *Node) {
		n.RemoveExclude(group)
	})
	return out, nil
}

// RenameGroup renames a group in the catalog and in every marker,
// returning a new tree. Membership is unchanged.
func RenameGroup(t *Tree, from, to string) (*Tree, error) {
	if !t.HasGroup(from) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, from)
	}
	if t.HasGroup(to) {
		return nil, fmt.Errorf("%w: %q", ErrGroupExists, to)
	}
	out := t.Clone()
	i := sort.SearchStrings(out.Groups, from)
	out.Groups = append(out.Groups[:i], out.Groups[i+1:]...)
	i = sort.SearchStrings(out.Groups, to)
	out.Groups = append(out.Groups, "")
	copy(out.Groups[i+1:], out.Groups[i:])
	out.Groups[i] = to
	out.Walk(func(n *Node) {
		if n.Exclude.Contains(from) {
			n.RemoveExclude(from)
			n.AddExclude(to)
		}
	})
	return out, nil
}
