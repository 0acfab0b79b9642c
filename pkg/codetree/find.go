// ABOUTME: Exact code lookup by per-level binary search over sorted indexes
// ABOUTME: Normalizes raw codes before comparing against index ranges

package codetree

import (
	"fmt"
	"sort"
	"strings"
)

// NormalizeCode upper-cases a raw code and strips dots and whitespace,
// producing the form indexes are compared against ("i21.0" -> "I210").
func NormalizeCode(code string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(code) {
		switch r {
		case '.', ' ', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FindExact locates the leaf whose index matches the code exactly,
// descending by binary search over each category's index-sorted
// children. Children must be in index order (SortByIndex; loading
// guarantees it). Returns ErrCodeNotFound when no leaf matches.
func (t *Tree) FindExact(code string) (*Node, error) {
	norm := NormalizeCode(code)
	if norm == "" {
		return nil, fmt.Errorf("%w: empty code", ErrCodeNotFound)
	}
	siblings := t.Categories
	for len(siblings) > 0 {
		i := sort.Search(len(siblings), func(i int) bool {
			return siblings[i].Index.Compare(norm) >= 0
		})
		if i == len(siblings) || siblings[i].Index.Compare(norm) != 0 {
			return nil, fmt.Errorf("%w: %s", ErrCodeNotFound, code)
		}
		node := siblings[i]
		if node.IsLeaf() {
			if node.Index.Start == norm {
				return node, nil
			}
			return nil, fmt.Errorf("%w: %s", ErrCodeNotFound, code)
		}
		siblings = node.Categories
	}
	return nil, fmt.Errorf("%w: %s", ErrCodeNotFound, code)
}
