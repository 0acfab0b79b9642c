// ABOUTME: Sort and lookup index for taxonomy nodes
// ABOUTME: A single code point or an inclusive code range, compared by truncation

package codetree

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Index is the sort key of a node: either a single point ("I21") for a
// code, or an inclusive range ("I00".."I99") for a category. It is
// persisted untagged, as a plain string or a two-element sequence.
//
// A code c is placed against an index (a, b) by truncating c to the
// length of a and comparing lexicographically: the truncated code lies
// inside the index iff a <= c' <= b. Start and End are the same length
// and letters are upper case; End is empty for a single point.
type Index struct {
	Start string
	End   string
}

// SingleIndex returns the index of a single code point.
func SingleIndex(start string) Index {
	return Index{Start: start}
}

// DualIndex returns the index of an inclusive code range.
func DualIndex(start, end string) Index {
	return Index{Start: start, End: end}
}

// IsRange reports whether the index spans more than a single point.
func (ix Index) IsRange() bool {
	return ix.End != ""
}

// Less orders indexes by range start, then range end, so sibling lists
// sort into taxonomy order.
func (ix Index) Less(other Index) bool {
	if ix.Start != other.Start {
		return ix.Start < other.Start
	}
	return ix.End < other.End
}

// Compare places a normalized code relative to the index range. It
// returns 0 when the code (truncated to the index length) lies inside
// the range, a negative value when the range sits entirely below the
// code, and a positive value when it sits entirely above.
func (ix Index) Compare(code string) int {
	code = strings.ToUpper(code)
	if len(code) > len(ix.Start) {
		code = code[:len(ix.Start)]
	}
	end := ix.End
	if end == "" {
		end = ix.Start
	}
	switch {
	case code < ix.Start:
		return 1
	case code > end:
		return -1
	default:
		return 0
	}
}

// String renders the index as "I21" or "I00-I99".
func (ix Index) String() string {
	if ix.IsRange() {
		return ix.Start + "-" + ix.End
	}
	return ix.Start
}

// MarshalYAML encodes a single point as a scalar and a range as a
// two-element sequence, matching the codes-file format.
func (ix Index) MarshalYAML() (interface{}, error) {
	if ix.IsRange() {
		return []string{ix.Start, ix.End}, nil
	}
	return ix.Start, nil
}

// UnmarshalYAML accepts either form.
func (ix *Index) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var start string
		if err := value.Decode(&start); err != nil {
			return err
		}
		*ix = SingleIndex(start)
		return nil
	}
	var parts []string
	if err := value.Decode(&parts); err != nil {
		return err
	}
	return ix.fromParts(parts)
}

// MarshalJSON mirrors MarshalYAML for the JSON codes-file form.
func (ix Index) MarshalJSON() ([]byte, error) {
	if ix.IsRange() {
		return json.Marshal([]string{ix.Start, ix.End})
	}
	return json.Marshal(ix.Start)
}

// UnmarshalJSON accepts either form.
func (ix *Index) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var parts []string
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		return ix.fromParts(parts)
	}
	var start string
	if err := json.Unmarshal(data, &start); err != nil {
		return err
	}
	*ix = SingleIndex(start)
	return nil
}

func (ix *Index) fromParts(parts []string) error {
	switch len(parts) {
	case 1:
		*ix = SingleIndex(parts[0])
	case 2:
		*ix = DualIndex(parts[0], parts[1])
	default:
		return fmt.Errorf("codetree: index must be a string or [start, end], got %d elements", len(parts))
	}
	return nil
}

// SortByIndex sorts every category's children by index, recursively.
// Codes files are not assumed sorted on disk; loading applies this so
// lookup can binary-search sibling lists.
func (t *Tree) SortByIndex() {
	sortNodes(t.Categories)
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Index.Less(nodes[j].Index)
	})
	for _, n := range nodes {
		sortNodes(n.Categories)
	}
}
