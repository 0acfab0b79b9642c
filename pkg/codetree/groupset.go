// ABOUTME: Group name set serialized as a sorted string array
// ABOUTME: Backs the per-node exclude field in codes files

package codetree

import (
	"encoding/json"
	"sort"

	"gopkg.in/yaml.v3"
)

// GroupSet is a set of group names. The zero value (nil) is a valid
// empty set; membership tests are nil-safe.
type GroupSet map[string]struct{}

// NewGroupSet builds a set from the given names.
func NewGroupSet(groups ...string) GroupSet {
	set := make(GroupSet, len(groups))
	for _, g := range groups {
		set[g] = struct{}{}
	}
	return set
}

// Contains reports whether the group is in the set.
func (s GroupSet) Contains(group string) bool {
	_, ok := s[group]
	return ok
}

// Sorted returns the members in lexicographic order.
func (s GroupSet) Sorted() []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, 0, len(s))
	for g := range s {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the set.
func (s GroupSet) Clone() GroupSet {
	if s == nil {
		return nil
	}
	out := make(GroupSet, len(s))
	for g := range s {
		out[g] = struct{}{}
	}
	return out
}

// MarshalYAML encodes the set as a sorted sequence of names.
func (s GroupSet) MarshalYAML() (interface{}, error) {
	return s.Sorted(), nil
}

// UnmarshalYAML decodes a sequence of names into the set.
func (s *GroupSet) UnmarshalYAML(value *yaml.Node) error {
	var groups []string
	if err := value.Decode(&groups); err != nil {
		return err
	}
	*s = NewGroupSet(groups...)
	return nil
}

// MarshalJSON encodes the set as a sorted array of names.
func (s GroupSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of names into the set.
func (s *GroupSet) UnmarshalJSON(data []byte) error {
	var groups []string
	if err := json.Unmarshal(data, &groups); err != nil {
		return err
	}
	*s = NewGroupSet(groups...)
	return nil
}
