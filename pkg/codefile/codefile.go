// ABOUTME: Load/save collaborator for codes files
// ABOUTME: YAML, JSON, and JSONC codecs with validation, sorting, and atomic writes

// Package codefile reads and writes codes files: the persisted
// {categories, groups} document holding a taxonomy and its group
// markers. Loading validates the group catalog and sorts every child
// list by index; saving strips transient annotations and replaces the
// file atomically.
package codefile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mheron/grouptree/pkg/codetree"
)

// Format identifies a codes-file encoding.
type Format int

const (
	// FormatYAML is the native codes-file format
	FormatYAML Format = iota

	// FormatJSON is the plain JSON equivalent
	FormatJSON

	// FormatJSONC is JSON with comments and trailing commas; written
	// back as plain JSON
	FormatJSONC
)

// String returns the canonical extension-ish name of the format.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatJSONC:
		return "jsonc"
	}
	return "unknown"
}

// DetectFormat picks the format from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".jsonc":
		return FormatJSONC, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
}

// Load reads the codes file at path, choosing the codec by extension.
func Load(path string) (*codetree.Tree, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("codefile: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, format)
}

// Read decodes a codes file from a byte source. The child lists are
// not assumed sorted on disk; they are sorted by index here so lookup
// can binary-search them. A file without a non-empty groups key is
// rejected.
func Read(r io.Reader, format Format) (*codetree.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("codefile: read: %w", err)
	}

	tree := &codetree.Tree{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, tree); err != nil {
			return nil, fmt.Errorf("codefile: parse yaml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, tree); err != nil {
			return nil, fmt.Errorf("codefile: parse json: %w", err)
		}
	case FormatJSONC:
		if err := json.Unmarshal(jsonc.ToJSON(data), tree); err != nil {
			return nil, fmt.Errorf("codefile: parse jsonc: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}

	if len(tree.Groups) == 0 {
		return nil, fmt.Errorf("%w: add a groups key to the file", ErrMissingGroups)
	}
	tree.Groups = normalizeGroups(tree.Groups)
	tree.SortByIndex()
	StripTransient(tree)
	return tree, nil
}

// Save writes the tree to path in the format its extension names. The
// write goes to a temp file in the same directory, is fsynced, then
// renamed over the target, so a crash never leaves a half-written
// codes file.
func Save(path string, t *codetree.Tree) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".codes-*")
	if err != nil {
		return fmt.Errorf("codefile: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, format, t); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("codefile: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("codefile: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("codefile: rename: %w", err)
	}
	return nil
}

// Write encodes the tree. Transient annotations are stripped from a
// copy first; the caller's tree keeps its highlights and counts.
func Write(w io.Writer, format Format, t *codetree.Tree) error {
	clean := t.Clone()
	StripTransient(clean)

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(clean); err != nil {
			return fmt.Errorf("codefile: encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON, FormatJSONC:
		data, err := json.MarshalIndent(clean, "", "  ")
		if err != nil {
			return fmt.Errorf("codefile: encode json: %w", err)
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("codefile: write: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnknownFormat, format)
}

// StripTransient clears the highlight and count annotations in place.
// Persisted files must never contain them.
func StripTransient(t *codetree.Tree) {
	t.Walk(func(n *codetree.Node) {
		n.Highlighted = false
		n.Counts = nil
	})
}

func normalizeGroups(groups []string) []string {
	sort.Strings(groups)
	out := groups[:0]
	for i, g := range groups {
		if i == 0 || g != groups[i-1] {
			out = append(out, g)
		}
	}
	return out
}
