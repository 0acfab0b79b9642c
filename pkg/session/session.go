// ABOUTME: Editing-session facade over the tree engine
// ABOUTME: Orchestrates toggles, search, and counts; journals edits; stamps revisions

// Package session ties the engine packages together for one editing
// session: it holds the current tree, active group, and search query,
// dispatches subtree toggles, re-runs the search and count passes after
// every change, journals each edit, and saves through codefile. All
// methods serialize behind the session mutex, so the engine itself only
// ever runs single-threaded.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mheron/grouptree/pkg/codefile"
	"github.com/mheron/grouptree/pkg/codetree"
	"github.com/mheron/grouptree/pkg/counts"
	"github.com/mheron/grouptree/pkg/journal"
	"github.com/mheron/grouptree/pkg/search"
)

// ErrNotFound indicates a session id unknown to the manager.
var ErrNotFound = errors.New("session: not found")

// Options configures Open.
type Options struct {
	// Group selects the initially active group; empty picks the first
	// declared group.
	Group string

	// JournalPath overrides the journal location; empty appends
	// ".journal" to the codes-file path.
	JournalPath string

	// NoJournal disables edit journaling for the session.
	NoJournal bool
}

// Session is one user's editing session on a codes file.
type Session struct {
	mu sync.Mutex

	id       string
	path     string
	tree     *codetree.Tree
	group    string
	rawQuery string
	query    search.Query
	revision uint64
	stale    bool
	root     codetree.Counts
	jnl      *journal.Journal
}

// Info is the session summary handed to callers.
type Info struct {
	ID       string          `json:"id"`
	Path     string          `json:"path"`
	Groups   []string        `json:"groups"`
	Group    string          `json:"group"`
	Query    string          `json:"query"`
	Revision uint64          `json:"revision"`
	Stale    bool            `json:"stale"`
	Counts   codetree.Counts `json:"counts"`
}

// Open loads the codes file at path and starts a session on it. Unless
// disabled, a journal is opened next to the file and anchored to the
// file's current content hash. A journal still holding a crashed
// session's entries is discarded and re-anchored: opening fresh is the
// choice to abandon those edits, and recovery goes through Replay.
func Open(path string, opts Options) (*Session, error) {
	tree, err := codefile.Load(path)
	if err != nil {
		return nil, err
	}

	group := opts.Group
	if group == "" {
		group = tree.Groups[0]
	} else if !tree.HasGroup(group) {
		return nil, fmt.Errorf("%w: %q", codetree.ErrUnknownGroup, group)
	}

	s := &Session{
		id:    uuid.NewString(),
		path:  path,
		tree:  tree,
		group: group,
	}

	if !opts.NoJournal {
		jnlPath := opts.JournalPath
		if jnlPath == "" {
			jnlPath = path + ".journal"
		}
		hash, err := journal.HashFile(path)
		if err != nil {
			return nil, err
		}
		jnl := &journal.Journal{Path: jnlPath}
		if err := jnl.Open(); err != nil {
			return nil, err
		}
		if jnl.Seq() > 0 {
			err = jnl.Checkpoint(path, hash)
		} else {
			err = jnl.Append(journal.OpOpen, journal.OpenPayload{Path: path, Hash: hash})
		}
		if err != nil {
			jnl.Close()
			return nil, err
		}
		s.jnl = jnl
	}

	s.refresh()
	return s, nil
}

// refresh re-runs the search and count passes. Callers hold the mutex.
func (s *Session) refresh() {
	search.Apply(s.tree, s.query)
	s.root = counts.Aggregate(s.tree, s.group)
}

// record journals one edit; a nil journal records nothing.
func (s *Session) record(op journal.OpType, payload interface{}) error {
	if s.jnl == nil {
		return nil
	}
	return s.jnl.Append(op, payload)
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Path returns the codes-file path the session edits.
func (s *Session) Path() string { return s.path }

// Info returns the session summary.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:       s.id,
		Path:     s.path,
		Groups:   append([]string(nil), s.tree.Groups...),
		Group:    s.group,
		Query:    s.rawQuery,
		Revision: s.revision,
		Stale:    s.stale,
		Counts:   s.root,
	}
}

// Snapshot returns a deep copy of the annotated tree: highlight flags
// and count triples included, safe to marshal outside the lock.
func (s *Session) Snapshot() *codetree.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Clone()
}

// NumNodes returns the node count of the session's tree.
func (s *Session) NumNodes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.NumNodes()
}

// RootCounts returns the current root count triple.
func (s *Session) RootCounts() codetree.Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

// Revision returns the current revision stamp.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// MarkStale flags the session's codes file as changed on disk. The
// session keeps working; saving overwrites the outside change.
func (s *Session) MarkStale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale = true
}

// Stale reports whether the codes file changed beneath the session.
func (s *Session) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

// SetGroup selects the active group and recomputes counts.
func (s *Session) SetGroup(group string) (codetree.Counts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.tree.HasGroup(group) {
		return codetree.Counts{}, fmt.Errorf("%w: %q", codetree.ErrUnknownGroup, group)
	}
	if err := s.record(journal.OpSetGroup, journal.GroupPayload{Group: group}); err != nil {
		return codetree.Counts{}, err
	}
	s.group = group
	s.refresh()
	return s.root, nil
}

// SetQuery sets the search terms, re-runs the highlight pass, and
// recomputes counts. The query is transient and never journaled.
func (s *Session) SetQuery(raw string) codetree.Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawQuery = raw
	s.query = search.ParseQuery(raw)
	s.refresh()
	return s.root
}

// Toggle flips the subtree at path in or out of the active group:
// membership decides the direction, so callers cannot issue the wrong
// operation against stale state. Returns the new root counts.
func (s *Session) Toggle(path codetree.Path) (codetree.Counts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	excluded, err := s.tree.SubtreeExcluded(path, s.group)
	if err != nil {
		return codetree.Counts{}, err
	}

	var next *codetree.Tree
	op := journal.OpExclude
	if excluded {
		op = journal.OpInclude
		next, err = codetree.IncludeSubtree(s.tree, path, s.group)
	} else {
		next, err = codetree.ExcludeSubtree(s.tree, path, s.group)
	}
	if err != nil {
		return codetree.Counts{}, err
	}

	if err := s.record(op, journal.TogglePayload{Path: path, Group: s.group}); err != nil {
		return codetree.Counts{}, err
	}
	s.tree = next
	s.revision++
	s.refresh()
	return s.root, nil
}

// AddGroup declares a new group. The new group contains every leaf.
func (s *Session) AddGroup(group string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := codetree.AddGroup(s.tree, group)
	if err != nil {
		return err
	}
	if err := s.record(journal.OpAddGroup, journal.GroupPayload{Group: group}); err != nil {
		return err
	}
	s.tree = next
	s.revision++
	s.refresh()
	return nil
}

// RemoveGroup drops a group and its markers. When the active group is
// removed, the first remaining group becomes active.
func (s *Session) RemoveGroup(group string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := codetree.RemoveGroup(s.tree, group)
	if err != nil {
		return err
	}
	if err := s.record(journal.OpRemoveGroup, journal.GroupPayload{Group: group}); err != nil {
		return err
	}
	s.tree = next
	if s.group == group {
		s.group = next.Groups[0]
	}
	s.revision++
	s.refresh()
	return nil
}

// RenameGroup renames a group catalog-wide, markers included.
func (s *Session) RenameGroup(from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := codetree.RenameGroup(s.tree, from, to)
	if err != nil {
		return err
	}
	if err := s.record(journal.OpRenameGroup, journal.RenamePayload{From: from, To: to}); err != nil {
		return err
	}
	s.tree = next
	if s.group == from {
		s.group = to
	}
	s.revision++
	s.refresh()
	return nil
}

// CodesInGroup lists the leaves included in the group; an empty name
// means the active group.
func (s *Session) CodesInGroup(group string) ([]codetree.Code, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if group == "" {
		group = s.group
	}
	return s.tree.CodesInGroup(group)
}

// Save writes the codes file (transients stripped by the codec) and
// checkpoints the journal against the new file hash.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := codefile.Save(s.path, s.tree); err != nil {
		return err
	}
	s.stale = false
	if s.jnl == nil {
		return nil
	}
	hash, err := journal.HashFile(s.path)
	if err != nil {
		return err
	}
	return s.jnl.Checkpoint(s.path, hash)
}

// Close closes the session's journal. The journal file stays on disk
// until a save checkpoints it.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.jnl == nil {
		return nil
	}
	return s.jnl.Close()
}
