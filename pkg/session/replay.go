// ABOUTME: Journal replay onto a freshly loaded codes file
// ABOUTME: Verifies the source hash, then re-applies pending ops in order

package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mheron/grouptree/pkg/codefile"
	"github.com/mheron/grouptree/pkg/codetree"
	"github.com/mheron/grouptree/pkg/journal"
)

// Replay rebuilds an interrupted session from its journal: the codes
// file is loaded fresh and every op after the last checkpoint is
// re-applied in order. The journal's recorded source hash must still
// match the file; a mismatch means the file was edited outside the
// session and the journaled paths are stale (ErrSourceChanged).
//
// The returned session has the replayed journal re-attached, so
// further edits keep appending to it.
func Replay(journalPath string) (*Session, error) {
	entries, err := journal.ReadAll(journalPath)
	if err != nil {
		return nil, err
	}
	open, ops, err := journal.Pending(entries)
	if err != nil {
		return nil, err
	}

	hash, err := journal.HashFile(open.Path)
	if err != nil {
		return nil, err
	}
	if hash != open.Hash {
		return nil, fmt.Errorf("%w: %s", journal.ErrSourceChanged, open.Path)
	}

	tree, err := codefile.Load(open.Path)
	if err != nil {
		return nil, err
	}
	s := &Session{
		id:    uuid.NewString(),
		path:  open.Path,
		tree:  tree,
		group: tree.Groups[0],
	}

	for _, e := range ops {
		if err := s.apply(e); err != nil {
			return nil, fmt.Errorf("journal: replay seq %d (%s): %w", e.Seq, e.Op, err)
		}
	}

	jnl := &journal.Journal{Path: journalPath}
	if err := jnl.Open(); err != nil {
		return nil, err
	}
	s.jnl = jnl

	s.refresh()
	return s, nil
}

// apply re-executes one journaled op without re-journaling it.
func (s *Session) apply(e *journal.Entry) error {
	switch e.Op {
	case journal.OpExclude, journal.OpInclude:
		var p journal.TogglePayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		var next *codetree.Tree
		var err error
		if e.Op == journal.OpExclude {
			next, err = codetree.ExcludeSubtree(s.tree, p.Path, p.Group)
		} else {
			next, err = codetree.IncludeSubtree(s.tree, p.Path, p.Group)
		}
		if err != nil {
			return err
		}
		s.tree = next
		s.revision++

	case journal.OpSetGroup:
		var p journal.GroupPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		if !s.tree.HasGroup(p.Group) {
			return fmt.Errorf("%w: %q", codetree.ErrUnknownGroup, p.Group)
		}
		s.group = p.Group

	case journal.OpAddGroup:
		var p journal.GroupPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		next, err := codetree.AddGroup(s.tree, p.Group)
		if err != nil {
			return err
		}
		s.tree = next
		s.revision++

	case journal.OpRemoveGroup:
		var p journal.GroupPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		next, err := codetree.RemoveGroup(s.tree, p.Group)
		if err != nil {
			return err
		}
		s.tree = next
		if s.group == p.Group {
			s.group = next.Groups[0]
		}
		s.revision++

	case journal.OpRenameGroup:
		var p journal.RenamePayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		next, err := codetree.RenameGroup(s.tree, p.From, p.To)
		if err != nil {
			return err
		}
		s.tree = next
		if s.group == p.From {
			s.group = p.To
		}
		s.revision++

	default:
		return fmt.Errorf("journal: unexpected op %s in replay", e.Op)
	}
	return nil
}
