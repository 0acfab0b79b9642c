// ABOUTME: Tests for the session facade, journaling, replay, and the manager
// ABOUTME: Exercises the full toggle-search-count loop against a real codes file

package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mheron/grouptree/pkg/codetree"
	"github.com/mheron/grouptree/pkg/journal"
)

const codesDoc = `categories:
  - name: I00-I99
    docs: Diseases of the circulatory system
    index: [I00, I99]
    categories:
      - name: I10
        docs: Essential (primary) hypertension
        index: I10
      - name: I21
        docs: Acute ST elevation myocardial infarction (STEMI)
        index: I21
  - name: K00-K99
    docs: Diseases of the digestive system
    index: [K00, K99]
    categories:
      - name: K92.2
        docs: Gastrointestinal haemorrhage (GI bleed)
        index: K922
groups: [bleeding, diabetes]
`

func writeCodes(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "codes.yaml")
	if err := os.WriteFile(path, []byte(codesDoc), 0644); err != nil {
		t.Fatalf("write codes file: %v", err)
	}
	return path
}

func openSession(t *testing.T, path string) *Session {
	t.Helper()
	s, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenDefaults(t *testing.T) {
	s := openSession(t, writeCodes(t))
	info := s.Info()
	if info.Group != "bleeding" {
		t.Errorf("active group = %q, want bleeding (first declared)", info.Group)
	}
	if info.Revision != 0 || info.Stale {
		t.Errorf("fresh session: revision=%d stale=%v", info.Revision, info.Stale)
	}
	if info.Counts.TotalIncluded != 3 {
		t.Errorf("root included = %d, want 3", info.Counts.TotalIncluded)
	}
}

func TestOpenUnknownGroup(t *testing.T) {
	_, err := Open(writeCodes(t), Options{Group: "arrhythmia"})
	if !errors.Is(err, codetree.ErrUnknownGroup) {
		t.Fatalf("err = %v, want ErrUnknownGroup", err)
	}
}

func TestToggleDecidesDirection(t *testing.T) {
	s := openSession(t, writeCodes(t))

	// Included subtree: toggle excludes it
	c, err := s.Toggle(codetree.Path{0})
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if c.TotalIncluded != 1 {
		t.Errorf("after exclude: included = %d, want 1", c.TotalIncluded)
	}
	if s.Revision() != 1 {
		t.Errorf("revision = %d, want 1", s.Revision())
	}

	// Excluded leaf inside it: toggle carves it back in
	c, err = s.Toggle(codetree.Path{0, 1})
	if err != nil {
		t.Fatalf("toggle back failed: %v", err)
	}
	if c.TotalIncluded != 2 {
		t.Errorf("after include: included = %d, want 2", c.TotalIncluded)
	}

	codes, err := s.CodesInGroup("")
	if err != nil {
		t.Fatalf("codes: %v", err)
	}
	if len(codes) != 2 || codes[0].Name != "I21" || codes[1].Name != "K92.2" {
		t.Errorf("included codes = %v", codes)
	}
}

func TestToggleInvalidPath(t *testing.T) {
	s := openSession(t, writeCodes(t))
	before := s.RootCounts()
	if _, err := s.Toggle(codetree.Path{9}); !errors.Is(err, codetree.ErrInvalidPath) {
		t.Fatalf("err = %v, want ErrInvalidPath", err)
	}
	if s.RootCounts() != before || s.Revision() != 0 {
		t.Errorf("failed toggle must leave the session unchanged")
	}
}

func TestQueryDrivesCounts(t *testing.T) {
	s := openSession(t, writeCodes(t))

	c := s.SetQuery("haemorrhage, infarction")
	if c.TotalHighlighted != 2 || c.IncludedAndHighlighted != 2 {
		t.Errorf("counts = %+v, want 2 highlighted, 2 both", c)
	}

	if _, err := s.Toggle(codetree.Path{1}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	c = s.RootCounts()
	if c.TotalHighlighted != 2 || c.IncludedAndHighlighted != 1 {
		t.Errorf("after exclude: counts = %+v, want highlight 2, both 1", c)
	}

	c = s.SetQuery("")
	if c.TotalHighlighted != 0 {
		t.Errorf("empty query must clear highlights, got %+v", c)
	}
}

func TestGroupCatalogOps(t *testing.T) {
	s := openSession(t, writeCodes(t))
	if err := s.AddGroup("sepsis"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.SetGroup("sepsis"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := s.RootCounts().TotalIncluded; got != 3 {
		t.Errorf("new group must contain every leaf, got %d", got)
	}

	if err := s.RenameGroup("sepsis", "infection"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if s.Info().Group != "infection" {
		t.Errorf("active group should follow the rename, got %q", s.Info().Group)
	}

	if err := s.RemoveGroup("infection"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := s.Info().Group; got != "bleeding" {
		t.Errorf("active group after removal = %q, want bleeding", got)
	}
}

func TestSaveStripsAndCheckpoints(t *testing.T) {
	path := writeCodes(t)
	s := openSession(t, path)
	s.SetQuery("hypertension")
	if _, err := s.Toggle(codetree.Path{0, 0}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) == codesDoc {
		t.Errorf("saved file should carry the new marker")
	}

	entries, err := journal.ReadAll(path + ".journal")
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	if len(entries) != 1 || entries[0].Op != journal.OpOpen {
		t.Errorf("journal after save = %d entries, want one fresh open", len(entries))
	}
}

func TestReplayRebuildsSession(t *testing.T) {
	path := writeCodes(t)
	jnlPath := path + ".journal"

	s, err := Open(path, Options{JournalPath: jnlPath})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Toggle(codetree.Path{0}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := s.Toggle(codetree.Path{0, 1}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	want := s.RootCounts()
	// Simulate a crash: no save, just drop the session
	s.Close()

	replayed, err := Replay(jnlPath)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	defer replayed.Close()

	if got := replayed.RootCounts(); got != want {
		t.Errorf("replayed counts = %+v, want %+v", got, want)
	}
	codes, err := replayed.CodesInGroup("bleeding")
	if err != nil {
		t.Fatalf("codes: %v", err)
	}
	if len(codes) != 2 || codes[0].Name != "I21" || codes[1].Name != "K92.2" {
		t.Errorf("replayed membership = %v", codes)
	}
}

func TestReopenDiscardsCrashedJournal(t *testing.T) {
	path := writeCodes(t)
	jnlPath := path + ".journal"

	// First session crashes with an unsaved edit in the journal
	s1, err := Open(path, Options{JournalPath: jnlPath})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s1.Toggle(codetree.Path{0}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	s1.Close()

	// Reopening abandons the crashed history; only the new session's
	// edits may replay
	s2, err := Open(path, Options{JournalPath: jnlPath})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := s2.Toggle(codetree.Path{0, 1}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	want := s2.RootCounts()
	if want.TotalIncluded != 2 {
		t.Fatalf("second session included = %d, want 2", want.TotalIncluded)
	}
	s2.Close()

	replayed, err := Replay(jnlPath)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	defer replayed.Close()

	if got := replayed.RootCounts(); got != want {
		t.Errorf("replayed counts = %+v, want %+v (stacked histories?)", got, want)
	}

	tree := replayed.Snapshot()
	chapter := tree.Categories[0]
	if chapter.Exclude.Contains("bleeding") {
		t.Errorf("chapter carries the abandoned session's marker")
	}
	if !chapter.Categories[1].Exclude.Contains("bleeding") {
		t.Errorf("I21 should carry the only marker")
	}
}

func TestReplayRefusesChangedSource(t *testing.T) {
	path := writeCodes(t)
	jnlPath := path + ".journal"

	s, err := Open(path, Options{JournalPath: jnlPath})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Toggle(codetree.Path{0}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	s.Close()

	// Edit the codes file outside the session
	if err := os.WriteFile(path, []byte(codesDoc+"# touched\n"), 0644); err != nil {
		t.Fatalf("rewrite codes: %v", err)
	}

	if _, err := Replay(jnlPath); !errors.Is(err, journal.ErrSourceChanged) {
		t.Fatalf("err = %v, want ErrSourceChanged", err)
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()
	path := writeCodes(t)

	s1, err := m.Open(path, Options{NoJournal: true})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := m.Open(path, Options{NoJournal: true}); err != nil {
		t.Fatalf("second open: %v", err)
	}
	if m.Len() != 2 {
		t.Errorf("len = %d, want 2", m.Len())
	}

	got, ok := m.Get(s1.ID())
	if !ok || got != s1 {
		t.Errorf("Get returned %v, %v", got, ok)
	}

	ids := m.MarkStaleByPath(path)
	if len(ids) != 2 || !s1.Stale() {
		t.Errorf("stale ids = %v", ids)
	}

	if err := m.Close(s1.ID()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := m.Close(s1.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("double close err = %v, want ErrNotFound", err)
	}
	m.CloseAll()
	if m.Len() != 0 {
		t.Errorf("len after CloseAll = %d", m.Len())
	}
}
