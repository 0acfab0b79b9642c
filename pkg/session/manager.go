// ABOUTME: Registry of live editing sessions for the server
// ABOUTME: Open, look up, enumerate, and close sessions by id

package session

import (
	"path/filepath"
	"sort"
	"sync"
)

// Manager owns the live sessions. The server holds one Manager; the
// file watcher uses MarkStaleByPath when a codes file changes on disk.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager returns an empty session registry.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Open starts a session on a codes file and registers it.
func (m *Manager) Open(path string, opts Options) (*Session, error) {
	s, err := Open(path, opts)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s, nil
}

// Get looks a session up by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// List returns the open sessions, ordered by codes-file path.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path() != out[j].Path() {
			return out[i].Path() < out[j].Path()
		}
		return out[i].ID() < out[j].ID()
	})
	return out
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close closes a session and drops it from the registry.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return s.Close()
}

// CloseAll closes every session; used at server shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.Close()
		delete(m.sessions, id)
	}
}

// MarkStaleByPath flags every session editing the given codes file and
// returns their ids. Paths are compared in absolute form; sessions may
// have been opened with relative ones.
func (m *Manager) MarkStaleByPath(path string) []string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, s := range m.sessions {
		sp, err := filepath.Abs(s.Path())
		if err != nil {
			sp = s.Path()
		}
		if sp == abs {
			s.MarkStale()
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
