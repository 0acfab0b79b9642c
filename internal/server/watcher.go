// ABOUTME: fsnotify watcher marking sessions stale when their codes file changes
// ABOUTME: Watches parent directories so atomic rename-over-save is still seen

package server

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mheron/grouptree/internal/logger"
	"github.com/mheron/grouptree/internal/metrics"
	"github.com/mheron/grouptree/pkg/session"
)

// suppressWindow is how long after a session save events on the saved
// path are ignored; the save's own rename is not an outside change.
const suppressWindow = 2 * time.Second

// Watcher marks sessions stale when their codes file changes on disk.
// It watches parent directories rather than the files themselves: an
// atomic save replaces the file by rename, which would drop a per-file
// watch.
type Watcher struct {
	fw      *fsnotify.Watcher
	mgr     *session.Manager
	log     *logger.Logger
	metrics *metrics.Metrics

	mu         sync.Mutex
	paths      map[string]struct{} // codes files being watched
	dirs       map[string]int      // watched directories, refcounted
	suppressed map[string]time.Time

	done chan struct{}
	once sync.Once
}

// NewWatcher starts the watch loop.
func NewWatcher(mgr *session.Manager, log *logger.Logger, m *metrics.Metrics) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fw:         fw,
		mgr:        mgr,
		log:        log.Component("watcher"),
		metrics:    m,
		paths:      make(map[string]struct{}),
		dirs:       make(map[string]int),
		suppressed: make(map[string]time.Time),
		done:       make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Watch adds a codes file to the watch set.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.paths[abs]; ok {
		return nil
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.paths[abs] = struct{}{}
	w.log.Debug("watching codes file").Str("codes_file", abs).Send()
	return nil
}

// Suppress ignores events for the path for a short window; called just
// before a session save so the save is not reported as staleness.
func (w *Watcher) Suppress(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	w.suppressed[abs] = time.Now().Add(suppressWindow)
	w.mu.Unlock()
}

// Close stops the watch loop.
func (w *Watcher) Close() error {
	w.once.Do(func() { close(w.done) })
	return w.fw.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.handleEvent(ev.Name)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error").Err(err).Send()
		}
	}
}

func (w *Watcher) handleEvent(name string) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return
	}

	w.mu.Lock()
	_, watched := w.paths[abs]
	until, hasWindow := w.suppressed[abs]
	if hasWindow && time.Now().After(until) {
		delete(w.suppressed, abs)
		hasWindow = false
	}
	w.mu.Unlock()

	if !watched || hasWindow {
		return
	}

	// The session's codes file changed beneath it. Sessions keep
	// working; save overwrites the outside change.
	ids := w.mgr.MarkStaleByPath(abs)
	if len(ids) == 0 {
		return
	}
	w.log.Warn("codes file changed on disk").
		Str("codes_file", abs).
		Strs("session_ids", ids).
		Send()
	w.updateStaleGauge()
}

func (w *Watcher) updateStaleGauge() {
	stale := 0
	for _, s := range w.mgr.List() {
		if s.Stale() {
			stale++
		}
	}
	w.metrics.SessionsStale.Set(float64(stale))
}
