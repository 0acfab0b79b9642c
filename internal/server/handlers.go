// ABOUTME: HTTP handlers for sessions, toggles, search, groups, and files
// ABOUTME: Binds JSON requests, delegates to the session layer, maps errors to status codes

package server

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mheron/grouptree/pkg/codefile"
	"github.com/mheron/grouptree/pkg/codetree"
	"github.com/mheron/grouptree/pkg/session"
)

type openSessionRequest struct {
	Path  string `json:"path" binding:"required"`
	Group string `json:"group"`
}

type groupRequest struct {
	Group string `json:"group" binding:"required"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type toggleRequest struct {
	Path []int `json:"path" binding:"required,min=1"`
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

type renameRequest struct {
	To string `json:"to" binding:"required"`
}

type countsResponse struct {
	Revision uint64          `json:"revision"`
	Counts   codetree.Counts `json:"counts"`
}

type treeResponse struct {
	Categories []*codetree.Node `json:"categories"`
	Groups     []string         `json:"groups"`
	Revision   uint64           `json:"revision"`
}

// writeError maps engine errors onto HTTP status codes per the API
// contract: bad input 400, unknown things 404, state conflicts 409.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, codetree.ErrInvalidPath),
		errors.Is(err, codefile.ErrMissingGroups),
		errors.Is(err, codefile.ErrUnknownFormat):
		status = http.StatusBadRequest
	case errors.Is(err, codetree.ErrUnknownGroup),
		errors.Is(err, codetree.ErrCodeNotFound),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, os.ErrNotExist):
		status = http.StatusNotFound
	case errors.Is(err, codetree.ErrGroupExists),
		errors.Is(err, codetree.ErrNotExcluded),
		errors.Is(err, codetree.ErrLastGroup):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// lookup resolves the :id path param to a session or answers 404.
func (s *Server) lookup(c *gin.Context) (*session.Session, bool) {
	sess, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		writeError(c, session.ErrNotFound)
		return nil, false
	}
	return sess, true
}

func (s *Server) createSession(c *gin.Context) {
	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	sess, err := s.sessions.Open(req.Path, session.Options{Group: req.Group})
	s.metrics.RecordTreeOperation("open", opStatus(err), time.Since(start))
	if err != nil {
		s.log.Error("failed to open session").Str("codes_file", req.Path).Err(err).Send()
		writeError(c, err)
		return
	}

	if s.watcher != nil {
		if err := s.watcher.Watch(req.Path); err != nil {
			s.log.Warn("codes-file watch failed").Str("codes_file", req.Path).Err(err).Send()
		}
	}
	s.metrics.SessionsActive.Set(float64(s.sessions.Len()))
	s.metrics.LoadedTreeNodes.Add(float64(sess.NumNodes()))
	s.metrics.JournalAppendsTotal.Inc()

	info := sess.Info()
	s.log.Info("session opened").
		Str("session_id", info.ID).
		Str("codes_file", info.Path).
		Str("group", info.Group).
		Int("nodes", sess.NumNodes()).
		Send()
	c.JSON(http.StatusCreated, info)
}

func (s *Server) listSessions(c *gin.Context) {
	sessions := s.sessions.List()
	infos := make([]session.Info, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, sess.Info())
	}
	c.JSON(http.StatusOK, gin.H{"sessions": infos})
}

func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Info())
}

func (s *Server) closeSession(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	nodes := sess.NumNodes()
	if err := s.sessions.Close(sess.ID()); err != nil {
		writeError(c, err)
		return
	}
	s.metrics.SessionsActive.Set(float64(s.sessions.Len()))
	s.metrics.LoadedTreeNodes.Sub(float64(nodes))
	s.log.Info("session closed").Str("session_id", sess.ID()).Send()
	c.Status(http.StatusNoContent)
}

func (s *Server) getTree(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	tree := sess.Snapshot()
	c.JSON(http.StatusOK, treeResponse{
		Categories: tree.Categories,
		Groups:     tree.Groups,
		Revision:   sess.Revision(),
	})
}

func (s *Server) setGroup(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	counts, err := sess.SetGroup(req.Group)
	if err != nil {
		writeError(c, err)
		return
	}
	s.metrics.JournalAppendsTotal.Inc()
	c.JSON(http.StatusOK, countsResponse{Revision: sess.Revision(), Counts: counts})
}

func (s *Server) setQuery(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	counts := sess.SetQuery(req.Query)
	s.metrics.SearchesTotal.Inc()
	c.JSON(http.StatusOK, countsResponse{Revision: sess.Revision(), Counts: counts})
}

func (s *Server) toggle(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	counts, err := sess.Toggle(req.Path)
	s.metrics.RecordTreeOperation("toggle", opStatus(err), time.Since(start))
	if err != nil {
		s.log.Error("toggle failed").
			Str("session_id", sess.ID()).
			Ints("path", req.Path).
			Err(err).
			Send()
		writeError(c, err)
		return
	}
	s.metrics.JournalAppendsTotal.Inc()
	c.JSON(http.StatusOK, countsResponse{Revision: sess.Revision(), Counts: counts})
}

func (s *Server) addGroup(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := sess.AddGroup(req.Name); err != nil {
		writeError(c, err)
		return
	}
	s.metrics.JournalAppendsTotal.Inc()
	c.JSON(http.StatusCreated, sess.Info())
}

func (s *Server) removeGroup(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	if err := sess.RemoveGroup(c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	s.metrics.JournalAppendsTotal.Inc()
	c.JSON(http.StatusOK, sess.Info())
}

func (s *Server) renameGroup(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := sess.RenameGroup(c.Param("name"), req.To); err != nil {
		writeError(c, err)
		return
	}
	s.metrics.JournalAppendsTotal.Inc()
	c.JSON(http.StatusOK, sess.Info())
}

func (s *Server) codesInGroup(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	codes, err := sess.CodesInGroup(c.Query("group"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"codes": codes})
}

func (s *Server) saveSession(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}

	if s.watcher != nil {
		// The save's own rename must not mark the session stale
		s.watcher.Suppress(sess.Path())
	}
	start := time.Now()
	err := sess.Save()
	s.metrics.RecordTreeOperation("save", opStatus(err), time.Since(start))
	if err != nil {
		s.log.Error("save failed").Str("session_id", sess.ID()).Err(err).Send()
		writeError(c, err)
		return
	}
	s.log.Info("codes file saved").
		Str("session_id", sess.ID()).
		Str("codes_file", sess.Path()).
		Send()
	c.JSON(http.StatusOK, sess.Info())
}

// fileGroups answers a stateless group listing for a codes file.
func (s *Server) fileGroups(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path query parameter is required"})
		return
	}
	tree, err := codefile.Load(path)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": tree.Groups})
}

// fileCodes answers a stateless membership listing for a codes file.
func (s *Server) fileCodes(c *gin.Context) {
	path := c.Query("path")
	group := c.Query("group")
	if path == "" || group == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path and group query parameters are required"})
		return
	}
	tree, err := codefile.Load(path)
	if err != nil {
		writeError(c, err)
		return
	}
	codes, err := tree.CodesInGroup(group)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"codes": codes})
}

func opStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
