// Package server implements the grouptree HTTP API: session lifecycle,
// subtree toggles, search, counts, group catalog operations, and saves,
// plus a WebSocket live-search endpoint and a codes-file change watcher.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mheron/grouptree/internal/logger"
	"github.com/mheron/grouptree/internal/metrics"
	"github.com/mheron/grouptree/pkg/session"
)

// Server is the grouptree API server.
type Server struct {
	addr     string
	log      *logger.Logger
	metrics  *metrics.Metrics
	sessions *session.Manager
	watcher  *Watcher // nil when watching is disabled

	engine *gin.Engine
	http   *http.Server
}

// NewServer builds the API server and its routes. The watcher may be
// nil; sessions then never go stale.
func NewServer(addr string, log *logger.Logger, m *metrics.Metrics, sessions *session.Manager, watcher *Watcher) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		addr:     addr,
		log:      log.Component("api"),
		metrics:  m,
		sessions: sessions,
		watcher:  watcher,
	}

	engine.Use(gin.Recovery(), RequestMetrics(m, s.log))
	s.registerRoutes(engine)
	s.engine = engine
	return s
}

func (s *Server) registerRoutes(engine *gin.Engine) {
	api := engine.Group("/api/v1")
	{
		sessions := api.Group("/sessions")
		{
			sessions.POST("", s.createSession)
			sessions.GET("", s.listSessions)
			sessions.GET("/:id", s.getSession)
			sessions.DELETE("/:id", s.closeSession)
			sessions.GET("/:id/tree", s.getTree)
			sessions.PUT("/:id/group", s.setGroup)
			sessions.PUT("/:id/query", s.setQuery)
			sessions.POST("/:id/toggle", s.toggle)
			sessions.POST("/:id/groups", s.addGroup)
			sessions.DELETE("/:id/groups/:name", s.removeGroup)
			sessions.PUT("/:id/groups/:name", s.renameGroup)
			sessions.GET("/:id/codes", s.codesInGroup)
			sessions.POST("/:id/save", s.saveSession)
		}
		files := api.Group("/files")
		{
			files.GET("/groups", s.fileGroups)
			files.GET("/codes", s.fileCodes)
		}
	}
	engine.GET("/ws/sessions/:id/search", s.searchSocket)
}

// Handler returns the HTTP handler; tests drive it directly.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start runs the API listener until Shutdown.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:         s.addr,
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.log.LogServerStart(s.addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, stops the watcher, and closes
// every open session (journals stay on disk for replay).
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.LogServerShutdown()
	if s.watcher != nil {
		s.watcher.Close()
	}
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	s.sessions.CloseAll()
	return err
}
