// ABOUTME: WebSocket live-search endpoint
// ABOUTME: Each text frame is a query; the reply carries the fresh counts

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mheron/grouptree/pkg/codetree"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

type searchResult struct {
	Query    string          `json:"query"`
	Revision uint64          `json:"revision"`
	Counts   codetree.Counts `json:"counts"`
}

// searchSocket streams search-as-you-type: every text frame from the
// client replaces the session query, and the reply carries the
// recomputed root counts.
func (s *Server) searchSocket(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed").Err(err).Send()
		return
	}
	defer ws.Close()

	log := s.log.SessionLogger(sess.ID(), sess.Path())
	log.Debug("live search connected").Send()

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			log.Debug("live search disconnected").Err(err).Send()
			return
		}

		query := string(msg)
		counts := sess.SetQuery(query)
		s.metrics.SearchesTotal.Inc()

		if err := ws.WriteJSON(searchResult{
			Query:    query,
			Revision: sess.Revision(),
			Counts:   counts,
		}); err != nil {
			log.Warn("live search write failed").Err(err).Send()
			return
		}
	}
}
