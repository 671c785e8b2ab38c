package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

// newUpgrader accepts requests without an Origin (non-browser clients) and
// browser pages from the allowed origins.
func newUpgrader(origins []string) websocket.Upgrader {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range allowOrigins(origins) {
		allowed[o] = struct{}{}
	}
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[normalizeOrigin(origin)]
			return ok
		},
	}
}

// StatusStream serves GET /api/status/ws: the current snapshot, then one
// message per background refresh.
func (h *Handler) StatusStream(up websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := up.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade has already answered the request
			log.Warn("status stream upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		updates, cancel := h.sess.Subscribe()
		defer cancel()

		done := make(chan struct{})
		go wsReader(conn, done)

		ping := time.NewTicker(WSPingPeriod)
		defer ping.Stop()

		if err := wsWriteJSON(conn, h.sess.Snapshot()); err != nil {
			return
		}
		for {
			select {
			case <-done:
				return
			case snap, ok := <-updates:
				if !ok {
					_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := wsWriteJSON(conn, snap); err != nil {
					log.Warn("status stream write failed", "error", err)
					return
				}
			case <-ping.C:
				_ = conn.SetWriteDeadline(time.Now().Add(WSWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}

func wsWriteJSON(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(WSWriteWait))
	return conn.WriteJSON(v)
}

// wsReader discards client messages and closes done when the peer goes away.
func wsReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(WSPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(WSPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("status stream read failed", "error", err)
			}
			return
		}
	}
}
