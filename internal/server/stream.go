package server

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	streamPingInterval = 15 * time.Second
	streamWriteTimeout = 10 * time.Second
)

func (a *App) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(a.cfg.CORSAllowOrigins, origin)
		},
	}
}

// stream pushes the caller's change events over a websocket until either
// side closes it.
func (a *App) stream(c *gin.Context) {
	userID := c.GetString(ctxUserID)
	up := a.upgrader()
	conn, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		a.log.Debug("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}
	defer conn.Close()

	events, cancel := a.hub.Subscribe(userID)
	defer cancel()
	a.log.Debug("stream opened", "user_id", userID)

	// Clients never send data; reading only surfaces close frames.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			a.log.Debug("stream closed by client", "user_id", userID)
			return
		case <-ping.C:
			deadline := time.Now().Add(streamWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				a.log.Debug("stream write failed", "user_id", userID, "error", err)
				return
			}
		}
	}
}
