package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const quotesPushInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Single-operator UI served from the same origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// QuotesSocket streams quote snapshots to the UI. The current snapshot is
// sent immediately, then on every refresh tick. The read loop exists only
// to notice the peer going away.
func (h *Handler) QuotesSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx := c.Request().Context()
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	push := func() error {
		snap, err := h.cache.Snapshot(ctx)
		if err != nil {
			return conn.WriteJSON(map[string]string{"error": "no quote data available"})
		}
		return conn.WriteJSON(snap)
	}

	if err := push(); err != nil {
		return nil
	}

	ticker := time.NewTicker(quotesPushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := push(); err != nil {
				return nil
			}
		case <-closed:
			return nil
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			return nil
		}
	}
}
