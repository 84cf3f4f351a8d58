package websocket

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
)

// ServeMonitor attaches a dashboard connection to the hub. An empty sessionID
// follows every interview. It returns once the dashboard disconnects.
func ServeMonitor(hub *Hub, conn ClientConn, sessionID string) {
	if sessionID == "" {
		sessionID = allSessions
	}
	w := &Watcher{hub: hub, conn: conn, sessionID: sessionID, send: make(chan []byte, sendBuffer)}
	hub.register <- w

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		w.readPump()
		cancel()
	}()
	w.writePump(ctx)
}

// readPump discards dashboard input and unregisters the watcher on disconnect.
func (w *Watcher) readPump() {
	defer w.hub.remove(w)
	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (w *Watcher) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-w.send:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = w.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
