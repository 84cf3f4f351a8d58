package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"intelliview-be/pkg/interview/protocol"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 50 * time.Second

	sendBuffer = 256
)

// ClientConn is the candidate-facing connection. *websocket.Conn satisfies it.
type ClientConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// clientWriter serializes every write to the candidate connection through one pump.
type clientWriter struct {
	conn ClientConn
	send chan []byte

	// guards direct writes made while the pump is not running
	mu sync.Mutex
}

func newClientWriter(conn ClientConn) *clientWriter {
	return &clientWriter{conn: conn, send: make(chan []byte, sendBuffer)}
}

// enqueue hands an event to the pump, blocking while the buffer is full.
func (w *clientWriter) enqueue(ctx context.Context, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode client event: %w", err)
	}
	select {
	case w.send <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// writeNow writes outside the pump. Only valid before the pump starts or after it returns.
func (w *clientWriter) writeNow(event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode client event: %w", err)
	}
	return w.write(websocket.TextMessage, data)
}

func (w *clientWriter) write(messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := w.conn.WriteMessage(messageType, data); err != nil {
		return &protocol.TransportError{Peer: "client", Err: err}
	}
	return nil
}

// pump writes queued events in order and pings the client periodically. When ctx
// ends it flushes what is already queued, so a final phase_change still goes out.
func (w *clientWriter) pump(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data := <-w.send:
			if err := w.write(websocket.TextMessage, data); err != nil {
				return err
			}
		case <-ticker.C:
			if err := w.write(websocket.PingMessage, nil); err != nil {
				return err
			}
		case <-ctx.Done():
			w.flush()
			return nil
		}
	}
}

func (w *clientWriter) flush() {
	for {
		select {
		case data := <-w.send:
			if err := w.write(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}
