package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"intelliview-be/pkg/interview/protocol"

	"github.com/gorilla/websocket"
)

const (
	DefaultConnectTimeout   = 10 * time.Second
	DefaultHandshakeTimeout = 15 * time.Second

	writeWait = 10 * time.Second
)

// Conn is a live session with the interviewer backend.
type Conn interface {
	Send(msg interface{}) error
	Receive(ctx context.Context) (*ServerMessage, error)
	Close() error
}

// Dialer opens live sessions.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

type WSDialer struct {
	URL            string
	APIKey         string
	ConnectTimeout time.Duration
}

func NewWSDialer(rawURL, apiKey string, connectTimeout time.Duration) *WSDialer {
	if rawURL == "" {
		rawURL = DefaultURL
	}
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	return &WSDialer{URL: rawURL, APIKey: apiKey, ConnectTimeout: connectTimeout}
}

// Dial connects with a bounded wait. The API key travels as the "key" query parameter.
func (d *WSDialer) Dial(ctx context.Context) (Conn, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return nil, &protocol.TransportError{Peer: "upstream", Err: fmt.Errorf("invalid live url: %w", err)}
	}
	if d.APIKey != "" {
		q := u.Query()
		q.Set("key", d.APIKey)
		u.RawQuery = q.Encode()
	}

	dialCtx, cancel := context.WithTimeout(ctx, d.ConnectTimeout)
	defer cancel()

	dialer := websocket.Dialer{HandshakeTimeout: d.ConnectTimeout}
	ws, resp, err := dialer.DialContext(dialCtx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		// the url carries the key, keep it out of the error
		if resp != nil {
			err = fmt.Errorf("dial refused with status %d", resp.StatusCode)
		} else {
			err = errors.New("dial failed or timed out")
		}
		return nil, &protocol.TransportError{Peer: "upstream", Err: err}
	}
	return newWSConn(ws), nil
}

type wsConn struct {
	ws        *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func newWSConn(ws *websocket.Conn) *wsConn {
	return &wsConn{ws: ws}
}

func (c *wsConn) Send(msg interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(msg); err != nil {
		return &protocol.TransportError{Peer: "upstream", Err: err}
	}
	return nil
}

// Receive blocks for the next message. A context deadline becomes the read deadline;
// plain cancellation is observed when the connection is closed.
func (c *wsConn) Receive(ctx context.Context) (*ServerMessage, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.ws.SetReadDeadline(deadline)
		defer c.ws.SetReadDeadline(time.Time{})
	}

	_, raw, err := c.ws.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, context.DeadlineExceeded
		}
		return nil, &protocol.TransportError{Peer: "upstream", Err: err}
	}

	var msg ServerMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, &protocol.UpstreamError{Op: "decode", Err: err}
	}
	return &msg, nil
}

// Close is idempotent.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}

// Handshake sends the setup message and waits up to timeout for setupComplete.
// No other traffic may be sent before it returns nil.
func Handshake(ctx context.Context, conn Conn, setup SetupMessage, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}
	if err := conn.Send(setup); err != nil {
		return err
	}

	hsCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg, err := conn.Receive(hsCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &protocol.UpstreamError{Op: "handshake", Err: fmt.Errorf("no setupComplete within %s", timeout)}
		}
		return err
	}
	if msg.SetupComplete == nil {
		return &protocol.UpstreamError{Op: "handshake", Err: errors.New("first message was not setupComplete")}
	}
	return nil
}
