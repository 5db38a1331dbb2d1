package transport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/halligalli/bell-server/internal/protocol"
)

const closeGracePeriod = time.Second

// WebSocketConn carries one JSON record per text frame.
type WebSocketConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	closeOnce sync.Once
	closed    chan struct{}
}

// NewWebSocketConn wraps an upgraded connection. A zero writeTimeout disables
// write deadlines.
func NewWebSocketConn(conn *websocket.Conn, writeTimeout time.Duration) *WebSocketConn {
	conn.SetReadLimit(MaxFrameSize)
	return &WebSocketConn{
		conn:         conn,
		writeTimeout: writeTimeout,
		closed:       make(chan struct{}),
	}
}

// ReadMessage blocks until the next data frame arrives.
func (c *WebSocketConn) ReadMessage() (protocol.Message, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		if errors.Is(err, websocket.ErrReadLimit) {
			return protocol.Message{}, fmt.Errorf("%w: %v", protocol.ErrUndecodable, err)
		}
		return protocol.Message{}, err
	}
	return protocol.Decode(data)
}

// WriteMessage sends msg as a single text frame.
func (c *WebSocketConn) WriteMessage(msg protocol.Message) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}

	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write %s: %w", msg.Type, err)
	}
	return nil
}

// Close sends a close frame and closes the socket once; later calls return
// nil.
func (c *WebSocketConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeGracePeriod),
		)
		err = c.conn.Close()
	})
	return err
}

// RemoteAddr reports the peer address.
func (c *WebSocketConn) RemoteAddr() string {
	if addr := c.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
