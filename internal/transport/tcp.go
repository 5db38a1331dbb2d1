package transport

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/halligalli/bell-server/internal/protocol"
)

// MaxFrameSize bounds a single newline-delimited record.
const MaxFrameSize = 64 * 1024

// TCPConn carries one JSON record per line.
type TCPConn struct {
	conn         net.Conn
	scanner      *bufio.Scanner
	writeTimeout time.Duration

	closeOnce sync.Once
	closed    chan struct{}
}

// NewTCPConn wraps an accepted connection. A zero writeTimeout disables
// write deadlines.
func NewTCPConn(conn net.Conn, writeTimeout time.Duration) *TCPConn {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), MaxFrameSize)
	return &TCPConn{
		conn:         conn,
		scanner:      scanner,
		writeTimeout: writeTimeout,
		closed:       make(chan struct{}),
	}
}

// ReadMessage blocks until the next non-empty line arrives.
func (c *TCPConn) ReadMessage() (protocol.Message, error) {
	for c.scanner.Scan() {
		line := bytes.TrimSpace(c.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		return protocol.Decode(line)
	}
	if err := c.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return protocol.Message{}, fmt.Errorf("%w: %v", protocol.ErrUndecodable, err)
		}
		return protocol.Message{}, err
	}
	return protocol.Message{}, io.EOF
}

// WriteMessage encodes msg followed by a newline.
func (c *TCPConn) WriteMessage(msg protocol.Message) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}

	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", msg.Type, err)
	}
	return nil
}

// Close closes the socket once; later calls return nil.
func (c *TCPConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		if cerr := c.conn.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
	})
	return err
}

// RemoteAddr reports the peer address.
func (c *TCPConn) RemoteAddr() string {
	if addr := c.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
