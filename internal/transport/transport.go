// Package transport frames protocol records over the byte streams a session
// can arrive on.
package transport

import (
	"errors"

	"github.com/halligalli/bell-server/internal/protocol"
)

// Conn carries whole protocol records. Reads and writes may run on different
// goroutines, but callers must not issue concurrent writes. Close may be
// called any number of times from any goroutine.
type Conn interface {
	ReadMessage() (protocol.Message, error)
	WriteMessage(msg protocol.Message) error
	Close() error
	RemoteAddr() string
}

// ErrClosed is returned by writes on a closed connection.
var ErrClosed = errors.New("connection closed")
