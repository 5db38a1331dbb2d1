// Package session runs the receive loop for one connected client.
package session

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/halligalli/bell-server/internal/game"
	"github.com/halligalli/bell-server/internal/protocol"
	"github.com/halligalli/bell-server/internal/transport"
	"go.uber.org/zap"
)

// Table is the part of the match a session drives.
type Table interface {
	Join(peer game.Peer, name string) error
	Leave(peer game.Peer)
	FlipCard(peer game.Peer, card protocol.CardRef)
	RingBell(peer game.Peer)
}

// Session owns one client connection. Its receive loop processes records
// one at a time in arrival order; sends from any goroutine are serialized.
type Session struct {
	id     string
	conn   transport.Conn
	table  Table
	logger *zap.Logger

	sendMu sync.Mutex

	// owned by the Run goroutine
	name     string
	loggedIn bool
}

// New creates a session for an accepted connection.
func New(conn transport.Conn, table Table, logger *zap.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:     id,
		conn:   conn,
		table:  table,
		logger: logger.With(zap.String("session_id", id)),
	}
}

// ID returns the connection id.
func (s *Session) ID() string {
	return s.id
}

// Send writes one record to the client.
func (s *Session) Send(msg protocol.Message) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	return s.conn.WriteMessage(msg)
}

// Close closes the connection. It is safe to call repeatedly.
func (s *Session) Close() error {
	return s.conn.Close()
}

// Run reads records until the client logs out or the stream fails, then
// removes the session from the table and closes the connection.
func (s *Session) Run() {
	defer func() {
		s.table.Leave(s)
		if err := s.Close(); err != nil {
			s.logger.Debug("close failed", zap.Error(err))
		}
	}()

	s.logger.Info("session started", zap.String("remote_addr", s.conn.RemoteAddr()))

	for {
		msg, err := s.conn.ReadMessage()
		if err != nil {
			s.logReadError(err)
			return
		}
		if !s.handle(msg) {
			return
		}
	}
}

func (s *Session) logReadError(err error) {
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, transport.ErrClosed):
		s.logger.Info("session closed by peer", zap.String("client_id", s.name))
	case errors.Is(err, protocol.ErrUndecodable):
		s.logger.Warn("undecodable frame", zap.String("client_id", s.name), zap.Error(err))
	default:
		s.logger.Info("session read failed", zap.String("client_id", s.name), zap.Error(err))
	}
}

// handle processes one record and reports whether the loop should continue.
func (s *Session) handle(msg protocol.Message) bool {
	if !s.loggedIn {
		return s.login(msg)
	}

	switch msg.Type {
	case protocol.MsgFlipCard:
		if msg.Card == nil {
			s.logger.Debug("flip without card dropped", zap.String("client_id", s.name))
			return true
		}
		s.table.FlipCard(s, *msg.Card)
	case protocol.MsgRingBell:
		s.table.RingBell(s)
	case protocol.MsgLogout:
		s.logger.Info("logout", zap.String("client_id", s.name))
		return false
	case protocol.MsgLogin:
		s.logger.Debug("repeated login ignored", zap.String("client_id", s.name))
	default:
		s.logger.Debug("server-only message ignored",
			zap.String("client_id", s.name),
			zap.String("type", string(msg.Type)),
		)
	}
	return true
}

func (s *Session) login(msg protocol.Message) bool {
	if msg.Type != protocol.MsgLogin {
		s.logger.Warn("first message must be login", zap.String("type", string(msg.Type)))
		return false
	}
	if err := s.table.Join(s, msg.ClientID); err != nil {
		s.logger.Warn("login rejected",
			zap.String("client_id", msg.ClientID),
			zap.Error(err),
		)
		return false
	}
	s.name = strings.TrimSpace(msg.ClientID)
	s.loggedIn = true
	return true
}
