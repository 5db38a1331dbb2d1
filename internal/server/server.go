// Package server accepts client connections, seats them at the match and
// runs their sessions.
package server

import (
	"errors"
	"sync"
	"time"

	"github.com/halligalli/bell-server/internal/game"
	"github.com/halligalli/bell-server/internal/game/seats"
	"github.com/halligalli/bell-server/internal/session"
	"github.com/halligalli/bell-server/internal/transport"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
)

// Server hands accepted connections to sessions bound to one match.
type Server struct {
	match        *game.Match
	writeTimeout time.Duration
	logger       *zap.Logger

	mu       sync.Mutex
	sessions map[*session.Session]struct{}
	closing  bool
	health   *health.Server
	wg       sync.WaitGroup
}

// New creates a server for match. writeTimeout bounds every send to a client.
func New(match *game.Match, writeTimeout time.Duration, logger *zap.Logger) *Server {
	return &Server{
		match:        match,
		writeTimeout: writeTimeout,
		logger:       logger,
		sessions:     make(map[*session.Session]struct{}),
	}
}

// admit reserves a seat for conn and starts its session. A full table, or a
// server that is shutting down, closes conn without sending anything.
func (s *Server) admit(conn transport.Conn) {
	sess := session.New(conn, s.match, s.logger)

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	if _, err := s.match.Reserve(sess); err != nil {
		s.mu.Unlock()
		if errors.Is(err, seats.ErrTableFull) {
			s.logger.Info("table full, connection refused", zap.String("remote_addr", conn.RemoteAddr()))
		} else {
			s.logger.Warn("seat reservation failed", zap.Error(err))
		}
		_ = conn.Close()
		return
	}
	s.sessions[sess] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()
	s.reportCapacity()

	go func() {
		defer s.wg.Done()
		defer s.forget(sess)
		sess.Run()
	}()
}

func (s *Server) forget(sess *session.Session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
	s.reportCapacity()
}

// ActiveSessions reports how many sessions are running.
func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Shutdown refuses new connections, closes every running session and waits
// for their receive loops to finish.
func (s *Server) Shutdown() {
	s.mu.Lock()
	s.closing = true
	open := make([]*session.Session, 0, len(s.sessions))
	for sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	for _, sess := range open {
		if err := sess.Close(); err != nil {
			s.logger.Debug("session close failed", zap.String("session_id", sess.ID()), zap.Error(err))
		}
	}
	s.wg.Wait()
	s.logger.Info("all sessions closed", zap.Int("count", len(open)))
}
