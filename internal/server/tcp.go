package server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/halligalli/bell-server/internal/transport"
	"go.uber.org/zap"
)

const acceptBackoff = 50 * time.Millisecond

// ServeTCP accepts connections on ln until ctx is cancelled or ln is closed.
// Accept failures are logged and the loop keeps going.
func (s *Server) ServeTCP(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	s.logger.Info("tcp listener started", zap.String("address", ln.Addr().String()))
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.logger.Info("tcp listener stopped", zap.String("address", ln.Addr().String()))
				return nil
			}
			s.logger.Error("accept failed", zap.Error(err))
			time.Sleep(acceptBackoff)
			continue
		}
		s.admit(transport.NewTCPConn(conn, s.writeTimeout))
	}
}
