package server

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// TableService is the health service name that reports whether the table
// still has a free seat.
const TableService = "bell.v1.Table"

// NewGRPCServer builds the health-check server. Seat capacity is reported
// under TableService from then on.
func (s *Server) NewGRPCServer() *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor(s.logger),
			LoggingInterceptor(s.logger),
		),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 10 * time.Second,
		}),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	s.mu.Lock()
	s.health = hs
	s.mu.Unlock()
	s.reportCapacity()

	return grpcServer
}

// ServeGRPC serves grpcServer on ln until ctx is cancelled, then marks every
// service NOT_SERVING and stops gracefully.
func (s *Server) ServeGRPC(ctx context.Context, grpcServer *grpc.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("grpc health server started", zap.String("address", ln.Addr().String()))
		errCh <- grpcServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.mu.Lock()
	hs := s.health
	s.mu.Unlock()
	if hs != nil {
		hs.Shutdown()
	}
	grpcServer.GracefulStop()
	s.logger.Info("grpc health server stopped")
	return nil
}

// reportCapacity publishes SERVING while a seat is free and NOT_SERVING once
// all seats are taken.
func (s *Server) reportCapacity() {
	s.mu.Lock()
	hs := s.health
	s.mu.Unlock()
	if hs == nil {
		return
	}

	st := healthpb.HealthCheckResponse_SERVING
	if s.match.FreeSeats() == 0 {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	hs.SetServingStatus(TableService, st)
}

// RecoveryInterceptor turns a handler panic into an Internal error.
func RecoveryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("grpc handler panic",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
				err = status.Error(codes.Internal, fmt.Sprintf("internal error: %v", r))
			}
		}()
		return handler(ctx, req)
	}
}

// LoggingInterceptor logs every unary call at debug level.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("grpc call",
			zap.String("method", info.FullMethod),
			zap.String("host", extractHostFromContext(ctx)),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

func extractHostFromContext(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != net.Addr(nil) {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}
	return "unknown"
}
