package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/halligalli/bell-server/internal/config"
	"github.com/halligalli/bell-server/internal/game"
	"github.com/halligalli/bell-server/internal/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting bell server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("bell server stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	match := game.NewMatch(game.Options{
		WinScore:       cfg.Game.WinScore,
		ResetWhenEmpty: cfg.Game.ResetWhenEmpty,
	}, logger)
	logger.Info("match initialized",
		zap.Int("win_score", cfg.Game.WinScore),
		zap.Bool("reset_when_empty", cfg.Game.ResetWhenEmpty),
	)

	srv := server.New(match, cfg.Server.WriteTimeout, logger)

	tcpLn, err := net.Listen("tcp", cfg.Server.TCP.Address)
	if err != nil {
		return fmt.Errorf("listen tcp %s: %w", cfg.Server.TCP.Address, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ServeTCP(gctx, tcpLn) })

	if cfg.Server.WebSocket.Enabled {
		wsLn, err := net.Listen("tcp", cfg.Server.WebSocket.Address)
		if err != nil {
			stop()
			_ = g.Wait()
			return fmt.Errorf("listen websocket %s: %w", cfg.Server.WebSocket.Address, err)
		}
		g.Go(func() error { return srv.ServeWebSocket(gctx, wsLn, cfg.Server.WebSocket.Path) })
	}

	if cfg.Server.GRPC.Enabled {
		grpcLn, err := net.Listen("tcp", cfg.Server.GRPC.Address)
		if err != nil {
			stop()
			_ = g.Wait()
			return fmt.Errorf("listen grpc %s: %w", cfg.Server.GRPC.Address, err)
		}
		grpcServer := srv.NewGRPCServer()
		g.Go(func() error { return srv.ServeGRPC(gctx, grpcServer, grpcLn) })
	}

	logger.Info("bell server initialized",
		zap.String("version", version),
		zap.String("tcp_address", cfg.Server.TCP.Address),
		zap.Bool("websocket_enabled", cfg.Server.WebSocket.Enabled),
		zap.Bool("grpc_enabled", cfg.Server.GRPC.Enabled),
		zap.Duration("write_timeout", cfg.Server.WriteTimeout),
	)

	<-gctx.Done()
	logger.Info("shutting down gracefully...")

	err = g.Wait()
	srv.Shutdown()
	return err
}

// initLogger builds a zap logger from the logging section. Unknown levels
// fall back to info; any format other than json uses the colored console
// encoder.
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil || level > zapcore.ErrorLevel {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
