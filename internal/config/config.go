// Package config loads server settings from YAML and BELL_ environment
// variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Game    GameConfig    `mapstructure:"game"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	TCP          TCPConfig       `mapstructure:"tcp"`
	WebSocket    WebSocketConfig `mapstructure:"websocket"`
	GRPC         GRPCConfig      `mapstructure:"grpc"`
	WriteTimeout time.Duration   `mapstructure:"write_timeout"`
}

// TCPConfig configures the newline-delimited JSON listener.
type TCPConfig struct {
	Address string `mapstructure:"address"`
}

// WebSocketConfig configures the optional WebSocket endpoint.
type WebSocketConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Path    string `mapstructure:"path"`
}

// GRPCConfig configures the health-check server.
type GRPCConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// GameConfig holds match rules.
type GameConfig struct {
	WinScore       int  `mapstructure:"win_score"`
	ResetWhenEmpty bool `mapstructure:"reset_when_empty"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads the configuration file at path, if it exists, and applies
// environment overrides. An empty path uses defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.tcp.address", ":5000")
	v.SetDefault("server.websocket.enabled", false)
	v.SetDefault("server.websocket.address", ":8080")
	v.SetDefault("server.websocket.path", "/ws")
	v.SetDefault("server.grpc.enabled", false)
	v.SetDefault("server.grpc.address", ":50051")
	v.SetDefault("server.write_timeout", 5*time.Second)

	v.SetDefault("game.win_score", 10)
	v.SetDefault("game.reset_when_empty", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.TCP.Address) == "" {
		return errors.New("config: server.tcp.address is required")
	}
	if c.Game.WinScore <= 0 {
		return fmt.Errorf("config: game.win_score must be positive, got %d", c.Game.WinScore)
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("config: server.write_timeout must not be negative, got %s", c.Server.WriteTimeout)
	}
	if c.Server.WebSocket.Enabled && !strings.HasPrefix(c.Server.WebSocket.Path, "/") {
		return fmt.Errorf("config: server.websocket.path must start with /, got %q", c.Server.WebSocket.Path)
	}
	return nil
}
