package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Server.TCP.Address)
	assert.False(t, cfg.Server.WebSocket.Enabled)
	assert.Equal(t, "/ws", cfg.Server.WebSocket.Path)
	assert.False(t, cfg.Server.GRPC.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 10, cfg.Game.WinScore)
	assert.True(t, cfg.Game.ResetWhenEmpty)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  tcp:
    address: "127.0.0.1:6000"
  websocket:
    enabled: true
    address: ":9090"
    path: /bell
  grpc:
    enabled: true
    address: ":7000"
  write_timeout: 250ms
game:
  win_score: 3
  reset_when_empty: false
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:6000", cfg.Server.TCP.Address)
	assert.True(t, cfg.Server.WebSocket.Enabled)
	assert.Equal(t, ":9090", cfg.Server.WebSocket.Address)
	assert.Equal(t, "/bell", cfg.Server.WebSocket.Path)
	assert.True(t, cfg.Server.GRPC.Enabled)
	assert.Equal(t, ":7000", cfg.Server.GRPC.Address)
	assert.Equal(t, 250*time.Millisecond, cfg.Server.WriteTimeout)
	assert.Equal(t, 3, cfg.Game.WinScore)
	assert.False(t, cfg.Game.ResetWhenEmpty)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "game:\n  win_score: 3\n")
	t.Setenv("BELL_GAME_WIN_SCORE", "7")
	t.Setenv("BELL_SERVER_TCP_ADDRESS", ":5555")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Game.WinScore)
	assert.Equal(t, ":5555", cfg.Server.TCP.Address)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero win score", "game:\n  win_score: 0\n"},
		{"negative win score", "game:\n  win_score: -2\n"},
		{"empty tcp address", "server:\n  tcp:\n    address: \"\"\n"},
		{"relative websocket path", "server:\n  websocket:\n    enabled: true\n    path: ws\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}
