package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soundctl/liveosc/live"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, live.DefaultConfig(), cfg)
}

func TestLoadConfigOverlay(t *testing.T) {
	// Only the keys present in the file override the defaults.
	path := writeConfig(t, `
host = "10.0.0.5"
timeout_ms = 1500
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.5", cfg.Host)
	require.Equal(t, 1500*time.Millisecond, cfg.Timeout)
	require.Equal(t, live.DefaultConfig().SendPort, cfg.SendPort)
	require.Equal(t, live.DefaultConfig().RecvPort, cfg.RecvPort)
}

func TestLoadConfigEnvWinsOverFile(t *testing.T) {
	path := writeConfig(t, `
host = "10.0.0.5"
send_port = 9000
`)
	t.Setenv("LIVECTL_HOST", "192.168.1.20")
	t.Setenv("LIVECTL_TIMEOUT_MS", "250")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "192.168.1.20", cfg.Host)
	require.Equal(t, 9000, cfg.SendPort)
	require.Equal(t, 250*time.Millisecond, cfg.Timeout)
}

func TestLoadConfigBadValues(t *testing.T) {
	t.Run("malformed file", func(t *testing.T) {
		path := writeConfig(t, `host = [`)
		_, err := loadConfig(path)
		require.Error(t, err)
	})

	t.Run("bad env port", func(t *testing.T) {
		t.Setenv("LIVECTL_SEND_PORT", "not-a-port")
		_, err := loadConfig("")
		require.Error(t, err)
	})
}

func TestParseArg(t *testing.T) {
	tests := []struct {
		token string
		want  interface{}
	}{
		{"4", 4},
		{"-12", -12},
		{"4.5", 4.5},
		{"true", true},
		{"false", false},
		{"Drums", "Drums"},
		{"1a", "1a"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			require.Equal(t, tt.want, parseArg(tt.token))
		})
	}
}
