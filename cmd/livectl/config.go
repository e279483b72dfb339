package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/soundctl/liveosc/live"
)

// livectl config.toml key mapping to connection settings.
type fileConfig struct {
	Host      string `toml:"host"`
	SendPort  int    `toml:"send_port"`
	RecvPort  int    `toml:"recv_port"`
	TimeoutMS int    `toml:"timeout_ms"`
}

// loadConfig builds the connection config in three layers: defaults, then
// the TOML file (only keys actually present), then LIVECTL_* environment
// variables. A .env file in the working directory is honored when present.
func loadConfig(path string) (live.Config, error) {
	cfg := live.DefaultConfig()

	if path != "" {
		var raw fileConfig
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return live.Config{}, fmt.Errorf("load config: %w", err)
		}

		if meta.IsDefined("host") {
			cfg.Host = strings.TrimSpace(raw.Host)
		}
		if meta.IsDefined("send_port") {
			cfg.SendPort = raw.SendPort
		}
		if meta.IsDefined("recv_port") {
			cfg.RecvPort = raw.RecvPort
		}
		if meta.IsDefined("timeout_ms") {
			cfg.Timeout = time.Duration(raw.TimeoutMS) * time.Millisecond
		}
	}

	_ = godotenv.Load()

	if v := os.Getenv("LIVECTL_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("LIVECTL_SEND_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return live.Config{}, fmt.Errorf("LIVECTL_SEND_PORT: %w", err)
		}
		cfg.SendPort = p
	}
	if v := os.Getenv("LIVECTL_RECV_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return live.Config{}, fmt.Errorf("LIVECTL_RECV_PORT: %w", err)
		}
		cfg.RecvPort = p
	}
	if v := os.Getenv("LIVECTL_TIMEOUT_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return live.Config{}, fmt.Errorf("LIVECTL_TIMEOUT_MS: %w", err)
		}
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}

	return cfg, nil
}

// parseArg converts a CLI token into a typed OSC argument:
// int, then float, then bool, falling back to string.
func parseArg(token string) interface{} {
	if i, err := strconv.Atoi(token); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return f
	}
	switch token {
	case "true":
		return true
	case "false":
		return false
	}
	return token
}

// parseArgs converts all CLI tokens following the address.
func parseArgs(tokens []string) []interface{} {
	args := make([]interface{}, 0, len(tokens))
	for _, tok := range tokens {
		args = append(args, parseArg(tok))
	}
	return args
}
