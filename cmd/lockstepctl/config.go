package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/lockstep/internal/session"
)

// fileConfig is the raw TOML shape. It covers dial plumbing only; the
// protocol's address, round count, and work duration are fixed constants
// and deliberately have no keys here.
type fileConfig struct {
	Dial dialConfig `toml:"dial"`
}

type dialConfig struct {
	MaxConnectAttempts int     `toml:"max_connect_attempts"`
	ConnectTimeout     string  `toml:"connect_timeout"`
	InitialDelay       string  `toml:"initial_delay"`
	MaxDelay           string  `toml:"max_delay"`
	Multiplier         float64 `toml:"multiplier"`
	Jitter             bool    `toml:"jitter"`
}

// loadSessionConfig overlays an optional TOML file onto the session
// defaults. An empty path returns the defaults untouched.
func loadSessionConfig(path string) (session.Config, error) {
	cfg := session.DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return session.Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("dial", "max_connect_attempts") {
		if raw.Dial.MaxConnectAttempts < 1 {
			return session.Config{}, fmt.Errorf("config: max_connect_attempts must be >= 1")
		}
		cfg.MaxConnectAttempts = raw.Dial.MaxConnectAttempts
	}
	if meta.IsDefined("dial", "connect_timeout") {
		d, err := parseDuration(raw.Dial.ConnectTimeout, "connect_timeout")
		if err != nil {
			return session.Config{}, err
		}
		cfg.ConnectTimeout = d
	}
	if meta.IsDefined("dial", "initial_delay") {
		d, err := parseDuration(raw.Dial.InitialDelay, "initial_delay")
		if err != nil {
			return session.Config{}, err
		}
		cfg.Backoff.InitialDelay = d
	}
	if meta.IsDefined("dial", "max_delay") {
		d, err := parseDuration(raw.Dial.MaxDelay, "max_delay")
		if err != nil {
			return session.Config{}, err
		}
		cfg.Backoff.MaxDelay = d
	}
	if meta.IsDefined("dial", "multiplier") {
		cfg.Backoff.Multiplier = raw.Dial.Multiplier
	}
	if meta.IsDefined("dial", "jitter") {
		cfg.Backoff.Jitter = raw.Dial.Jitter
	}
	return cfg, nil
}

func parseDuration(raw, key string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("config: parse %s: %w", key, err)
	}
	return d, nil
}
