package session

import "time"

// BackoffConfig defines dial retry backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config defines dial-side reliability defaults. The retry budget is
// bounded; a peer that never binds fails the dialer, it does not hang it.
type Config struct {
	MaxConnectAttempts int
	ConnectTimeout     time.Duration
	Backoff            BackoffConfig
}

// DefaultConfig covers the rendezvous window between the listener bind and
// the responder's first dial.
func DefaultConfig() Config {
	return Config{
		MaxConnectAttempts: 5,
		ConnectTimeout:     2 * time.Second,
		Backoff: BackoffConfig{
			InitialDelay: 100 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     time.Second,
			Jitter:       false,
		},
	}
}
