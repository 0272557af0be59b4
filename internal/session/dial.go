package session

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"
)

// Dial connects to the initiator's address, retrying on refusal for the
// bounded attempt budget in cfg. This replaces a fixed warm-up sleep before
// the first connect: the listener may not be ready yet, and a short backoff
// loop tolerates that window without changing round semantics.
func Dial(ctx context.Context, addr string, cfg Config) (*Channel, error) {
	if cfg.MaxConnectAttempts < 1 {
		cfg.MaxConnectAttempts = 1
	}
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxConnectAttempts; attempt++ {
		if attempt > 1 {
			delay := NextBackoffDelay(cfg.Backoff, attempt-1, nil)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %s: %v", ErrConnect, addr, ctx.Err())
			}
		}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			log.Info().Str("addr", addr).Int("attempt", attempt).Msg("connected")
			return NewChannel(conn), nil
		}
		lastErr = err
		log.Debug().Str("addr", addr).Int("attempt", attempt).Err(err).Msg("connect attempt failed")
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w: %s after %d attempts: %v", ErrConnect, addr, cfg.MaxConnectAttempts, lastErr)
}
