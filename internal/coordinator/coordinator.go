// Package coordinator runs both roles of the exchange inside one process:
// two goroutines, no shared state, all coordination through the stream.
package coordinator

import (
	"context"
	"time"

	"github.com/danmuck/lockstep/internal/protocol"
	"github.com/danmuck/lockstep/internal/session"
	"github.com/rs/zerolog/log"
)

// Config wires one in-process run. Addr and Rounds default to the protocol
// constants; tests may bind "127.0.0.1:0" and let the responder dial the
// resolved address.
type Config struct {
	Addr         string
	Rounds       int
	WorkDuration time.Duration
	Session      session.Config
	Observer     protocol.Observer
}

// DefaultConfig matches the reference run: loopback rendezvous, six rounds,
// one second of simulated work per turn.
func DefaultConfig() Config {
	return Config{
		Addr:         protocol.DefaultAddr,
		Rounds:       protocol.DefaultRounds,
		WorkDuration: protocol.DefaultWorkDuration,
		Session:      session.DefaultConfig(),
	}
}

// Run binds the listener, launches the responder's dial and the initiator's
// accept as two goroutines, and joins both. The first fatal error wins; the
// other role is unblocked by cancellation and teardown of its endpoint.
func Run(ctx context.Context, cfg Config) error {
	ln, err := session.Listen(cfg.Addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Rounds <= 0 {
		cfg.Rounds = protocol.DefaultRounds
	}
	engCfg := protocol.Config{
		Rounds:       cfg.Rounds,
		WorkDuration: cfg.WorkDuration,
		Observer:     cfg.Observer,
	}

	errs := make(chan error, 2)
	go func() {
		errs <- runInitiator(ctx, ln, engCfg)
	}()
	go func() {
		errs <- runResponder(ctx, ln.Addr(), cfg.Session, engCfg)
	}()

	var firstErr error
	for i := 0; i < 2; i++ {
		err := <-errs
		if err != nil && firstErr == nil {
			firstErr = err
			// Unblock the peer: a pending accept returns once the
			// listener closes, a pending dial or work sleep honors ctx.
			cancel()
			_ = ln.Close()
		}
	}
	if firstErr != nil {
		log.Error().Err(firstErr).Msg("run failed")
		return firstErr
	}
	log.Info().Int("rounds", engCfg.Rounds).Msg("both roles done")
	return nil
}

func runInitiator(ctx context.Context, ln *session.Listener, cfg protocol.Config) error {
	ch, err := ln.AcceptOne()
	if err != nil {
		return err
	}
	defer ch.Close()
	return protocol.NewInitiator(ch, cfg).Run(ctx)
}

func runResponder(ctx context.Context, addr string, scfg session.Config, cfg protocol.Config) error {
	ch, err := session.Dial(ctx, addr, scfg)
	if err != nil {
		return err
	}
	defer ch.Close()
	return protocol.NewResponder(ch, cfg).Run(ctx)
}
