package protocol

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// State is one role's position in the turn-taking machine.
type State int

const (
	StateWaiting State = iota
	StateActive
	StateDone
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateActive:
		return "active"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Role names which side of the exchange an engine drives.
type Role string

const (
	RoleInitiator Role = "initiator"
	RoleResponder Role = "responder"
)

// Conn is the engine's view of a session channel: one token out, one token
// in, both blocking.
type Conn interface {
	Send(token string) error
	Receive() (string, error)
}

// Observer receives one callback per state transition. Nil is allowed.
type Observer func(role Role, next State, round int)

// Config tunes one engine. A non-positive round count falls back to
// DefaultRounds; a zero WorkDuration skips the simulated work entirely.
type Config struct {
	Rounds       int
	WorkDuration time.Duration
	Observer     Observer
}

func (c Config) withDefaults() Config {
	if c.Rounds <= 0 {
		c.Rounds = DefaultRounds
	}
	return c
}

// DefaultEngineConfig mirrors the reference behavior: six rounds of one
// second of simulated work per turn.
func DefaultEngineConfig() Config {
	return Config{
		Rounds:       DefaultRounds,
		WorkDuration: DefaultWorkDuration,
	}
}

// Engine drives one role of the exchange over one channel. The ordered
// stream is the only synchronization between the two engines: each side's
// next step is gated on the peer's token, so rounds cannot interleave or be
// skipped.
type Engine struct {
	role         Role
	conn         Conn
	cfg          Config
	state        State
	round        int
	lastReceived string
}

// NewInitiator builds the side that speaks first. It starts active.
func NewInitiator(conn Conn, cfg Config) *Engine {
	return &Engine{role: RoleInitiator, conn: conn, cfg: cfg.withDefaults(), state: StateActive}
}

// NewResponder builds the side that listens first. It starts waiting.
func NewResponder(conn Conn, cfg Config) *Engine {
	return &Engine{role: RoleResponder, conn: conn, cfg: cfg.withDefaults(), state: StateWaiting}
}

// State reports the engine's current state.
func (e *Engine) State() State {
	return e.state
}

// CompletedRounds reports how many full rounds this side has finished.
func (e *Engine) CompletedRounds() int {
	return e.round
}

// LastReceived reports the most recent peer token, opaque bytes included.
func (e *Engine) LastReceived() string {
	return e.lastReceived
}

// Run drives the engine to StateDone or to its first fatal error. Every
// transport failure is fatal to this role; there is no retry mid-protocol.
func (e *Engine) Run(ctx context.Context) error {
	log.Info().
		Str("role", string(e.role)).
		Stringer("state", e.state).
		Int("rounds", e.cfg.Rounds).
		Msg("engine starting")

	var err error
	switch e.role {
	case RoleInitiator:
		err = e.runInitiator(ctx)
	case RoleResponder:
		err = e.runResponder(ctx)
	default:
		err = fmt.Errorf("protocol: unknown role %q", e.role)
	}
	if err != nil {
		log.Error().Str("role", string(e.role)).Int("round", e.round+1).Err(err).Msg("engine failed")
		return err
	}
	e.transition(StateDone)
	log.Info().Str("role", string(e.role)).Int("rounds", e.round).Msg("engine finished")
	return nil
}

// runInitiator performs work -> send go-ahead -> receive ack per round.
func (e *Engine) runInitiator(ctx context.Context) error {
	for e.round < e.cfg.Rounds {
		round := e.round + 1
		if err := e.work(ctx); err != nil {
			return err
		}
		if err := e.conn.Send(string(TokenGoAhead)); err != nil {
			return fmt.Errorf("round %d send %s: %w", round, TokenGoAhead, err)
		}
		log.Info().Str("role", string(e.role)).Int("round", round).Str("token", string(TokenGoAhead)).Msg("sent")
		e.transition(StateWaiting)

		msg, err := e.conn.Receive()
		if err != nil {
			return fmt.Errorf("round %d receive: %w", round, err)
		}
		// Payload is accepted as opaque data and logged, not matched
		// against TokenAck. Tightening this would change behavior under
		// malformed input.
		e.lastReceived = msg
		log.Info().Str("role", string(e.role)).Int("round", round).Str("token", msg).Msg("received")
		e.transition(StateActive)
		e.round++
	}
	return nil
}

// runResponder performs receive go-ahead -> work -> send ack per round.
func (e *Engine) runResponder(ctx context.Context) error {
	for e.round < e.cfg.Rounds {
		round := e.round + 1
		msg, err := e.conn.Receive()
		if err != nil {
			return fmt.Errorf("round %d receive: %w", round, err)
		}
		e.lastReceived = msg
		log.Info().Str("role", string(e.role)).Int("round", round).Str("token", msg).Msg("received")
		e.transition(StateActive)

		if err := e.work(ctx); err != nil {
			return err
		}
		if err := e.conn.Send(string(TokenAck)); err != nil {
			return fmt.Errorf("round %d send %s: %w", round, TokenAck, err)
		}
		log.Info().Str("role", string(e.role)).Int("round", round).Str("token", string(TokenAck)).Msg("sent")
		e.transition(StateWaiting)
		e.round++
	}
	return nil
}

// work simulates this role's bounded local work for one turn.
func (e *Engine) work(ctx context.Context) error {
	if e.cfg.WorkDuration == 0 {
		return nil
	}
	timer := time.NewTimer(e.cfg.WorkDuration)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("round %d work interrupted: %w", e.round+1, ctx.Err())
	}
}

func (e *Engine) transition(next State) {
	e.state = next
	log.Debug().
		Str("role", string(e.role)).
		Stringer("state", next).
		Int("completed_rounds", e.round).
		Msg("state transition")
	if e.cfg.Observer != nil {
		e.cfg.Observer(e.role, next, e.round)
	}
}
