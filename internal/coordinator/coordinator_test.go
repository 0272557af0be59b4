package coordinator

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/danmuck/lockstep/internal/protocol"
	"github.com/danmuck/lockstep/internal/session"
	"github.com/danmuck/lockstep/internal/testutil/testlog"
)

// roleTrace collects transitions from both goroutines, keyed by role.
type roleTrace struct {
	mu     sync.Mutex
	states map[protocol.Role][]protocol.State
	rounds map[protocol.Role][]int
}

func newRoleTrace() *roleTrace {
	return &roleTrace{
		states: make(map[protocol.Role][]protocol.State),
		rounds: make(map[protocol.Role][]int),
	}
}

func (r *roleTrace) observer() protocol.Observer {
	return func(role protocol.Role, next protocol.State, round int) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.states[role] = append(r.states[role], next)
		r.rounds[role] = append(r.rounds[role], round)
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.Rounds = 3
	cfg.WorkDuration = 2 * time.Millisecond
	cfg.Session.Backoff.InitialDelay = 5 * time.Millisecond
	return cfg
}

func TestRunCompletesAllRounds(t *testing.T) {
	testlog.Start(t)
	trace := newRoleTrace()
	cfg := testConfig()
	cfg.Observer = trace.observer()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := Run(ctx, cfg); err != nil {
		t.Fatalf("run: %v", err)
	}

	trace.mu.Lock()
	defer trace.mu.Unlock()
	for _, role := range []protocol.Role{protocol.RoleInitiator, protocol.RoleResponder} {
		states := trace.states[role]
		if len(states) == 0 || states[len(states)-1] != protocol.StateDone {
			t.Fatalf("%s did not reach done: %v", role, states)
		}
		rounds := trace.rounds[role]
		for i := 1; i < len(rounds); i++ {
			if rounds[i] < rounds[i-1] {
				t.Fatalf("%s round order regressed: %v", role, rounds)
			}
		}
		if last := rounds[len(rounds)-1]; last != cfg.Rounds {
			t.Fatalf("%s finished %d rounds, expected %d", role, last, cfg.Rounds)
		}
	}
}

func TestRunSurfacesBindError(t *testing.T) {
	testlog.Start(t)
	// A rogue listener occupies the address first.
	rogue, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("rogue listen: %v", err)
	}
	defer rogue.Close()

	cfg := testConfig()
	cfg.Addr = rogue.Addr().String()

	err = Run(context.Background(), cfg)
	if !errors.Is(err, session.ErrBind) {
		t.Fatalf("expected ErrBind, got %v", err)
	}
}

func TestAddressRebindableAfterRun(t *testing.T) {
	testlog.Start(t)
	// Reserve a concrete port, release it, run the full exchange on it,
	// then prove the address is free again.
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("probe listen: %v", err)
	}
	addr := probe.Addr().String()
	_ = probe.Close()

	cfg := testConfig()
	cfg.Addr = addr
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("run: %v", err)
	}

	again, err := net.Listen("tcp", addr)
	if err != nil {
		t.Fatalf("address not rebindable after run: %v", err)
	}
	_ = again.Close()
}

func TestRunFailsFastOnCancelledContext(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig()
	cfg.Session.MaxConnectAttempts = 1

	// The responder's dial fails under the cancelled context, the pending
	// accept is unblocked by the listener teardown, and Run reports the
	// first failure instead of hanging.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Run(ctx, cfg); err == nil {
		t.Fatalf("expected error from cancelled run")
	}
}
