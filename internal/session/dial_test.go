package session

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/danmuck/lockstep/internal/testutil/testlog"
)

func TestNextBackoffDelayGrowsAndClamps(t *testing.T) {
	cfg := BackoffConfig{
		InitialDelay: 100 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     300 * time.Millisecond,
	}

	if d := NextBackoffDelay(cfg, 1, nil); d != 100*time.Millisecond {
		t.Fatalf("attempt 1: expected 100ms, got %v", d)
	}
	if d := NextBackoffDelay(cfg, 2, nil); d != 200*time.Millisecond {
		t.Fatalf("attempt 2: expected 200ms, got %v", d)
	}
	if d := NextBackoffDelay(cfg, 3, nil); d != 300*time.Millisecond {
		t.Fatalf("attempt 3: expected clamp at 300ms, got %v", d)
	}
	if d := NextBackoffDelay(cfg, 10, nil); d != 300*time.Millisecond {
		t.Fatalf("attempt 10: expected clamp at 300ms, got %v", d)
	}
}

func TestNextBackoffDelayJitterStaysBounded(t *testing.T) {
	cfg := BackoffConfig{
		InitialDelay: 100 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     time.Second,
		Jitter:       true,
	}
	rng := rand.New(rand.NewSource(7))
	for attempt := 2; attempt <= 5; attempt++ {
		d := NextBackoffDelay(cfg, attempt, rng)
		if d < 0 || d > 2*cfg.MaxDelay {
			t.Fatalf("attempt %d: jittered delay out of bounds: %v", attempt, d)
		}
	}
}

func TestDialFailsAfterAttemptBudget(t *testing.T) {
	testlog.Start(t)
	// Bind then close to get a port that refuses connections.
	ln, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr()
	_ = ln.Close()

	cfg := Config{
		MaxConnectAttempts: 3,
		ConnectTimeout:     time.Second,
		Backoff: BackoffConfig{
			InitialDelay: 5 * time.Millisecond,
			Multiplier:   1.0,
		},
	}
	if _, err := Dial(context.Background(), addr, cfg); !errors.Is(err, ErrConnect) {
		t.Fatalf("expected ErrConnect after budget, got %v", err)
	}
}

func TestDialToleratesLateListener(t *testing.T) {
	testlog.Start(t)
	ln, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr()
	_ = ln.Close()

	// The listener appears only after the first dial attempts have been
	// refused; the bounded backoff loop must ride that window out.
	ready := make(chan *Listener, 1)
	go func() {
		time.Sleep(30 * time.Millisecond)
		late, err := Listen(addr)
		if err != nil {
			ready <- nil
			return
		}
		ready <- late
		ch, err := late.AcceptOne()
		if err != nil {
			return
		}
		defer ch.Close()
		_, _ = ch.Receive()
	}()

	cfg := Config{
		MaxConnectAttempts: 20,
		ConnectTimeout:     time.Second,
		Backoff: BackoffConfig{
			InitialDelay: 10 * time.Millisecond,
			Multiplier:   1.0,
		},
	}
	ch, err := Dial(context.Background(), addr, cfg)
	if err != nil {
		t.Fatalf("dial with late listener: %v", err)
	}
	defer ch.Close()

	if late := <-ready; late == nil {
		t.Fatalf("late listener failed to bind")
	}
	if err := ch.Send("PING"); err != nil {
		t.Fatalf("send after rendezvous: %v", err)
	}
}

func TestDialHonorsContextCancel(t *testing.T) {
	testlog.Start(t)
	ln, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr()
	_ = ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{
		MaxConnectAttempts: 50,
		ConnectTimeout:     time.Second,
		Backoff: BackoffConfig{
			InitialDelay: 50 * time.Millisecond,
			Multiplier:   1.0,
		},
	}
	if _, err := Dial(ctx, addr, cfg); !errors.Is(err, ErrConnect) {
		t.Fatalf("expected ErrConnect on cancelled context, got %v", err)
	}
}
