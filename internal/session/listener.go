package session

import (
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog/log"
)

// Listener reserves an address and accepts exactly one peer for the lifetime
// of the program. It is not a general accept loop.
type Listener struct {
	ln        net.Listener
	closeOnce sync.Once
}

// Listen binds addr for incoming connections. The stack's default SO_REUSEADDR
// handling makes the address immediately rebindable after a prior run.
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBind, addr, err)
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("listening")
	return &Listener{ln: ln}, nil
}

// Addr reports the bound address, resolved after an ":0" bind.
func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

// AcceptOne blocks until one peer connects, then releases the listening
// socket and hands the conn to a Channel. Closing the Listener unblocks a
// pending accept.
func (l *Listener) AcceptOne() (*Channel, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAccept, l.ln.Addr().String(), err)
	}
	log.Info().Str("remote", conn.RemoteAddr().String()).Msg("peer connected")
	_ = l.Close()
	return NewChannel(conn), nil
}

// Close releases the listening socket exactly once; double-close is a no-op.
func (l *Listener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		err = l.ln.Close()
	})
	return err
}
