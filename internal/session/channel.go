package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	// terminator closes every token on the wire; it is never part of the
	// token text.
	terminator = '\n'

	// readBufferSize bounds one receive. A token must fit in a single
	// buffered read; there is no length prefix.
	readBufferSize = 128
)

// Channel wraps one endpoint of an established connection and moves exactly
// one token per Send or Receive. It owns the conn exclusively.
type Channel struct {
	conn      net.Conn
	reader    *bufio.Reader
	closeOnce sync.Once
	closeErr  error
}

// NewChannel takes ownership of conn.
func NewChannel(conn net.Conn) *Channel {
	return &Channel{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, readBufferSize),
	}
}

// RemoteAddr reports the peer address for logging.
func (c *Channel) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Send writes one token followed by the terminator in a single write.
// Any write failure is fatal to the caller; there is no retry.
func (c *Channel) Send(token string) error {
	if token == "" {
		return fmt.Errorf("%w: send of empty token", ErrTransport)
	}
	buf := make([]byte, 0, len(token)+1)
	buf = append(buf, token...)
	buf = append(buf, terminator)
	if _, err := c.conn.Write(buf); err != nil {
		return fmt.Errorf("%w: send %q: %v", ErrTransport, token, err)
	}
	return nil
}

// Receive blocks until one complete token arrives or the transport fails.
// A peer close shows up as a transport error, never as an empty token.
func (c *Channel) Receive() (string, error) {
	line, err := c.reader.ReadSlice(terminator)
	if err != nil {
		if errors.Is(err, bufio.ErrBufferFull) {
			return "", fmt.Errorf("%w: token exceeds %d byte receive buffer", ErrTransport, readBufferSize)
		}
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: receive: peer closed connection", ErrTransport)
		}
		return "", fmt.Errorf("%w: receive: %v", ErrTransport, err)
	}
	token := string(line[:len(line)-1])
	if token == "" {
		return "", fmt.Errorf("%w: received empty token", ErrTransport)
	}
	return token, nil
}

// Close releases the underlying conn exactly once. Further calls are no-ops
// returning the first result.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
		log.Debug().Str("remote", c.conn.RemoteAddr().String()).Msg("session channel closed")
	})
	return c.closeErr
}
