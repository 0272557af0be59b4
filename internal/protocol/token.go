package protocol

import "time"

// Token is one protocol message. The alphabet has exactly two values; a
// token is never empty and always travels as a single logical unit.
type Token string

const (
	// TokenGoAhead is spoken by the initiator to hand the turn over.
	TokenGoAhead Token = "PING"
	// TokenAck is the responder's reply closing the round.
	TokenAck Token = "PONG"
)

const (
	// DefaultAddr is the rendezvous address shared by both roles. Fixed by
	// the protocol, never a runtime parameter.
	DefaultAddr = "127.0.0.1:9889"

	// DefaultRounds is the fixed iteration count. Change it here; it is not
	// exposed at runtime.
	DefaultRounds = 6

	// DefaultWorkDuration bounds the simulated work each role performs on
	// its turn.
	DefaultWorkDuration = time.Second
)
