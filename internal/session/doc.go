// Package session owns the transport layer of the token exchange.
//
// Ownership boundary:
// - Channel send/receive primitives over one TCP conn
// - single-accept Listener
// - dialer with bounded retry backoff
package session
