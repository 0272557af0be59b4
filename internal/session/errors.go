package session

import "errors"

var (
	ErrBind      = errors.New("session: bind failed")
	ErrAccept    = errors.New("session: accept failed")
	ErrConnect   = errors.New("session: connect failed")
	ErrTransport = errors.New("session: transport failed")
)
