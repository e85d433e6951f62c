package transport

import (
	"errors"
	"fmt"
)

// Session lifecycle errors.
var (
	// ErrSessionClosed indicates the session has been torn down.
	ErrSessionClosed = errors.New("session closed")

	// ErrNotReady indicates traffic was attempted before the session
	// finished its handshake or raw start.
	ErrNotReady = errors.New("session not ready")

	// ErrAlreadyStarted indicates a second handshake or raw start on a
	// running session.
	ErrAlreadyStarted = errors.New("session already started")
)

// SessionError carries the operation and peer address alongside the
// underlying failure.
type SessionError struct {
	Op   string // operation that failed
	Addr string // remote address if known
	Err  error  // underlying error
}

func (e *SessionError) Error() string {
	if e.Addr != "" {
		return fmt.Sprintf("session %s %s: %v", e.Op, e.Addr, e.Err)
	}
	return fmt.Sprintf("session %s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
