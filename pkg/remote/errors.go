package remote

import (
	"errors"
	"fmt"
)

// Sentinel errors for common session error conditions.
var (
	// ErrSessionClosed is returned when an operation is attempted on a
	// closed session.
	ErrSessionClosed = errors.New("remote: session closed")

	// ErrHandleUnknown is reported when an event names a container this
	// session never mounted or has already detached.
	ErrHandleUnknown = errors.New("remote: unknown container")

	// ErrInvalidHandshake is returned when the client's first frame is
	// not a well-formed hello.
	ErrInvalidHandshake = errors.New("remote: invalid handshake")

	// ErrVersionMismatch is returned when the client speaks a different
	// protocol version.
	ErrVersionMismatch = errors.New("remote: protocol version mismatch")
)

// SessionError wraps an error with session context for debugging.
type SessionError struct {
	SessionID string
	Op        string // Operation that failed
	Err       error  // Underlying error
}

// Error returns the error message with session context.
func (e *SessionError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("remote: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("remote: session %s: %s: %v", e.SessionID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SessionError) Unwrap() error {
	return e.Err
}
