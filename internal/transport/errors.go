package transport

import (
	"errors"
	"fmt"
)

// ErrTimeout indicates the sensor did not deliver a complete frame before the
// read deadline.
var ErrTimeout = errors.New("timed out waiting for sensor")

// ErrClosed indicates use of a closed connection.
var ErrClosed = errors.New("connection closed")

// Error wraps a transport failure with the operation and port it occurred on.
type Error struct {
	Op   string // "open", "write", "read"
	Port string
	Err  error
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a read deadline expiring.
func (e *Error) Timeout() bool {
	return errors.Is(e.Err, ErrTimeout)
}
