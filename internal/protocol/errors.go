package protocol

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every error returned by this package matches at least one of
// them with errors.Is. Only a response with both a wrong address and a bad
// checksum matches two.
var (
	// ErrInvalidParameter indicates a request argument outside the command's
	// accepted domain. The frame was never built.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrMalformedFrame indicates a response with the wrong length, start
	// marker, sensor address or command echo.
	ErrMalformedFrame = errors.New("malformed frame")
	// ErrChecksumMismatch indicates a structurally valid response whose
	// checksum does not match its contents.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// ParameterError describes a rejected request argument.
type ParameterError struct {
	Command Command
	Name    string
	Value   int
	Reason  string
}

// Error implements the error interface
func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s %s: %d %s", ErrInvalidParameter, e.Command, e.Name, e.Value, e.Reason)
}

// Unwrap returns ErrInvalidParameter
func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// FrameError describes a rejected response frame. Kind is ErrMalformedFrame or
// ErrChecksumMismatch.
type FrameError struct {
	Kind  error
	Field string
	Want  int
	Got   int
}

// Error implements the error interface
func (e *FrameError) Error() string {
	if e.Field == "length" {
		return fmt.Sprintf("%s: %s = %d, want %d", e.Kind, e.Field, e.Got, e.Want)
	}
	return fmt.Sprintf("%s: %s = 0x%02X, want 0x%02X", e.Kind, e.Field, e.Got, e.Want)
}

// Unwrap returns the error kind for errors.Is matching
func (e *FrameError) Unwrap() error {
	return e.Kind
}
