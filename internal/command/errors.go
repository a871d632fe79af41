package command

import (
	"fmt"
)

// Error is a domain failure: the handler deliberately rejected the request
// and Message is meant for the caller as is.
type Error struct {
	Message string
	Cause   error
}

// Errorf builds a domain failure with a formatted, user-facing message.
func Errorf(format string, a ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, a...)}
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Cause }

// InternalError wraps anything a handler failed with that was not a domain
// failure. Cause is kept for diagnostics and must not be shown to callers.
type InternalError struct {
	Command string
	Cause   error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("command %q: internal error: %v", e.Command, e.Cause)
}

func (e *InternalError) Unwrap() error { return e.Cause }

// ShapeError reports a handler whose signature is not one of the accepted
// shapes.
type ShapeError struct {
	Command string
	Reason  string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("command %q: invalid handler: %s", e.Command, e.Reason)
}

// PanicError carries a value recovered from a panicking handler.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("handler panicked: %v", e.Value) }
