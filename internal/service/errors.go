package service

import (
	"errors"
	"fmt"
)

// ErrService marks every failure surfaced by Client, whether the service
// answered with an error or could not be reached at all.
var ErrService = errors.New("service request failed")

// Operation names one of the three remote round trips.
type Operation string

const (
	OpMetadata Operation = "metadata"
	OpDebug    Operation = "debug"
	OpArtifact Operation = "artifact"
)

// FallbackMessage is shown when the service gives no error text.
func (o Operation) FallbackMessage() string {
	switch o {
	case OpMetadata:
		return "Failed to get video info"
	case OpDebug:
		return "Failed to get debug info"
	default:
		return "Download failed"
	}
}

// Error is the normalised failure of a remote operation. Error() returns the
// user-facing message only; Status and Err are kept for logs.
type Error struct {
	Operation Operation
	Status    int    // HTTP status, 0 when no response was received
	Message   string // service-provided text or the operation fallback
	Err       error  // lower-level cause, if any
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrService}
	}
	return []error{ErrService, e.Err}
}

// Detail renders the diagnostic form for logging.
func (e *Error) Detail() string {
	msg := fmt.Sprintf("service: %s: %s", e.Operation, e.Message)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func newError(op Operation, status int, message string, cause error) *Error {
	if message == "" {
		message = op.FallbackMessage()
	}
	return &Error{Operation: op, Status: status, Message: message, Err: cause}
}
