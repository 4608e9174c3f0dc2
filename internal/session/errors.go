package session

import (
	"errors"
)

// ErrValidation marks intents rejected locally, before any network call.
var ErrValidation = errors.New("validation failed")

// Rejection reasons, also used as metric labels.
const (
	ReasonEmptyURL       = "empty_url"
	ReasonInvalidURL     = "invalid_url"
	ReasonNoMetadata     = "no_metadata"
	ReasonUnknownQuality = "unknown_quality"
	ReasonUnknownFormat  = "unknown_format"
)

// ValidationError carries the user-facing message of a rejected intent.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(reason, message string) *ValidationError {
	return &ValidationError{Reason: reason, Message: message}
}
