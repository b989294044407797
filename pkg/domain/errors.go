package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidScore          = errors.New("score must be an integer between 1 and 5")
	ErrStoreUnavailable      = errors.New("counter store unavailable")
	ErrTextTooShort          = errors.New("document text is too short")
	ErrMissingQuestion       = errors.New("missing question or document context")
	ErrProviderNotConfigured = errors.New("AI provider is not configured")
	ErrEmptyModelResponse    = errors.New("empty response from AI provider")
	ErrProviderFailure       = errors.New("AI provider request failed")
)

type invalidOutputError struct {
	Reason string
}

func (e *invalidOutputError) Error() string {
	return fmt.Sprintf("invalid AI response: %s", e.Reason)
}

func NewInvalidOutputError(reason string) error {
	return &invalidOutputError{Reason: reason}
}

// IsInvalidOutput reports whether err carries a model output validation failure.
func IsInvalidOutput(err error) bool {
	var target *invalidOutputError
	return errors.As(err, &target)
}
