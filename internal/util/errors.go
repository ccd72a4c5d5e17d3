// internal/util/errors.go
package util

import "github.com/pkg/errors"

// Common application-specific errors.
var (
	ErrValidation         = errors.New("validation failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalidFormat      = errors.New("invalid import format")
	ErrCorrupted          = errors.New("persisted ledger is corrupted")
	ErrNoSession          = errors.New("no active session")
)

// ValidationError carries a user-facing message for rejected input.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// IsError reports whether err matches target anywhere in its chain.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}

// UserMessage extracts the message meant for end users from err.
// Validation errors expose their own message; import format errors are
// reported with their full description; everything else is generic.
func UserMessage(err error) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, ErrInvalidFormat):
		return err.Error()
	case errors.Is(err, ErrNoSession):
		return "Please sign in first."
	default:
		return "Internal error"
	}
}
