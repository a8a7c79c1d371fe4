package services

import (
	"errors"
	"fmt"

	"fyp-management-api/store"
)

// Service-level error taxonomy. Controllers map these onto HTTP statuses; the
// boundary between ErrNotFound and "exists but outside your scope" is
// deliberately invisible to callers.
var (
	ErrUnauthorized      = errors.New("authentication required")
	ErrForbidden         = errors.New("insufficient permissions")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError reports a malformed or inconsistent payload.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// fromStore lifts storage sentinels into the service taxonomy.
func fromStore(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrConflict):
		return ErrConflict
	}
	return err
}
