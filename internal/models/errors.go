package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the store adapters, the board engine and the
// HTTP layer.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrStorageFailure     = errors.New("storage failure")
	ErrTransitionInFlight = errors.New("stage transition already in flight")
	ErrConflict           = errors.New("conflict")
	ErrUnavailable        = errors.New("feature not configured")
)

// FieldError describes a validation problem with a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the field-level problems of a rejected payload.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// NewValidationErrors returns nil when errs is empty so callers can return it
// directly.
func NewValidationErrors(errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}

// StorageError wraps a backing-store error so that errors.Is matches both
// ErrStorageFailure and the original cause.
func StorageError(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStorageFailure, err)
}

// IsRetryable reports whether the user may re-issue the gesture that produced err.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageFailure) || errors.Is(err, ErrTransitionInFlight)
}
