package services

import (
	"errors"
	"fmt"
)

// Common service errors
var (
	ErrNotFound               = errors.New("record not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrInvalidState           = errors.New("invalid state transition")
	ErrNoCollections          = errors.New("no approvable collections in batch")
	ErrInvalidBatch           = errors.New("batch does not match approvable collections")
	ErrInsufficientCredit     = errors.New("insufficient credit available")
	ErrConcurrentModification = errors.New("record was modified concurrently, retry the operation")
)

// ValidationError carries a field-level message back to the handler layer.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
