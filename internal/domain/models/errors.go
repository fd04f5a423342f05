package models

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrValidation marks input that was rejected before any write.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientStock is returned when a remove would drive quantity below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNotFound is returned when a referenced item, brand, stock record or log entry is absent.
	ErrNotFound = errors.New("requested record not found")

	// ErrStoreUnavailable wraps failures to reach the backing document store.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError carries per-field messages. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

// Is lets errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
