// Package apperror defines the error taxonomy shared by the stores, the
// reservation engine and the HTTP adaptor.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrConflict          = errors.New("date range conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrForbidden         = errors.New("forbidden")
	ErrStaleBooking      = errors.New("booking was modified concurrently")
	ErrLockTimeout       = errors.New("timed out waiting for lock")
)

// ValidationError reports malformed input. Fields maps a request field to a
// human-readable message.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s (%s)", ErrValidation, e.Message, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a ValidationError. fields may be nil.
func NewValidationError(message string, fields map[string]string) error {
	return &ValidationError{Message: message, Fields: fields}
}

// InvalidField is shorthand for a single-field validation failure.
func InvalidField(field, message string) error {
	return &ValidationError{Message: "invalid " + field, Fields: map[string]string{field: message}}
}

// ConflictError is returned when a requested stay overlaps an existing
// active booking on the same room. BookingID is uuid.Nil when the storage
// layer rejected the write and the competing booking could not be resolved.
type ConflictError struct {
	RoomID    uuid.UUID
	BookingID uuid.UUID
}

func (e *ConflictError) Error() string {
	if e.BookingID == uuid.Nil {
		return fmt.Sprintf("room %s: %s", e.RoomID, ErrConflict)
	}
	return fmt.Sprintf("room %s: %s with booking %s", e.RoomID, ErrConflict, e.BookingID)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// InvalidTransition reports an illegal status or payment change.
func InvalidTransition(subject, from, to string) error {
	return fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, subject, from, to)
}
