package aggregate

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrValidation is the sentinel for malformed input to a mutation or creation call.
var ErrValidation = errors.New("validation failed")

// ErrConflict is the sentinel for natural-key collisions detected before a write.
var ErrConflict = errors.New("conflict on natural key")

// ErrNotFound is the sentinel for operations targeting a nonexistent or soft-deleted aggregate.
var ErrNotFound = errors.New("aggregate not found")

// ErrUnknownEventType is the sentinel for replay encountering an event type without a handler.
var ErrUnknownEventType = errors.New("unknown event type during replay")

// ErrEmptyStream is returned when replaying an empty event sequence; an aggregate
// cannot exist with zero events.
var ErrEmptyStream = errors.New("cannot replay an empty event stream")

// ValidationError reports which field of a mutation or creation call was malformed.
// Always recoverable by the caller correcting input, never retried automatically.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %q: %s", e.Field, e.Reason)
}

// Is makes ValidationError match the ErrValidation sentinel.
func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// BuildValidationError creates a ValidationError for a field with a reason.
func BuildValidationError(field string, reason string) ValidationError {
	return ValidationError{Field: field, Reason: reason}
}

// ConflictError reports a natural-key collision, e.g. an email already owned by a
// different aggregate.
type ConflictError struct {
	Key   string
	Value string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s %q is already in use", e.Key, e.Value)
}

// Is makes ConflictError match the ErrConflict sentinel.
func (e ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NotFoundError reports that the targeted aggregate does not exist or is soft-deleted.
type NotFoundError struct {
	AggregateID uuid.UUID
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("aggregate %s not found", e.AggregateID)
}

// Is makes NotFoundError match the ErrNotFound sentinel.
func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// UnknownEventTypeError indicates data corruption or a missing handler for a newer
// event type; replay must surface it and never silently skip the event.
type UnknownEventTypeError struct {
	EventType string
}

func (e UnknownEventTypeError) Error() string {
	return fmt.Sprintf("no handler for event type %q", e.EventType)
}

// Is makes UnknownEventTypeError match the ErrUnknownEventType sentinel.
func (e UnknownEventTypeError) Is(target error) bool {
	return target == ErrUnknownEventType
}
