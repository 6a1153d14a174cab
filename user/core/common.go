package core

import (
	"time"

	"github.com/google/uuid"
)

// Instead of implementing full value objects, I'm using some alias types and helper methods here ...

// UserIDString represents a user identifier.
type UserIDString = string

// EmailString represents a user email address.
type EmailString = string

// OccurredAtTS represents when an event occurred.
type OccurredAtTS = time.Time

// ToOccurredAt converts a time to OccurredAtTS with UTC normalization and microsecond precision.
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}

// Actor identifies who initiated a state change. A nil *Actor means the change
// was system-initiated.
type Actor struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// BuildActor creates an Actor reference.
func BuildActor(id uuid.UUID, name string, email string) *Actor {
	return &Actor{ID: id, Name: name, Email: email}
}
