package core

import (
	"time"

	"github.com/google/uuid"
)

// UserCreatedEventType is the event type identifier.
const UserCreatedEventType = "UserCreated"

// UserCreated represents when a new user account was created.
type UserCreated struct {
	UserID     UserIDString `json:"userId"`
	Email      EmailString  `json:"email"`
	Name       string       `json:"name"`
	CreatedBy  *Actor       `json:"createdBy,omitempty"`
	OccurredAt OccurredAtTS `json:"occurredAt"`
}

// BuildUserCreated creates a new UserCreated event.
func BuildUserCreated(
	userID uuid.UUID,
	email string,
	name string,
	createdBy *Actor,
	occurredAt time.Time,
) UserCreated {

	event := UserCreated{
		UserID:     userID.String(),
		Email:      email,
		Name:       name,
		CreatedBy:  createdBy,
		OccurredAt: ToOccurredAt(occurredAt),
	}

	return event
}

// EventType returns the event type identifier.
func (e UserCreated) EventType() string {
	return UserCreatedEventType
}

// HasOccurredAt returns when this event occurred.
func (e UserCreated) HasOccurredAt() time.Time {
	return e.OccurredAt
}
