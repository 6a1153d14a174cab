package core

import (
	"time"

	"github.com/google/uuid"
)

// UserDeletedEventType is the event type identifier.
const UserDeletedEventType = "UserDeleted"

// UserDeleted represents when a user account was soft-deleted.
// The aggregate is never removed from storage; this event marks it deleted.
type UserDeleted struct {
	UserID     UserIDString `json:"userId"`
	DeletedBy  *Actor       `json:"deletedBy,omitempty"`
	OccurredAt OccurredAtTS `json:"occurredAt"`
}

// BuildUserDeleted creates a new UserDeleted event.
func BuildUserDeleted(
	userID uuid.UUID,
	deletedBy *Actor,
	occurredAt time.Time,
) UserDeleted {

	event := UserDeleted{
		UserID:     userID.String(),
		DeletedBy:  deletedBy,
		OccurredAt: ToOccurredAt(occurredAt),
	}

	return event
}

// EventType returns the event type identifier.
func (e UserDeleted) EventType() string {
	return UserDeletedEventType
}

// HasOccurredAt returns when this event occurred.
func (e UserDeleted) HasOccurredAt() time.Time {
	return e.OccurredAt
}
