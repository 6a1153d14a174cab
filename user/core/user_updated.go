package core

import (
	"time"

	"github.com/google/uuid"
)

// UserUpdatedEventType is the event type identifier.
const UserUpdatedEventType = "UserUpdated"

// UserAttributes holds the mutable fields of a user; nil pointers mean "unchanged".
// It is used on UserUpdated for both the applied values and the previous values,
// which keeps the audit trail able to answer "what did it change from".
type UserAttributes struct {
	Email *EmailString `json:"email,omitempty"`
	Name  *string      `json:"name,omitempty"`
}

// UserUpdated represents when one or more fields of a user account were changed.
type UserUpdated struct {
	UserID         UserIDString   `json:"userId"`
	NewValues      UserAttributes `json:"newValues"`
	PreviousValues UserAttributes `json:"previousValues"`
	UpdatedBy      *Actor         `json:"updatedBy,omitempty"`
	OccurredAt     OccurredAtTS   `json:"occurredAt"`
}

// BuildUserUpdated creates a new UserUpdated event.
func BuildUserUpdated(
	userID uuid.UUID,
	newValues UserAttributes,
	previousValues UserAttributes,
	updatedBy *Actor,
	occurredAt time.Time,
) UserUpdated {

	event := UserUpdated{
		UserID:         userID.String(),
		NewValues:      newValues,
		PreviousValues: previousValues,
		UpdatedBy:      updatedBy,
		OccurredAt:     ToOccurredAt(occurredAt),
	}

	return event
}

// EventType returns the event type identifier.
func (e UserUpdated) EventType() string {
	return UserUpdatedEventType
}

// HasOccurredAt returns when this event occurred.
func (e UserUpdated) HasOccurredAt() time.Time {
	return e.OccurredAt
}
