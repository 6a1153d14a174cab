package updateuser

import (
	"time"

	"github.com/google/uuid"

	"github.com/eventfold/aggregatestore-go/user/core"
)

const (
	commandType = "UpdateUser"
)

// Command represents the intent to update a user's profile. Nil fields are
// left untouched; a field carrying the current value is a no-op.
type Command struct {
	UserID     uuid.UUID
	Email      *string
	Name       *string
	UpdatedBy  *core.Actor
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type of this command for logging and routing purposes.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	userID uuid.UUID,
	email *string,
	name *string,
	updatedBy *core.Actor,
	occurredAt time.Time,
) Command {

	return Command{
		UserID:     userID,
		Email:      email,
		Name:       name,
		UpdatedBy:  updatedBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
