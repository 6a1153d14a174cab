package deleteuser

import (
	"time"

	"github.com/google/uuid"

	"github.com/eventfold/aggregatestore-go/user/core"
)

const (
	commandType = "DeleteUser"
)

// Command represents the intent to soft-delete a user.
type Command struct {
	UserID     uuid.UUID
	DeletedBy  *core.Actor
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type of this command for logging and routing purposes.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	userID uuid.UUID,
	deletedBy *core.Actor,
	occurredAt time.Time,
) Command {

	return Command{
		UserID:     userID,
		DeletedBy:  deletedBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
