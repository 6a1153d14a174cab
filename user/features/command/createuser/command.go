package createuser

import (
	"time"

	"github.com/eventfold/aggregatestore-go/user/core"
)

const (
	commandType = "CreateUser"
)

// Command represents the intent to create a new user.
// It encapsulates all the necessary information required to execute the create user use case.
type Command struct {
	Email      string
	Name       string
	CreatedBy  *core.Actor
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type of this command for logging and routing purposes.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	email string,
	name string,
	createdBy *core.Actor,
	occurredAt time.Time,
) Command {

	return Command{
		Email:      email,
		Name:       name,
		CreatedBy:  createdBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
