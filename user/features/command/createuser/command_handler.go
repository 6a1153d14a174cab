package createuser

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eventfold/aggregatestore-go/outbox"
	"github.com/eventfold/aggregatestore-go/user/core"
	"github.com/eventfold/aggregatestore-go/user/shell"
)

const channelUserCreated = "user.created"

// Repository defines the persistence interface needed by the CommandHandler.
type Repository interface {
	SaveWithMetadata(ctx context.Context, user *core.User, metadata shell.EventMetadata) error
}

// OutboxStore defines the outbox interface needed by the CommandHandler.
type OutboxStore interface {
	Save(ctx context.Context, entry outbox.Entry) error
}

// Result carries the identity and version of the user after the command.
type Result struct {
	ID      uuid.UUID
	Version uint
}

// CommandHandler orchestrates the create user workflow: Decide -> Save -> Outbox.
// Saving the events and enqueueing the outbox entry happen inside one unit of
// work, so a published notification always corresponds to a stored event.
type CommandHandler struct {
	unitOfWork   shell.UnitOfWork
	users        Repository
	outbox       OutboxStore
	retryOptions []shell.RetryOption
}

// Option defines a functional option for configuring CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions configures retry behavior for concurrency conflicts.
func WithRetryOptions(options ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = options
	}
}

// NewCommandHandler creates a new CommandHandler with the provided dependencies.
func NewCommandHandler(
	unitOfWork shell.UnitOfWork,
	users Repository,
	outboxStore OutboxStore,
	options ...Option,
) CommandHandler {

	handler := CommandHandler{
		unitOfWork: unitOfWork,
		users:      users,
		outbox:     outboxStore,
	}

	for _, option := range options {
		option(&handler)
	}

	return handler
}

// Handle executes the create user use case and returns the new user's
// identity and version.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	var result Result

	err := shell.RetryWithBackoff(ctx, func(retryCtx context.Context) error {
		executed, execErr := h.executeCommand(retryCtx, command)
		result = executed

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return Result{}, err
	}

	return result, nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (Result, error) {
	user, err := core.CreateUser(command.Email, command.Name, command.CreatedBy, time.Time(command.OccurredAt))
	if err != nil {
		return Result{}, err
	}

	uid := uuid.New()
	metadata := shell.BuildEventMetadataFromContext(ctx, uid, uid, uid)

	entries, err := shell.OutboxEntriesFrom(user.UncommittedEvents(), channelUserCreated, metadata)
	if err != nil {
		return Result{}, err
	}

	err = h.unitOfWork.Execute(ctx, func(txCtx context.Context) error {
		if saveErr := h.users.SaveWithMetadata(txCtx, user, metadata); saveErr != nil {
			return saveErr
		}

		for _, entry := range entries {
			if outboxErr := h.outbox.Save(txCtx, entry); outboxErr != nil {
				return outboxErr
			}
		}

		return nil
	})

	if err != nil {
		return Result{}, err
	}

	return Result{ID: user.AggregateID(), Version: user.Version()}, nil
}
