package deleteuser_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventfold/aggregatestore-go/aggregate"
	"github.com/eventfold/aggregatestore-go/eventstore/memoryengine"
	"github.com/eventfold/aggregatestore-go/outbox"
	"github.com/eventfold/aggregatestore-go/user/core"
	"github.com/eventfold/aggregatestore-go/user/features/command/deleteuser"
	"github.com/eventfold/aggregatestore-go/user/shell"
)

type fixture struct {
	outbox  *outbox.MemoryStore
	repo    *shell.UserRepository
	handler deleteuser.CommandHandler
}

func newFixture() *fixture {
	events := memoryengine.NewEventStore()
	snapshots := shell.NewMemorySnapshotStore()
	outboxStore := outbox.NewMemoryStore()
	repo := shell.NewUserRepository(events, snapshots)
	unitOfWork := shell.NewMemoryUnitOfWork(events, snapshots, outboxStore)

	return &fixture{
		outbox:  outboxStore,
		repo:    repo,
		handler: deleteuser.NewCommandHandler(unitOfWork, repo, outboxStore),
	}
}

func (f *fixture) givenSavedUser(t *testing.T) *core.User {
	t.Helper()

	user, err := core.CreateUser("ann@example.com", "Ann", nil, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.repo.Save(context.Background(), user))

	return user
}

func Test_Handle_SoftDeletesUserAndEnqueuesOutboxEntry(t *testing.T) {
	// arrange
	f := newFixture()
	ctx := context.Background()
	user := f.givenSavedUser(t)
	actor := core.BuildActor(uuid.New(), "Admin", "admin@example.com")

	// act
	result, err := f.handler.Handle(ctx,
		deleteuser.BuildCommand(user.AggregateID(), actor, time.Now()))

	// assert
	require.NoError(t, err)
	assert.Equal(t, uint(2), result.Version)

	_, findErr := f.repo.FindByID(ctx, user.AggregateID())
	assert.True(t, errors.Is(findErr, aggregate.ErrNotFound))

	pending, err := f.outbox.FindUnprocessed(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "user.deleted", pending[0].EventType)
}

func Test_Handle_DeletingTwice_IsIdempotent(t *testing.T) {
	// arrange
	f := newFixture()
	ctx := context.Background()
	user := f.givenSavedUser(t)

	_, err := f.handler.Handle(ctx, deleteuser.BuildCommand(user.AggregateID(), nil, time.Now()))
	require.NoError(t, err)

	// act
	result, err := f.handler.Handle(ctx, deleteuser.BuildCommand(user.AggregateID(), nil, time.Now()))

	// assert - same version, no second outbox entry
	require.NoError(t, err)
	assert.Equal(t, uint(2), result.Version)

	pending, err := f.outbox.FindUnprocessed(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func Test_Handle_UnknownUser_YieldsNotFound(t *testing.T) {
	// arrange
	f := newFixture()

	// act
	_, err := f.handler.Handle(context.Background(),
		deleteuser.BuildCommand(uuid.New(), nil, time.Now()))

	// assert
	assert.True(t, errors.Is(err, aggregate.ErrNotFound))
}

func Test_Handle_HistoryStaysReadableAfterDeletion(t *testing.T) {
	// arrange
	f := newFixture()
	ctx := context.Background()
	user := f.givenSavedUser(t)

	// act
	_, err := f.handler.Handle(ctx, deleteuser.BuildCommand(user.AggregateID(), nil, time.Now()))
	require.NoError(t, err)

	// assert
	history, err := f.repo.GetHistory(ctx, user.AggregateID())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, core.UserDeletedEventType, history[1].EventType)
}
