package useratversion_test

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
	"github.com/eventfold/aggregatestore-go/user/core"
	"github.com/eventfold/aggregatestore-go/user/features/query/useratversion"
	"github.com/eventfold/aggregatestore-go/user/shell"
)

func givenLifecycle(t *testing.T) (*shell.UserRepository, uuid.UUID) {
	t.Helper()

	repo := shell.NewUserRepository(memoryengine.NewEventStore(), shell.NewMemorySnapshotStore())
	ctx := context.Background()

	user, err := core.CreateUser("ann@example.com", "Ann", nil, time.Now())
	require.NoError(t, err)
	require.NoError(t, user.UpdateName("Anna", nil, time.Now()))
	require.NoError(t, user.Delete(nil, time.Now()))
	require.NoError(t, repo.Save(ctx, user))

	return repo, user.AggregateID()
}

func Test_Handle_ReconstructsStateAtEachVersion(t *testing.T) {
	// arrange - created as Ann, renamed to Anna, then deleted
	repo, userID := givenLifecycle(t)
	handler := useratversion.NewQueryHandler(repo)
	ctx := context.Background()

	// act
	atOne, err := handler.Handle(ctx, useratversion.BuildQuery(userID, 1))
	require.NoError(t, err)
	atTwo, err := handler.Handle(ctx, useratversion.BuildQuery(userID, 2))
	require.NoError(t, err)
	atThree, err := handler.Handle(ctx, useratversion.BuildQuery(userID, 3))
	require.NoError(t, err)

	// assert
	assert.Equal(t, "Ann", atOne.Name)
	assert.Nil(t, atOne.DeletedAt)
	assert.Equal(t, uint(1), atOne.Version)

	assert.Equal(t, "Anna", atTwo.Name)
	assert.Nil(t, atTwo.DeletedAt)

	assert.Equal(t, "Anna", atThree.Name)
	assert.NotNil(t, atThree.DeletedAt)
	assert.Equal(t, uint(3), atThree.Version)
}

func Test_Handle_VersionPastTheEnd_ReturnsLatestState(t *testing.T) {
	// arrange
	repo, userID := givenLifecycle(t)
	handler := useratversion.NewQueryHandler(repo)

	// act
	view, err := handler.Handle(context.Background(), useratversion.BuildQuery(userID, 99))

	// assert
	require.NoError(t, err)
	assert.Equal(t, uint(3), view.Version)
}

func Test_Handle_VersionBeforeFirstEvent_YieldsNotFound(t *testing.T) {
	// arrange
	repo, userID := givenLifecycle(t)
	handler := useratversion.NewQueryHandler(repo)

	// act
	_, err := handler.Handle(context.Background(), useratversion.BuildQuery(userID, 0))

	// assert
	assert.True(t, errors.Is(err, aggregate.ErrNotFound))
}

func Test_Handle_UnknownUser_YieldsNotFound(t *testing.T) {
	// arrange
	repo := shell.NewUserRepository(memoryengine.NewEventStore(), shell.NewMemorySnapshotStore())
	handler := useratversion.NewQueryHandler(repo)

	// act
	_, err := handler.Handle(context.Background(), useratversion.BuildQuery(uuid.New(), 1))

	// assert
	assert.True(t, errors.Is(err, aggregate.ErrNotFound))
}
