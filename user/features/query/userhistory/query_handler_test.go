package userhistory_test

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
	"github.com/eventfold/aggregatestore-go/user/features/query/userhistory"
	"github.com/eventfold/aggregatestore-go/user/shell"
)

func Test_Handle_ReturnsFullAuditTrailIncludingDeletion(t *testing.T) {
	// arrange
	repo := shell.NewUserRepository(memoryengine.NewEventStore(), shell.NewMemorySnapshotStore())
	ctx := context.Background()

	user, err := core.CreateUser("ann@example.com", "Ann", nil, time.Now())
	require.NoError(t, err)
	require.NoError(t, user.UpdateName("Anna", nil, time.Now()))
	require.NoError(t, user.Delete(nil, time.Now()))
	require.NoError(t, repo.Save(ctx, user))

	handler := userhistory.NewQueryHandler(repo)

	// act
	history, err := handler.Handle(ctx, userhistory.BuildQuery(user.AggregateID()))

	// assert
	require.NoError(t, err)
	assert.Equal(t, user.AggregateID(), history.UserID)
	require.Len(t, history.Entries, 3)
	assert.Equal(t, core.UserCreatedEventType, history.Entries[0].EventType)
	assert.Equal(t, core.UserUpdatedEventType, history.Entries[1].EventType)
	assert.Equal(t, core.UserDeletedEventType, history.Entries[2].EventType)
	assert.Equal(t, uint(1), history.Entries[0].Version)
	assert.Contains(t, string(history.Entries[1].EventData), "previousValues")
	assert.NotEmpty(t, history.Entries[0].Metadata)
}

func Test_Handle_UnknownUser_YieldsNotFound(t *testing.T) {
	// arrange
	repo := shell.NewUserRepository(memoryengine.NewEventStore(), shell.NewMemorySnapshotStore())
	handler := userhistory.NewQueryHandler(repo)

	// act
	_, err := handler.Handle(context.Background(), userhistory.BuildQuery(uuid.New()))

	// assert
	assert.True(t, errors.Is(err, aggregate.ErrNotFound))
}
