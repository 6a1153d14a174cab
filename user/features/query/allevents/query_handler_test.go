package allevents_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventfold/aggregatestore-go/eventstore"
	"github.com/eventfold/aggregatestore-go/eventstore/memoryengine"
	"github.com/eventfold/aggregatestore-go/user/features/query/allevents"
)

func givenPopulatedStore(t *testing.T) *memoryengine.EventStore {
	t.Helper()

	store := memoryengine.NewEventStore()
	ctx := context.Background()

	for _, eventType := range []string{"UserCreated", "UserUpdated", "UserDeleted"} {
		aggregateID := uuid.New()
		event, err := eventstore.BuildStorableEventWithEmptyMetadata(
			aggregateID, eventType, time.Now(), []byte(`{}`))
		require.NoError(t, err)
		require.NoError(t, store.AppendEvents(ctx, aggregateID, 0, eventstore.StorableEvents{event}))
	}

	return store
}

func Test_Handle_ReturnsGlobalFeedInPositionOrder(t *testing.T) {
	// arrange
	handler := allevents.NewQueryHandler(givenPopulatedStore(t))

	// act
	feed, err := handler.Handle(context.Background(), allevents.BuildQuery(0, 0))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, feed.Count)
	require.Len(t, feed.Events, 3)
	assert.Equal(t, uint64(1), feed.Events[0].GlobalPosition)
	assert.Equal(t, "UserCreated", feed.Events[0].EventType)
	assert.Equal(t, uint64(3), feed.Events[2].GlobalPosition)
}

func Test_Handle_PaginatesByPosition(t *testing.T) {
	// arrange
	handler := allevents.NewQueryHandler(givenPopulatedStore(t))
	ctx := context.Background()

	// act
	firstPage, err := handler.Handle(ctx, allevents.BuildQuery(0, 2))
	require.NoError(t, err)
	lastSeen := firstPage.Events[len(firstPage.Events)-1].GlobalPosition
	secondPage, err := handler.Handle(ctx, allevents.BuildQuery(lastSeen, 2))
	require.NoError(t, err)

	// assert
	assert.Equal(t, 2, firstPage.Count)
	assert.Equal(t, 1, secondPage.Count)
	assert.Equal(t, uint64(3), secondPage.Events[0].GlobalPosition)
}

func Test_Handle_EmptyStore_ReturnsEmptyFeed(t *testing.T) {
	// arrange
	handler := allevents.NewQueryHandler(memoryengine.NewEventStore())

	// act
	feed, err := handler.Handle(context.Background(), allevents.BuildQuery(0, 0))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 0, feed.Count)
	assert.Empty(t, feed.Events)
}
