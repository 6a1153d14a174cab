package eventsbytype_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventfold/aggregatestore-go/eventstore"
	"github.com/eventfold/aggregatestore-go/eventstore/memoryengine"
	"github.com/eventfold/aggregatestore-go/user/features/query/eventsbytype"
)

func givenPopulatedStore(t *testing.T) *memoryengine.EventStore {
	t.Helper()

	store := memoryengine.NewEventStore()
	ctx := context.Background()

	for _, eventType := range []string{"UserCreated", "UserUpdated", "UserCreated"} {
		aggregateID := uuid.New()
		event, err := eventstore.BuildStorableEventWithEmptyMetadata(
			aggregateID, eventType, time.Now(), []byte(`{}`))
		require.NoError(t, err)
		require.NoError(t, store.AppendEvents(ctx, aggregateID, 0, eventstore.StorableEvents{event}))
	}

	return store
}

func Test_Handle_ReturnsOnlyEventsOfTheRequestedType(t *testing.T) {
	// arrange
	handler := eventsbytype.NewQueryHandler(givenPopulatedStore(t))

	// act
	result, err := handler.Handle(context.Background(), eventsbytype.BuildQuery("UserCreated", 0, 0))

	// assert
	require.NoError(t, err)
	assert.Equal(t, "UserCreated", result.EventType)
	assert.Equal(t, 2, result.Count)
	for _, event := range result.Events {
		assert.Equal(t, "UserCreated", event.EventType)
	}
}

func Test_Handle_PaginatesByPosition(t *testing.T) {
	// arrange
	handler := eventsbytype.NewQueryHandler(givenPopulatedStore(t))
	ctx := context.Background()

	// act
	firstPage, err := handler.Handle(ctx, eventsbytype.BuildQuery("UserCreated", 0, 1))
	require.NoError(t, err)
	secondPage, err := handler.Handle(ctx,
		eventsbytype.BuildQuery("UserCreated", firstPage.Events[0].GlobalPosition, 1))
	require.NoError(t, err)

	// assert
	assert.Equal(t, 1, firstPage.Count)
	assert.Equal(t, 1, secondPage.Count)
	assert.Greater(t, secondPage.Events[0].GlobalPosition, firstPage.Events[0].GlobalPosition)
}

func Test_Handle_UnknownType_ReturnsEmptyResult(t *testing.T) {
	// arrange
	handler := eventsbytype.NewQueryHandler(givenPopulatedStore(t))

	// act
	result, err := handler.Handle(context.Background(), eventsbytype.BuildQuery("SomethingElse", 0, 0))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.Events)
}
