package allevents

import (
	"context"

	"github.com/eventfold/aggregatestore-go/eventstore"
)

// EventStore defines the interface needed by the QueryHandler for event store operations.
type EventStore interface {
	GetAllEvents(ctx context.Context, fromPosition uint64, maxCount int) (eventstore.StorableEvents, error)
}

// QueryHandler answers global event feed queries, typically for projections
// and catch-up subscriptions.
type QueryHandler struct {
	eventStore EventStore
}

// NewQueryHandler creates a new QueryHandler with the provided EventStore dependency.
func NewQueryHandler(eventStore EventStore) QueryHandler {
	return QueryHandler{eventStore: eventStore}
}

// Handle returns events across all aggregates with positions greater than
// FromPosition, in ascending position order.
func (h QueryHandler) Handle(ctx context.Context, query Query) (EventFeed, error) {
	storableEvents, err := h.eventStore.GetAllEvents(ctx, query.FromPosition, query.MaxCount)
	if err != nil {
		return EventFeed{}, err
	}

	return EventFeedFrom(storableEvents), nil
}
