package eventsbytype

import (
	"context"

	"github.com/eventfold/aggregatestore-go/eventstore"
)

// EventStore defines the interface needed by the QueryHandler for event store operations.
type EventStore interface {
	GetEventsByType(
		ctx context.Context,
		eventType string,
		fromPosition uint64,
		maxCount int,
	) (eventstore.StorableEvents, error)
}

// QueryHandler answers type-filtered event feed queries.
type QueryHandler struct {
	eventStore EventStore
}

// NewQueryHandler creates a new QueryHandler with the provided EventStore dependency.
func NewQueryHandler(eventStore EventStore) QueryHandler {
	return QueryHandler{eventStore: eventStore}
}

// Handle returns events of the given type across all aggregates with
// positions greater than FromPosition, in ascending position order.
func (h QueryHandler) Handle(ctx context.Context, query Query) (EventsOfType, error) {
	storableEvents, err := h.eventStore.GetEventsByType(ctx, query.EventType, query.FromPosition, query.MaxCount)
	if err != nil {
		return EventsOfType{}, err
	}

	return EventsOfTypeFrom(query.EventType, storableEvents), nil
}
