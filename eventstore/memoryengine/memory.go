// Package memoryengine provides a mutex-guarded in-memory implementation of the
// eventstore.Store contract, intended for tests and local development. It enforces
// the same optimistic concurrency and ordering guarantees as the Postgres engine.
package memoryengine

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/eventfold/aggregatestore-go/eventstore"
)

// EventStore is an in-memory eventstore.Store. The zero value is not usable,
// construct it with NewEventStore.
type EventStore struct {
	mu       sync.Mutex
	all      eventstore.StorableEvents
	position uint64
}

// NewEventStore creates an empty in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{}
}

// AppendEvents implements eventstore.Store.
func (es *EventStore) AppendEvents(
	_ context.Context,
	aggregateID uuid.UUID,
	expectedVersion uint,
	events eventstore.StorableEvents,
) error {

	if len(events) == 0 {
		return nil
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	actualVersion := es.maxVersionLocked(aggregateID)
	if actualVersion != expectedVersion {
		return eventstore.ConcurrencyError{
			AggregateID: aggregateID,
			Expected:    expectedVersion,
			Actual:      actualVersion,
		}
	}

	for i, event := range events {
		es.position++
		event.AggregateID = aggregateID
		event.EventVersion = expectedVersion + uint(i) + 1
		event.GlobalPosition = es.position
		es.all = append(es.all, event)
	}

	return nil
}

// GetEvents implements eventstore.Store.
func (es *EventStore) GetEvents(
	_ context.Context,
	aggregateID uuid.UUID,
	fromVersion uint,
) (eventstore.StorableEvents, error) {

	es.mu.Lock()
	defer es.mu.Unlock()

	events := make(eventstore.StorableEvents, 0)
	for _, event := range es.all {
		if event.AggregateID == aggregateID && event.EventVersion > fromVersion {
			events = append(events, event)
		}
	}

	return events, nil
}

// GetAllEvents implements eventstore.Store.
func (es *EventStore) GetAllEvents(
	_ context.Context,
	fromPosition uint64,
	maxCount int,
) (eventstore.StorableEvents, error) {

	es.mu.Lock()
	defer es.mu.Unlock()

	events := make(eventstore.StorableEvents, 0)
	for _, event := range es.all {
		if event.GlobalPosition > fromPosition {
			events = append(events, event)
			if maxCount > 0 && len(events) == maxCount {
				break
			}
		}
	}

	return events, nil
}

// GetEventsByType implements eventstore.Store.
func (es *EventStore) GetEventsByType(
	_ context.Context,
	eventType string,
	fromPosition uint64,
	maxCount int,
) (eventstore.StorableEvents, error) {

	es.mu.Lock()
	defer es.mu.Unlock()

	events := make(eventstore.StorableEvents, 0)
	for _, event := range es.all {
		if event.EventType == eventType && event.GlobalPosition > fromPosition {
			events = append(events, event)
			if maxCount > 0 && len(events) == maxCount {
				break
			}
		}
	}

	return events, nil
}

// GetStream implements eventstore.Store.
func (es *EventStore) GetStream(ctx context.Context, aggregateID uuid.UUID) (*eventstore.Stream, error) {
	events, err := es.GetEvents(ctx, aggregateID, 0)
	if err != nil {
		return nil, err
	}

	if len(events) == 0 {
		return nil, nil
	}

	return &eventstore.Stream{
		Events:  events,
		Version: events[len(events)-1].EventVersion,
	}, nil
}

// Checkpoint captures the current state and returns a function restoring it.
// It lets the memory unit of work roll the store back when a transactional
// scope fails.
func (es *EventStore) Checkpoint() func() {
	es.mu.Lock()
	defer es.mu.Unlock()

	saved := make(eventstore.StorableEvents, len(es.all))
	copy(saved, es.all)
	savedPosition := es.position

	return func() {
		es.mu.Lock()
		defer es.mu.Unlock()

		es.all = saved
		es.position = savedPosition
	}
}

func (es *EventStore) maxVersionLocked(aggregateID uuid.UUID) uint {
	var maxVersion uint
	for _, event := range es.all {
		if event.AggregateID == aggregateID && event.EventVersion > maxVersion {
			maxVersion = event.EventVersion
		}
	}

	return maxVersion
}
