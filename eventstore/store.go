package eventstore

import (
	"context"

	"github.com/google/uuid"
)

// Stream bundles the full event sequence of one aggregate with its current version.
type Stream struct {
	Events  StorableEvents
	Version uint
}

// Store is the persistence contract for append-only, per-aggregate event streams.
//
// Implementations must guarantee that for any aggregate the stored EventVersion values
// form a gapless strictly increasing sequence starting at 1, and that AppendEvents is
// atomic with respect to the expected-version check: two concurrent appends with the
// same expected version must never both succeed.
type Store interface {
	// AppendEvents atomically appends events to the aggregate's stream, assigning
	// consecutive versions starting at expectedVersion+1. It returns a ConcurrencyError
	// when the stored max version differs from expectedVersion. Appending an empty
	// slice is a no-op and succeeds without touching storage.
	AppendEvents(ctx context.Context, aggregateID uuid.UUID, expectedVersion uint, events StorableEvents) error

	// GetEvents returns all events of the aggregate with EventVersion > fromVersion,
	// in ascending version order. A missing aggregate yields an empty slice, not an error.
	GetEvents(ctx context.Context, aggregateID uuid.UUID, fromVersion uint) (StorableEvents, error)

	// GetAllEvents returns events across all aggregates with GlobalPosition > fromPosition,
	// ordered by global position. maxCount <= 0 means no limit.
	GetAllEvents(ctx context.Context, fromPosition uint64, maxCount int) (StorableEvents, error)

	// GetEventsByType behaves like GetAllEvents restricted to a single event type.
	GetEventsByType(ctx context.Context, eventType string, fromPosition uint64, maxCount int) (StorableEvents, error)

	// GetStream returns the aggregate's complete stream together with its current
	// version, or nil when the aggregate has no events.
	GetStream(ctx context.Context, aggregateID uuid.UUID) (*Stream, error)
}
