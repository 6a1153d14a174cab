// Package aggregate provides the event-sourced aggregate base type and the error
// taxonomy shared by all aggregates: every aggregate derives its state exclusively
// from its own ordered event history, tracks a version equal to the number of
// events ever applied, and buffers newly raised events until a repository
// persists them.
package aggregate

import (
	"time"

	"github.com/google/uuid"
)

// Event is the behavior every domain event must expose to be recorded on an aggregate.
type Event interface {
	EventType() string
	HasOccurredAt() time.Time
}

// Base carries the identity, version and uncommitted-event buffer of an aggregate.
// Concrete aggregates embed it and route all state changes through Record (new
// events) or ApplyCommitted (replay).
type Base struct {
	id          uuid.UUID
	version     uint
	uncommitted []Event
}

// NewBase creates a Base with the given identity at version 0.
func NewBase(id uuid.UUID) Base {
	return Base{id: id}
}

// RestoreBase creates a Base for an aggregate restored from a snapshot row,
// at the persisted version and with an empty uncommitted buffer.
func RestoreBase(id uuid.UUID, version uint) Base {
	return Base{id: id, version: version}
}

// AggregateID returns the aggregate's stable identity.
func (b *Base) AggregateID() uuid.UUID {
	return b.id
}

// Version returns the number of events ever applied to this aggregate.
// It equals the expected version for the next optimistic-concurrency check
// after the uncommitted events are subtracted.
func (b *Base) Version() uint {
	return b.version
}

// Record raises a new event: it increments the version and appends the event to
// the uncommitted buffer. The caller must have applied the state transition first.
func (b *Base) Record(event Event) {
	b.version++
	b.uncommitted = append(b.uncommitted, event)
}

// ApplyCommitted advances the version for an event replayed from storage.
// Replay never touches the uncommitted buffer.
func (b *Base) ApplyCommitted() {
	b.version++
}

// UncommittedEvents returns the events raised since construction or the last commit.
// The returned slice must not be mutated by callers.
func (b *Base) UncommittedEvents() []Event {
	return b.uncommitted
}

// MarkEventsCommitted clears the uncommitted buffer. Only a repository should
// call this, after the events were successfully persisted.
func (b *Base) MarkEventsCommitted() {
	b.uncommitted = nil
}
