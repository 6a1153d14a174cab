// Package outbox implements the transactional outbox pattern: a delivery
// obligation is recorded in the same database transaction as the state change it
// describes, and a poller later hands the entries to an external consumer with
// at-least-once semantics.
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded delivery obligation. EventType is the delivery-channel
// discriminator (e.g. "user.created") and may differ from the domain event type;
// Payload is the denormalized delivery payload.
//
// Every entry starts unprocessed and transitions exactly once to processed with
// ProcessedAt set; it never reverts.
type Entry struct {
	ID          uuid.UUID
	EventType   string
	Payload     []byte
	Metadata    []byte
	Processed   bool
	ProcessedAt *time.Time
	CreatedAt   time.Time
}

// BuildEntry creates an unprocessed Entry with a fresh identity.
func BuildEntry(eventType string, payload []byte, metadata []byte, createdAt time.Time) Entry {
	return Entry{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payload,
		Metadata:  metadata,
		CreatedAt: createdAt,
	}
}

// Store is the persistence contract for outbox entries.
//
// Save gives no transactional guarantee by itself: the caller is responsible for
// invoking it inside the same transaction as the triggering event-store append,
// so that an event is never recorded without its delivery obligation and vice versa.
type Store interface {
	// Save inserts the entry with processed = false.
	Save(ctx context.Context, entry Entry) error

	// FindUnprocessed returns unprocessed entries in ascending creation order,
	// which defines the delivery order. limit <= 0 means no limit.
	FindUnprocessed(ctx context.Context, limit int) ([]Entry, error)

	// MarkProcessed sets processed = true and the processing timestamp.
	// Marking an already processed entry is harmless.
	MarkProcessed(ctx context.Context, id uuid.UUID) error
}
