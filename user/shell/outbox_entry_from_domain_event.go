package shell

import (
	"encoding/json"
	"errors"

	"github.com/eventfold/aggregatestore-go/aggregate"
	"github.com/eventfold/aggregatestore-go/outbox"
)

// ErrMappingToOutboxEntryFailed is returned when outbox entry serialization fails.
var ErrMappingToOutboxEntryFailed = errors.New("mapping to outbox entry failed")

// OutboxEntryFrom converts a domain event into an outbox Entry on the given
// channel, carrying the same metadata the stored event carries so consumers
// can correlate the two.
func OutboxEntryFrom(event aggregate.Event, channel string, metadata EventMetadata) (outbox.Entry, error) {
	payloadJSON, err := json.Marshal(event)
	if err != nil {
		return outbox.Entry{}, errors.Join(ErrMappingToOutboxEntryFailed, err)
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return outbox.Entry{}, errors.Join(ErrMappingToOutboxEntryFailed, err)
	}

	return outbox.BuildEntry(channel, payloadJSON, metadataJSON, event.HasOccurredAt()), nil
}

// OutboxEntriesFrom converts the aggregate's uncommitted events to outbox
// entries, all on the same channel and with the same metadata.
func OutboxEntriesFrom(events []aggregate.Event, channel string, metadata EventMetadata) ([]outbox.Entry, error) {
	entries := make([]outbox.Entry, 0, len(events))

	for _, event := range events {
		entry, err := OutboxEntryFrom(event, channel, metadata)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
