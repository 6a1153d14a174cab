package allevents

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/eventfold/aggregatestore-go/eventstore"
)

// EventRecord is one event of the global feed.
type EventRecord struct {
	GlobalPosition uint64          `json:"globalPosition"`
	AggregateID    uuid.UUID       `json:"aggregateId"`
	EventType      string          `json:"eventType"`
	EventVersion   uint            `json:"eventVersion"`
	OccurredAt     time.Time       `json:"occurredAt"`
	EventData      json.RawMessage `json:"eventData"`
	Metadata       json.RawMessage `json:"metadata"`
}

// EventFeed is the query result containing one page of the global event feed
// in ascending position order.
type EventFeed struct {
	Events []EventRecord `json:"events"`
	Count  int           `json:"count"`
}

// EventFeedFrom maps storable events to the read model.
func EventFeedFrom(storableEvents eventstore.StorableEvents) EventFeed {
	events := make([]EventRecord, 0, len(storableEvents))
	for _, storableEvent := range storableEvents {
		events = append(events, EventRecord{
			GlobalPosition: storableEvent.GlobalPosition,
			AggregateID:    storableEvent.AggregateID,
			EventType:      storableEvent.EventType,
			EventVersion:   storableEvent.EventVersion,
			OccurredAt:     storableEvent.OccurredAt,
			EventData:      storableEvent.PayloadJSON,
			Metadata:       storableEvent.MetadataJSON,
		})
	}

	return EventFeed{Events: events, Count: len(events)}
}
