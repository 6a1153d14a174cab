package eventsbytype

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/eventfold/aggregatestore-go/eventstore"
)

// EventRecord is one event of the filtered feed.
type EventRecord struct {
	GlobalPosition uint64          `json:"globalPosition"`
	AggregateID    uuid.UUID       `json:"aggregateId"`
	EventType      string          `json:"eventType"`
	EventVersion   uint            `json:"eventVersion"`
	OccurredAt     time.Time       `json:"occurredAt"`
	EventData      json.RawMessage `json:"eventData"`
	Metadata       json.RawMessage `json:"metadata"`
}

// EventsOfType is the query result containing one page of events of a single
// event type in ascending position order.
type EventsOfType struct {
	EventType string        `json:"eventType"`
	Events    []EventRecord `json:"events"`
	Count     int           `json:"count"`
}

// EventsOfTypeFrom maps storable events to the read model.
func EventsOfTypeFrom(eventType string, storableEvents eventstore.StorableEvents) EventsOfType {
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

	return EventsOfType{EventType: eventType, Events: events, Count: len(events)}
}
