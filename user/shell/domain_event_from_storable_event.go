package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/eventfold/aggregatestore-go/aggregate"
	"github.com/eventfold/aggregatestore-go/eventstore"
	"github.com/eventfold/aggregatestore-go/user/core"
)

// ErrMappingToDomainEventFailed is returned when domain event conversion fails.
var ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

// DomainEventsFrom converts multiple StorableEvents to DomainEvents.
func DomainEventsFrom(storableEvents eventstore.StorableEvents) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0)

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventFrom converts a StorableEvent to its corresponding DomainEvent.
// An event type without a handler yields aggregate.UnknownEventTypeError, because
// silently skipping an event during replay would corrupt the rebuilt state.
func DomainEventFrom(storableEvent eventstore.StorableEvent) (core.DomainEvent, error) {
	switch storableEvent.EventType {
	case core.UserCreatedEventType:
		return unmarshalUserCreated(storableEvent.PayloadJSON)

	case core.UserUpdatedEventType:
		return unmarshalUserUpdated(storableEvent.PayloadJSON)

	case core.UserDeletedEventType:
		return unmarshalUserDeleted(storableEvent.PayloadJSON)

	default:
		return nil, aggregate.UnknownEventTypeError{EventType: storableEvent.EventType}
	}
}

func unmarshalUserCreated(payloadJSON []byte) (core.DomainEvent, error) {
	payload := new(core.UserCreated)

	err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, payload)
	if err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return *payload, nil
}

func unmarshalUserUpdated(payloadJSON []byte) (core.DomainEvent, error) {
	payload := new(core.UserUpdated)

	err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, payload)
	if err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return *payload, nil
}

func unmarshalUserDeleted(payloadJSON []byte) (core.DomainEvent, error) {
	payload := new(core.UserDeleted)

	err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, payload)
	if err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return *payload, nil
}
