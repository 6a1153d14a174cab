package shell

import (
	"context"
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/eventfold/aggregatestore-go/eventstore"
)

// ErrMappingToEventMetadataFailed is returned when metadata conversion fails.
var ErrMappingToEventMetadataFailed = errors.New("mapping to event metadata failed")

// MessageID represents a unique message identifier.
type MessageID = string

// CausationID represents the ID of the event that caused this event.
type CausationID = string

// CorrelationID represents the ID correlating related events.
type CorrelationID = string

// EventMetadata contains event tracking information: causal identifiers plus the
// trace context active when the event was recorded, so downstream consumers can
// continue the trace.
type EventMetadata struct {
	MessageID     MessageID     `json:"messageId"`
	CausationID   CausationID   `json:"causationId"`
	CorrelationID CorrelationID `json:"correlationId"`
	TraceID       string        `json:"traceId,omitempty"`
	SpanID        string        `json:"spanId,omitempty"`
	Traceparent   string        `json:"traceparent,omitempty"`
	Tracestate    string        `json:"tracestate,omitempty"`
}

// BuildEventMetadata creates EventMetadata from UUID values.
func BuildEventMetadata(messageID uuid.UUID, causationID uuid.UUID, correlationID uuid.UUID) EventMetadata {
	return EventMetadata{
		MessageID:     messageID.String(),
		CausationID:   causationID.String(),
		CorrelationID: correlationID.String(),
	}
}

// BuildEventMetadataFromContext creates EventMetadata and attaches the current
// trace context from ctx, when a span is active.
func BuildEventMetadataFromContext(
	ctx context.Context,
	messageID uuid.UUID,
	causationID uuid.UUID,
	correlationID uuid.UUID,
) EventMetadata {

	metadata := BuildEventMetadata(messageID, causationID, correlationID)

	if spanContext := trace.SpanContextFromContext(ctx); spanContext.IsValid() {
		metadata.TraceID = spanContext.TraceID().String()
		metadata.SpanID = spanContext.SpanID().String()
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	metadata.Traceparent = carrier["traceparent"]
	metadata.Tracestate = carrier["tracestate"]

	return metadata
}

// EventMetadataFrom extracts EventMetadata from a StorableEvent.
func EventMetadataFrom(storableEvent eventstore.StorableEvent) (EventMetadata, error) {
	metadata := new(EventMetadata)
	err := jsoniter.ConfigFastest.Unmarshal(storableEvent.MetadataJSON, metadata)
	if err != nil {
		return EventMetadata{}, errors.Join(ErrMappingToEventMetadataFailed, err)
	}

	return *metadata, nil
}

// ContextWithTraceContext restores a trace context previously captured into
// EventMetadata, e.g. for the outbox poller delivering on behalf of the
// original request.
func ContextWithTraceContext(ctx context.Context, traceparent string, tracestate string) context.Context {
	if traceparent == "" && tracestate == "" {
		return ctx
	}

	carrier := propagation.MapCarrier{
		"traceparent": traceparent,
		"tracestate":  tracestate,
	}

	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
