package eventsbytype

const (
	queryType = "EventsByType"
)

// Query represents the request for a page of events of one event type.
// FromPosition is exclusive; MaxCount caps the page size, zero means no cap.
type Query struct {
	EventType    string
	FromPosition uint64
	MaxCount     int
}

// QueryType returns the type of this query for logging and routing purposes.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a new Query with the provided parameters.
func BuildQuery(eventType string, fromPosition uint64, maxCount int) Query {
	return Query{EventType: eventType, FromPosition: fromPosition, MaxCount: maxCount}
}
