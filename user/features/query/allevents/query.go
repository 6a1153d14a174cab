package allevents

const (
	queryType = "AllEvents"
)

// Query represents the request for a page of the global event feed.
// FromPosition is exclusive; MaxCount caps the page size, zero means no cap.
type Query struct {
	FromPosition uint64
	MaxCount     int
}

// QueryType returns the type of this query for logging and routing purposes.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a new Query with the provided parameters.
func BuildQuery(fromPosition uint64, maxCount int) Query {
	return Query{FromPosition: fromPosition, MaxCount: maxCount}
}
