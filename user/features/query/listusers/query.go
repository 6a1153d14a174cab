package listusers

const (
	queryType = "ListUsers"
)

// Query represents the request for one page of users. Page is 1-based.
type Query struct {
	Page     int
	PageSize int
}

// QueryType returns the type of this query for logging and routing purposes.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a new Query with the provided parameters.
func BuildQuery(page int, pageSize int) Query {
	return Query{Page: page, PageSize: pageSize}
}
