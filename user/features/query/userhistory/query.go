package userhistory

import (
	"github.com/google/uuid"
)

const (
	queryType = "UserHistory"
)

// Query represents the request for a user's full audit trail.
type Query struct {
	UserID uuid.UUID
}

// QueryType returns the type of this query for logging and routing purposes.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a new Query with the provided parameters.
func BuildQuery(userID uuid.UUID) Query {
	return Query{UserID: userID}
}
