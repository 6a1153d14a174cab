package getuser

import (
	"github.com/google/uuid"
)

const (
	queryType = "GetUser"
)

// Query represents the request to fetch a single user by identity.
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
