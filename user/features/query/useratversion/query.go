package useratversion

import (
	"github.com/google/uuid"
)

const (
	queryType = "UserAtVersion"
)

// Query represents the request for a user's state as of a given version.
type Query struct {
	UserID  uuid.UUID
	Version uint
}

// QueryType returns the type of this query for logging and routing purposes.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a new Query with the provided parameters.
func BuildQuery(userID uuid.UUID, version uint) Query {
	return Query{UserID: userID, Version: version}
}
