package userhistory

import (
	"context"

	"github.com/google/uuid"

	"github.com/eventfold/aggregatestore-go/user/shell"
)

// Repository defines the persistence interface needed by the QueryHandler.
type Repository interface {
	GetHistory(ctx context.Context, id uuid.UUID) ([]shell.HistoryEntry, error)
}

// History is the query result containing a user's complete audit trail in
// version order, including events of soft-deleted users.
type History struct {
	UserID  uuid.UUID            `json:"userId"`
	Entries []shell.HistoryEntry `json:"entries"`
}

// QueryHandler answers audit trail queries.
type QueryHandler struct {
	users Repository
}

// NewQueryHandler creates a new QueryHandler with the provided dependency.
func NewQueryHandler(users Repository) QueryHandler {
	return QueryHandler{users: users}
}

// Handle returns the user's full event history. An aggregate without events
// yields a not-found error.
func (h QueryHandler) Handle(ctx context.Context, query Query) (History, error) {
	entries, err := h.users.GetHistory(ctx, query.UserID)
	if err != nil {
		return History{}, err
	}

	return History{UserID: query.UserID, Entries: entries}, nil
}
