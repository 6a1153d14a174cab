package getuser

import (
	"context"

	"github.com/google/uuid"

	"github.com/eventfold/aggregatestore-go/user/core"
)

// Repository defines the persistence interface needed by the QueryHandler.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*core.User, error)
}

// QueryHandler answers single-user lookups. Soft-deleted and unknown users
// surface as a not-found error from the repository.
type QueryHandler struct {
	users Repository
}

// NewQueryHandler creates a new QueryHandler with the provided dependency.
func NewQueryHandler(users Repository) QueryHandler {
	return QueryHandler{users: users}
}

// Handle loads the user and maps it to the read model.
func (h QueryHandler) Handle(ctx context.Context, query Query) (UserView, error) {
	user, err := h.users.FindByID(ctx, query.UserID)
	if err != nil {
		return UserView{}, err
	}

	return UserViewFromState(user.State()), nil
}
