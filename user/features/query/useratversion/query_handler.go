package useratversion

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eventfold/aggregatestore-go/user/core"
)

// Repository defines the persistence interface needed by the QueryHandler.
type Repository interface {
	GetAtVersion(ctx context.Context, id uuid.UUID, version uint) (*core.User, error)
}

// UserView is the read model of a user reconstructed at a point in its history.
// Deletion fields are included because historical states before a delete are
// reconstructable even for soft-deleted users.
type UserView struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	DeletedAt *time.Time  `json:"deletedAt,omitempty"`
	CreatedBy *core.Actor `json:"createdBy,omitempty"`
	UpdatedBy *core.Actor `json:"updatedBy,omitempty"`
	DeletedBy *core.Actor `json:"deletedBy,omitempty"`
	Version   uint        `json:"version"`
}

// QueryHandler answers point-in-time reconstruction queries.
type QueryHandler struct {
	users Repository
}

// NewQueryHandler creates a new QueryHandler with the provided dependency.
func NewQueryHandler(users Repository) QueryHandler {
	return QueryHandler{users: users}
}

// Handle replays the user's events up to the requested version. A version
// before the first event yields a not-found error.
func (h QueryHandler) Handle(ctx context.Context, query Query) (UserView, error) {
	user, err := h.users.GetAtVersion(ctx, query.UserID, query.Version)
	if err != nil {
		return UserView{}, err
	}

	state := user.State()

	return UserView{
		ID:        state.ID,
		Email:     string(state.Email),
		Name:      state.Name,
		CreatedAt: state.CreatedAt,
		UpdatedAt: state.UpdatedAt,
		DeletedAt: state.DeletedAt,
		CreatedBy: state.CreatedBy,
		UpdatedBy: state.UpdatedBy,
		DeletedBy: state.DeletedBy,
		Version:   state.Version,
	}, nil
}
