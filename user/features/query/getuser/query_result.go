package getuser

import (
	"time"

	"github.com/google/uuid"

	"github.com/eventfold/aggregatestore-go/user/core"
)

// UserView is the read model of a single user.
type UserView struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	CreatedBy *core.Actor `json:"createdBy,omitempty"`
	UpdatedBy *core.Actor `json:"updatedBy,omitempty"`
	Version   uint        `json:"version"`
}

// UserViewFromState maps the aggregate state to the read model.
func UserViewFromState(state core.UserState) UserView {
	return UserView{
		ID:        state.ID,
		Email:     string(state.Email),
		Name:      state.Name,
		CreatedAt: state.CreatedAt,
		UpdatedAt: state.UpdatedAt,
		CreatedBy: state.CreatedBy,
		UpdatedBy: state.UpdatedBy,
		Version:   state.Version,
	}
}
