package listusers

import (
	"time"

	"github.com/google/uuid"

	"github.com/eventfold/aggregatestore-go/user/core"
)

// UserInfo is one row of the user list.
type UserInfo struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   uint      `json:"version"`
}

// UserList is the query result containing one page of users and the total
// count of alive users.
type UserList struct {
	Users      []UserInfo `json:"users"`
	TotalCount int        `json:"totalCount"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
}

// UserListFromStates maps snapshot states to the read model.
func UserListFromStates(states []core.UserState, totalCount int, page int, pageSize int) UserList {
	users := make([]UserInfo, 0, len(states))
	for _, state := range states {
		users = append(users, UserInfo{
			ID:        state.ID,
			Email:     string(state.Email),
			Name:      state.Name,
			CreatedAt: state.CreatedAt,
			UpdatedAt: state.UpdatedAt,
			Version:   state.Version,
		})
	}

	return UserList{
		Users:      users,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}
}
