package shell

import (
	"context"

	"github.com/google/uuid"

	"github.com/eventfold/aggregatestore-go/user/core"
)

// SnapshotStore persists the queryable current-state projection of users, one row
// per aggregate id, overwritten on every save. It is derived data: the event log
// stays the source of truth and every row is rebuildable from it.
type SnapshotStore interface {
	// Upsert writes the user's current state, replacing any existing row.
	Upsert(ctx context.Context, state core.UserState) error

	// FindByID returns the row for the given id including soft-deleted users,
	// or nil when no row exists. Callers decide whether deleted rows qualify.
	FindByID(ctx context.Context, id uuid.UUID) (*core.UserState, error)

	// FindByEmail returns the row of the alive user owning the email, or nil.
	// Soft-deleted users do not own their email anymore.
	FindByEmail(ctx context.Context, email string) (*core.UserState, error)

	// FindMany returns one page of alive users in descending creation order
	// together with the total count of alive users. page is 1-based.
	FindMany(ctx context.Context, page int, pageSize int) ([]core.UserState, int, error)
}
