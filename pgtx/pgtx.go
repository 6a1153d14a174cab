// Package pgtx carries a pgx transaction in a context.Context so that the event
// store, the outbox store and the snapshot store can transparently join one
// database transaction, and provides Runner as the pgx-backed unit of work.
package pgtx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNilPool = errors.New("pgx pool must not be nil")

type txContextKey struct{}

// With returns a context carrying the given transaction.
func With(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// From extracts the transaction from the context, if one is present.
func From(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txContextKey{}).(pgx.Tx)
	return tx, ok
}

// Runner executes functions inside a single database transaction.
// The transaction is placed into the context passed to fn; every store that
// consults pgtx.From runs its statements on that transaction, so an error
// from fn rolls back all of their writes together.
type Runner struct {
	pool *pgxpool.Pool
}

// NewRunner creates a Runner on top of a pgx connection pool.
func NewRunner(pool *pgxpool.Pool) (*Runner, error) {
	if pool == nil {
		return nil, ErrNilPool
	}

	return &Runner{pool: pool}, nil
}

// Execute begins a transaction, runs fn with the transaction bound to the context,
// and commits on success or rolls back on error. A nested call reuses the
// transaction already present in the context.
func (r *Runner) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := From(ctx); ok {
		return fn(ctx)
	}

	tx, beginErr := r.pool.Begin(ctx)
	if beginErr != nil {
		return beginErr
	}

	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(With(ctx, tx)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
