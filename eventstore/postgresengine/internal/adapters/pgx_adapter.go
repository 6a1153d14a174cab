package adapters

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventfold/aggregatestore-go/pgtx"
)

// PGXAdapter implements DBAdapter for pgxpool.Pool.
//
// When the context carries a transaction (pgtx.From), statements run on that
// transaction instead of the pool, so event appends join the caller's unit of work.
type PGXAdapter struct {
	pool *pgxpool.Pool
}

// NewPGXAdapter creates a new PGX adapter.
func NewPGXAdapter(pool *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{pool: pool}
}

// Query executes a query on the context transaction if present, otherwise on the pool.
func (p *PGXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	var rows pgx.Rows
	var err error

	if tx, ok := pgtx.From(ctx); ok {
		rows, err = tx.Query(ctx, query)
	} else {
		rows, err = p.pool.Query(ctx, query)
	}

	if err != nil {
		return nil, err
	}

	return &pgxRows{rows: rows}, nil
}

// Exec executes a statement on the context transaction if present, otherwise on the pool.
func (p *PGXAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	var tag pgconn.CommandTag
	var err error

	if tx, ok := pgtx.From(ctx); ok {
		tag, err = tx.Exec(ctx, query)
	} else {
		tag, err = p.pool.Exec(ctx, query)
	}

	if err != nil {
		return nil, err
	}

	return &pgxResult{tag: tag}, nil
}

// pgxRows wraps pgx.Rows to implement the DBRows interface.
type pgxRows struct {
	rows pgx.Rows
}

// Next advances to the next row.
func (p *pgxRows) Next() bool {
	return p.rows.Next()
}

// Scan copies row values into provided destinations.
func (p *pgxRows) Scan(dest ...any) error {
	return p.rows.Scan(dest...)
}

// Close closes the rows iterator.
func (p *pgxRows) Close() error {
	p.rows.Close()
	return nil
}

// pgxResult wraps pgconn.CommandTag to implement the DBResult interface.
type pgxResult struct {
	tag pgconn.CommandTag
}

// RowsAffected returns the number of rows affected by the command.
func (p *pgxResult) RowsAffected() (int64, error) {
	return p.tag.RowsAffected(), nil
}
