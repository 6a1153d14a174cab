package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventfold/aggregatestore-go/pgtx"
)

// pgQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore is the pgx-backed outbox Store over the outbox_entries table.
// Statements join a transaction carried in the context via pgtx, which is what
// couples the outbox write to the event-store append.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates an outbox Store on top of a pgx connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) querier(ctx context.Context) pgQuerier {
	if tx, ok := pgtx.From(ctx); ok {
		return tx
	}

	return s.pool
}

// Save implements Store.
func (s *PostgresStore) Save(ctx context.Context, entry Entry) error {
	_, err := s.querier(ctx).Exec(ctx, `
		INSERT INTO outbox_entries (id, event_type, payload, metadata, processed, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
	`, entry.ID, entry.EventType, entry.Payload, entry.Metadata, entry.CreatedAt)

	return err
}

// FindUnprocessed implements Store. FOR UPDATE SKIP LOCKED keeps pollers that
// run find, deliver and mark inside one pgtx transaction from picking the same
// rows. On the plain pool the locks only last for the statement, so competing
// pollers can redeliver; delivery stays at-least-once and consumers dedupe on
// entry ID.
func (s *PostgresStore) FindUnprocessed(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, event_type, payload, metadata, processed, processed_at, created_at
		FROM outbox_entries
		WHERE processed = FALSE
		ORDER BY created_at
		FOR UPDATE SKIP LOCKED
	`

	var rows pgx.Rows
	var err error

	if limit > 0 {
		rows, err = s.querier(ctx).Query(ctx, query+` LIMIT $1`, limit)
	} else {
		rows, err = s.querier(ctx).Query(ctx, query)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var processedAt *time.Time

		if scanErr := rows.Scan(
			&entry.ID,
			&entry.EventType,
			&entry.Payload,
			&entry.Metadata,
			&entry.Processed,
			&processedAt,
			&entry.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}

		entry.ProcessedAt = processedAt
		entries = append(entries, entry)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return entries, nil
}

// MarkProcessed implements Store.
func (s *PostgresStore) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	_, err := s.querier(ctx).Exec(ctx, `
		UPDATE outbox_entries
		SET processed = TRUE, processed_at = now()
		WHERE id = $1 AND processed = FALSE
	`, id)

	return err
}
