package shell

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	jsoniter "github.com/json-iterator/go"

	"github.com/eventfold/aggregatestore-go/pgtx"
	"github.com/eventfold/aggregatestore-go/user/core"
)

// pgQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresSnapshotStore is the pgx-backed SnapshotStore over the users table.
// Statements join a transaction carried in the context via pgtx.
type PostgresSnapshotStore struct {
	pool *pgxpool.Pool
}

// NewPostgresSnapshotStore creates a SnapshotStore on top of a pgx connection pool.
func NewPostgresSnapshotStore(pool *pgxpool.Pool) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{pool: pool}
}

func (s *PostgresSnapshotStore) querier(ctx context.Context) pgQuerier {
	if tx, ok := pgtx.From(ctx); ok {
		return tx
	}

	return s.pool
}

// Upsert implements SnapshotStore.
func (s *PostgresSnapshotStore) Upsert(ctx context.Context, state core.UserState) error {
	createdBy, err := actorJSON(state.CreatedBy)
	if err != nil {
		return err
	}

	updatedBy, err := actorJSON(state.UpdatedBy)
	if err != nil {
		return err
	}

	deletedBy, err := actorJSON(state.DeletedBy)
	if err != nil {
		return err
	}

	_, err = s.querier(ctx).Exec(ctx, `
		INSERT INTO users (id, email, name, created_at, updated_at, deleted_at, created_by, updated_by, deleted_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at,
			updated_by = EXCLUDED.updated_by,
			deleted_by = EXCLUDED.deleted_by,
			version = EXCLUDED.version
	`, state.ID, state.Email, state.Name, state.CreatedAt, state.UpdatedAt, state.DeletedAt,
		createdBy, updatedBy, deletedBy, state.Version)

	return err
}

// FindByID implements SnapshotStore.
func (s *PostgresSnapshotStore) FindByID(ctx context.Context, id uuid.UUID) (*core.UserState, error) {
	row := s.querier(ctx).QueryRow(ctx, `
		SELECT id, email, name, created_at, updated_at, deleted_at, created_by, updated_by, deleted_by, version
		FROM users
		WHERE id = $1
	`, id)

	return scanUserState(row)
}

// FindByEmail implements SnapshotStore.
func (s *PostgresSnapshotStore) FindByEmail(ctx context.Context, email string) (*core.UserState, error) {
	row := s.querier(ctx).QueryRow(ctx, `
		SELECT id, email, name, created_at, updated_at, deleted_at, created_by, updated_by, deleted_by, version
		FROM users
		WHERE email = $1 AND deleted_at IS NULL
	`, email)

	return scanUserState(row)
}

// FindMany implements SnapshotStore.
func (s *PostgresSnapshotStore) FindMany(ctx context.Context, page int, pageSize int) ([]core.UserState, int, error) {
	q := s.querier(ctx)

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx, `
		SELECT id, email, name, created_at, updated_at, deleted_at, created_by, updated_by, deleted_by, version
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	states := make([]core.UserState, 0, pageSize)
	for rows.Next() {
		state, scanErr := scanUserState(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}

		states = append(states, *state)
	}

	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return states, total, nil
}

func scanUserState(row pgx.Row) (*core.UserState, error) {
	var state core.UserState
	var deletedAt *time.Time
	var createdBy, updatedBy, deletedBy []byte

	err := row.Scan(
		&state.ID,
		&state.Email,
		&state.Name,
		&state.CreatedAt,
		&state.UpdatedAt,
		&deletedAt,
		&createdBy,
		&updatedBy,
		&deletedBy,
		&state.Version,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	state.DeletedAt = deletedAt

	if state.CreatedBy, err = actorFromJSON(createdBy); err != nil {
		return nil, err
	}

	if state.UpdatedBy, err = actorFromJSON(updatedBy); err != nil {
		return nil, err
	}

	if state.DeletedBy, err = actorFromJSON(deletedBy); err != nil {
		return nil, err
	}

	return &state, nil
}

func actorJSON(actor *core.Actor) ([]byte, error) {
	if actor == nil {
		return nil, nil
	}

	return jsoniter.ConfigFastest.Marshal(actor)
}

func actorFromJSON(data []byte) (*core.Actor, error) {
	if len(data) == 0 {
		return nil, nil
	}

	actor := new(core.Actor)
	if err := jsoniter.ConfigFastest.Unmarshal(data, actor); err != nil {
		return nil, err
	}

	return actor, nil
}
