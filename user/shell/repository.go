package shell

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/eventfold/aggregatestore-go/aggregate"
	"github.com/eventfold/aggregatestore-go/eventstore"
	"github.com/eventfold/aggregatestore-go/user/core"
)

const (
	naturalKeyEmail       = "email"
	pgUniqueViolationCode = "23505"
	defaultMaxPageSize    = 100
)

// HistoryEntry is one item of an aggregate's full audit trail.
type HistoryEntry struct {
	EventType  string            `json:"eventType"`
	EventData  json.RawMessage   `json:"eventData"`
	OccurredAt core.OccurredAtTS `json:"occurredAt"`
	Version    uint              `json:"version"`
	Metadata   json.RawMessage   `json:"metadata"`
}

// UserRepository orchestrates persistence of the User aggregate: it appends
// uncommitted events to the event store under an expected-version check and keeps
// the queryable snapshot row in sync. Reads prefer replaying the event stream
// (source of truth) and fall back to the snapshot for legacy rows without events.
type UserRepository struct {
	events    eventstore.Store
	snapshots SnapshotStore
}

// NewUserRepository creates a UserRepository on top of an event store and a snapshot store.
func NewUserRepository(events eventstore.Store, snapshots SnapshotStore) *UserRepository {
	return &UserRepository{events: events, snapshots: snapshots}
}

// Save persists the aggregate's uncommitted events under fresh metadata. Callers
// that also enqueue outbox entries for the same events should use SaveWithMetadata
// so both records carry the same causal identifiers.
func (r *UserRepository) Save(ctx context.Context, user *core.User) error {
	uid := uuid.New()

	return r.SaveWithMetadata(ctx, user, BuildEventMetadataFromContext(ctx, uid, uid, uid))
}

// SaveWithMetadata persists the aggregate's uncommitted events with
// expectedVersion = version - len(uncommitted), stamping every appended event
// with the given metadata, clears the buffer on success and upserts the snapshot
// row. A natural-key collision on email surfaces as a ConflictError before any
// event is appended; a lost optimistic-concurrency race surfaces as
// eventstore.ConcurrencyError.
func (r *UserRepository) SaveWithMetadata(ctx context.Context, user *core.User, metadata EventMetadata) error {
	uncommitted := user.UncommittedEvents()
	if len(uncommitted) == 0 {
		return nil
	}

	if err := r.ensureEmailIsFree(ctx, user); err != nil {
		return err
	}

	expectedVersion := user.Version() - uint(len(uncommitted))

	domainEvents := make(core.DomainEvents, 0, len(uncommitted))
	for _, event := range uncommitted {
		domainEvent, ok := event.(core.DomainEvent)
		if !ok {
			return aggregate.UnknownEventTypeError{EventType: event.EventType()}
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	storableEvents, mapErr := StorableEventsFrom(user.AggregateID(), domainEvents, metadata)
	if mapErr != nil {
		return mapErr
	}

	if err := r.events.AppendEvents(ctx, user.AggregateID(), expectedVersion, storableEvents); err != nil {
		return err
	}

	user.MarkEventsCommitted()

	if err := r.snapshots.Upsert(ctx, user.State()); err != nil {
		return translateUniqueViolation(err, user.Email())
	}

	return nil
}

// FindByID reconstructs the user by replaying its full event stream; when no events
// exist it falls back to the snapshot row. Soft-deleted and unknown users yield a
// NotFoundError.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*core.User, error) {
	user, err := r.loadFromHistory(ctx, id, 0)
	if err != nil {
		return nil, err
	}

	if user == nil {
		state, snapErr := r.snapshots.FindByID(ctx, id)
		if snapErr != nil {
			return nil, snapErr
		}

		if state != nil {
			user = core.RestoreUser(*state)
		}
	}

	if user == nil || user.IsDeleted() {
		return nil, aggregate.NotFoundError{AggregateID: id}
	}

	return user, nil
}

// FindByIDIncludingDeleted reconstructs the user like FindByID but keeps
// soft-deleted users visible, which deletion needs to stay idempotent.
func (r *UserRepository) FindByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*core.User, error) {
	user, err := r.loadFromHistory(ctx, id, 0)
	if err != nil {
		return nil, err
	}

	if user == nil {
		state, snapErr := r.snapshots.FindByID(ctx, id)
		if snapErr != nil {
			return nil, snapErr
		}

		if state != nil {
			user = core.RestoreUser(*state)
		}
	}

	if user == nil {
		return nil, aggregate.NotFoundError{AggregateID: id}
	}

	return user, nil
}

// FindByEmail is a snapshot-first lookup by the email natural key, excluding
// soft-deleted users. Returns a NotFoundError when no alive user owns the email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*core.User, error) {
	state, err := r.snapshots.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if state == nil {
		return nil, aggregate.NotFoundError{}
	}

	return core.RestoreUser(*state), nil
}

// FindMany returns one page of alive users from the snapshot table in descending
// creation order, plus the total count. page is 1-based; pageSize is clamped to 100.
func (r *UserRepository) FindMany(ctx context.Context, page int, pageSize int) ([]core.UserState, int, error) {
	if page < 1 {
		page = 1
	}

	if pageSize < 1 {
		pageSize = 1
	}

	if pageSize > defaultMaxPageSize {
		pageSize = defaultMaxPageSize
	}

	return r.snapshots.FindMany(ctx, page, pageSize)
}

// GetHistory returns the unfiltered audit trail of the aggregate, including events
// of soft-deleted users. An aggregate without events yields a NotFoundError.
func (r *UserRepository) GetHistory(ctx context.Context, id uuid.UUID) ([]HistoryEntry, error) {
	storableEvents, err := r.events.GetEvents(ctx, id, 0)
	if err != nil {
		return nil, err
	}

	if len(storableEvents) == 0 {
		return nil, aggregate.NotFoundError{AggregateID: id}
	}

	entries := make([]HistoryEntry, 0, len(storableEvents))
	for _, storableEvent := range storableEvents {
		entries = append(entries, HistoryEntry{
			EventType:  storableEvent.EventType,
			EventData:  storableEvent.PayloadJSON,
			OccurredAt: storableEvent.OccurredAt,
			Version:    storableEvent.EventVersion,
			Metadata:   storableEvent.MetadataJSON,
		})
	}

	return entries, nil
}

// GetAtVersion reconstructs the user as of the given version by replaying only
// events with EventVersion <= version. Version 0 and versions before the first
// event yield a NotFoundError, since no event qualifies. Soft-deleted users are
// reconstructable at versions before the delete.
func (r *UserRepository) GetAtVersion(ctx context.Context, id uuid.UUID, version uint) (*core.User, error) {
	if version == 0 {
		return nil, aggregate.NotFoundError{AggregateID: id}
	}

	user, err := r.loadFromHistory(ctx, id, version)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, aggregate.NotFoundError{AggregateID: id}
	}

	return user, nil
}

// loadFromHistory replays the stream up to maxVersion (0 = no cap) and returns nil
// when the aggregate has no qualifying events.
func (r *UserRepository) loadFromHistory(ctx context.Context, id uuid.UUID, maxVersion uint) (*core.User, error) {
	storableEvents, err := r.events.GetEvents(ctx, id, 0)
	if err != nil {
		return nil, err
	}

	if maxVersion > 0 {
		capped := make(eventstore.StorableEvents, 0, len(storableEvents))
		for _, storableEvent := range storableEvents {
			if storableEvent.EventVersion <= maxVersion {
				capped = append(capped, storableEvent)
			}
		}
		storableEvents = capped
	}

	if len(storableEvents) == 0 {
		return nil, nil
	}

	domainEvents, mapErr := DomainEventsFrom(storableEvents)
	if mapErr != nil {
		return nil, mapErr
	}

	return core.UserFromHistory(domainEvents)
}

// ensureEmailIsFree raises a ConflictError when the aggregate's email is already
// owned by a different alive aggregate. The check runs before the append to avoid
// partial writes; the partial unique index on the users table backs it up against
// concurrent saves.
func (r *UserRepository) ensureEmailIsFree(ctx context.Context, user *core.User) error {
	existing, err := r.snapshots.FindByEmail(ctx, user.Email())
	if err != nil {
		return err
	}

	if existing != nil && existing.ID != user.AggregateID() {
		return aggregate.ConflictError{Key: naturalKeyEmail, Value: user.Email()}
	}

	return nil
}

// translateUniqueViolation maps a Postgres unique violation to the domain ConflictError.
func translateUniqueViolation(err error, email string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
		return aggregate.ConflictError{Key: naturalKeyEmail, Value: email}
	}

	return err
}
