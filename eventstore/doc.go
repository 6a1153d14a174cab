// Package eventstore provides the core abstractions for per-aggregate event sourcing:
// the StorableEvent transfer type, the Store persistence contract, and the shared
// error definitions including the typed ConcurrencyError.
//
// Events are keyed by (AggregateID, EventVersion) where versions form a gapless
// 1-based sequence per aggregate, and carry a store-assigned GlobalPosition that
// orders them across all aggregates for feed-style reads.
//
// Engine implementations live in subpackages:
//   - postgresengine: Postgres-backed store (pgx, database/sql or sqlx)
//   - memoryengine: mutex-guarded in-memory store for tests and local development
//
// Common usage pattern:
//
//	store, err := postgresengine.NewEventStoreFromPGXPool(pool)
//	if err != nil { ... }
//
//	err = store.AppendEvents(ctx, aggregateID, expectedVersion, events)
//	if errors.Is(err, eventstore.ErrConcurrencyConflict) {
//		// reload the aggregate and decide whether to retry
//	}
package eventstore
