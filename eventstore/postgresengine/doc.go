// Package postgresengine provides the PostgreSQL implementation of the eventstore.Store
// contract, supporting pgx.Pool, database/sql, and sqlx database connections.
//
// Appends use a conditional INSERT ... SELECT guarded by a CTE that resolves the
// aggregate's current max version, so the optimistic concurrency check and the
// insert execute as one atomic statement. A rows-affected shortfall signals a
// conflict, which is surfaced as a typed eventstore.ConcurrencyError carrying
// the expected and the actual stream version.
//
// When the context carries a pgx transaction (see the pgtx package), all statements
// join that transaction, which couples event appends to outbox and snapshot writes
// inside one unit of work.
package postgresengine
