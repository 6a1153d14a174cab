// Package adapters provide database adapter implementations for the PostgreSQL event store.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, allowing the event store to work seamlessly with any
// supported database connection type.
//
// The pgx adapter additionally joins a transaction carried in the context via the
// pgtx package, which is what couples event appends to outbox and snapshot writes
// inside one unit of work.
package adapters
