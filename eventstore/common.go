package eventstore

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrEmptyEventsTableName = errors.New("empty events table name supplied")
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")

// ErrConcurrencyConflict is the sentinel error for optimistic concurrency violations on append.
// Engines return a ConcurrencyError which matches this sentinel via errors.Is.
var ErrConcurrencyConflict = errors.New("concurrency conflict, expected version does not match stored version")

var ErrBuildingQueryFailed = errors.New("building the query failed")
var ErrQueryingEventsFailed = errors.New("querying events failed")
var ErrScanningDBRowFailed = errors.New("scanning the database row failed")
var ErrBuildingStorableEventFailed = errors.New("building storable event from database row failed")
var ErrAppendingEventFailed = errors.New("appending the event(s) failed")
var ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")

// ConcurrencyError reports an optimistic concurrency violation detected during AppendEvents.
// Expected is the version the caller assumed, Actual the highest version found in storage.
type ConcurrencyError struct {
	AggregateID uuid.UUID
	Expected    uint
	Actual      uint
}

func (e ConcurrencyError) Error() string {
	return fmt.Sprintf(
		"concurrency conflict for aggregate %s: expected version %d, actual version %d",
		e.AggregateID, e.Expected, e.Actual)
}

// Is makes ConcurrencyError match the ErrConcurrencyConflict sentinel.
func (e ConcurrencyError) Is(target error) bool {
	return target == ErrConcurrencyConflict
}
