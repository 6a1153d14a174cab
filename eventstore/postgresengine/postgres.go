package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/eventfold/aggregatestore-go/eventstore"
	"github.com/eventfold/aggregatestore-go/eventstore/postgresengine/internal/adapters"
)

const (
	defaultEventTableName          = "events"
	logMsgBuildSelectQueryFailed   = "failed to build select query"
	logMsgDBQueryFailed            = "database query execution failed"
	logMsgCloseRowsFailed          = "failed to close database rows"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgBuildStorableEventFailed = "failed to build storable event from database row"
	logMsgBuildInsertQueryFailed   = "failed to build insert query"
	logMsgDBExecFailed             = "database execution failed during event append"
	logMsgRowsAffectedFailed       = "failed to get rows affected count"
	logMsgReadActualVersionFailed  = "failed to read actual stream version after conflict"
	logMsgQueryCompleted           = "query completed"
	logMsgEventsAppended           = "events appended"
	logMsgConcurrencyConflict      = "concurrency conflict detected"
	logMsgSQLExecuted              = "executed sql for: "
	logMsgOperation                = "eventstore operation: "
	logAttrError                   = "error"
	logAttrQuery                   = "query"
	logAttrAggregateID             = "aggregate_id"
	logAttrEventType               = "event_type"
	logAttrEventCount              = "event_count"
	logAttrDurationMS              = "duration_ms"
	logAttrExpectedEvents          = "expected_events"
	logAttrRowsAffected            = "rows_affected"
	logAttrExpectedVersion         = "expected_version"
	logAttrActualVersion           = "actual_version"
	logActionQuery                 = "query"
	logActionAppend                = "append"
	colAggregateID                 = "aggregate_id"
	colEventType                   = "event_type"
	colEventVersion                = "event_version"
	colOccurredAt                  = "occurred_at"
	colPayload                     = "payload"
	colMetadata                    = "metadata"
	colGlobalPosition              = "global_position"
	cteContext                     = "context"
	cteVals                        = "vals"
	dialectPostgres                = "postgres"
	aliasMaxVersion                = "max_version"
	castUUID                       = "?::uuid"
	castText                       = "?::text"
	castBigint                     = "?::bigint"
	castTimestamp                  = "?::timestamp with time zone"
	castJsonb                      = "?::jsonb"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
	queryDuration     = time.Duration
)

// Logger interface for SQL query logging, operational metrics, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// EventStore is the Postgres implementation of the eventstore.Store contract.
//
// The optimistic concurrency check on append is executed inside a single conditional
// INSERT statement, so the version read and the insert cannot race even without an
// explicit transaction. It leverages a database adapter and supports customizable
// logging and event table configuration.
type EventStore struct {
	db             adapters.DBAdapter
	eventTableName string
	logger         Logger
}

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore) error

// WithTableName sets the table name for the EventStore.
func WithTableName(tableName string) Option {
	return func(es *EventStore) error {
		if tableName == "" {
			return eventstore.ErrEmptyEventsTableName
		}

		es.eventTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the EventStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Event counts, durations, concurrency conflicts (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(es *EventStore) error {
		es.logger = logger
		return nil
	}
}

type queryResultRow struct {
	aggregateID    string
	eventType      string
	eventVersion   uint
	occurredAt     time.Time
	payload        []byte
	metadata       []byte
	globalPosition uint64
}

// NewEventStoreFromPGXPool creates a new EventStore using a pgx Pool with optional configuration.
func NewEventStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapter(db), options...)
}

// NewEventStoreFromSQLDB creates a new EventStore using a sql.DB with optional configuration.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapter(db), options...)
}

// NewEventStoreFromSQLX creates a new EventStore using a sqlx.DB with optional configuration.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXAdapter(db), options...)
}

func newEventStore(db adapters.DBAdapter, options ...Option) (EventStore, error) {
	es := EventStore{
		db:             db,
		eventTableName: defaultEventTableName,
	}

	for _, option := range options {
		if err := option(&es); err != nil {
			return EventStore{}, err
		}
	}

	return es, nil
}

// GetEvents retrieves all events of one aggregate with EventVersion greater than
// fromVersion, in ascending version order. A missing aggregate yields an empty slice.
func (es EventStore) GetEvents(
	ctx context.Context,
	aggregateID uuid.UUID,
	fromVersion uint,
) (eventstore.StorableEvents, error) {

	selectStmt := es.selectEventColumns().
		Where(goqu.C(colAggregateID).Eq(aggregateID.String())).
		Order(goqu.I(colEventVersion).Asc())

	if fromVersion > 0 {
		selectStmt = selectStmt.Where(goqu.C(colEventVersion).Gt(fromVersion))
	}

	return es.runSelectQuery(ctx, selectStmt)
}

// GetAllEvents retrieves the global cross-aggregate feed ordered by GlobalPosition,
// starting strictly after fromPosition. maxCount <= 0 means no limit.
func (es EventStore) GetAllEvents(
	ctx context.Context,
	fromPosition uint64,
	maxCount int,
) (eventstore.StorableEvents, error) {

	selectStmt := es.selectEventColumns().
		Order(goqu.I(colGlobalPosition).Asc())

	if fromPosition > 0 {
		selectStmt = selectStmt.Where(goqu.C(colGlobalPosition).Gt(fromPosition))
	}

	if maxCount > 0 {
		selectStmt = selectStmt.Limit(uint(maxCount))
	}

	return es.runSelectQuery(ctx, selectStmt)
}

// GetEventsByType behaves like GetAllEvents restricted to a single event type.
func (es EventStore) GetEventsByType(
	ctx context.Context,
	eventType string,
	fromPosition uint64,
	maxCount int,
) (eventstore.StorableEvents, error) {

	selectStmt := es.selectEventColumns().
		Where(goqu.C(colEventType).Eq(eventType)).
		Order(goqu.I(colGlobalPosition).Asc())

	if fromPosition > 0 {
		selectStmt = selectStmt.Where(goqu.C(colGlobalPosition).Gt(fromPosition))
	}

	if maxCount > 0 {
		selectStmt = selectStmt.Limit(uint(maxCount))
	}

	return es.runSelectQuery(ctx, selectStmt)
}

// GetStream retrieves the aggregate's complete stream together with its current version.
// Returns nil when the aggregate has no events.
func (es EventStore) GetStream(ctx context.Context, aggregateID uuid.UUID) (*eventstore.Stream, error) {
	events, err := es.GetEvents(ctx, aggregateID, 0)
	if err != nil {
		return nil, err
	}

	if len(events) == 0 {
		return nil, nil
	}

	return &eventstore.Stream{
		Events:  events,
		Version: events[len(events)-1].EventVersion,
	}, nil
}

// AppendEvents attempts to append one or multiple eventstore.StorableEvent(s) onto the
// aggregate's stream, assigning consecutive versions starting at expectedVersion+1.
//
// The version check and the insert happen in one atomic conditional INSERT statement:
// when the stored max version does not equal expectedVersion no row is inserted and a
// typed eventstore.ConcurrencyError is returned, carrying the actual stored version.
//
// Appending an empty slice is a no-op and succeeds without touching the database.
//
// The insert query to append multiple events atomically is heavier than the one built
// to append a single event. In event-sourced applications, one command/request should
// typically only produce one event.
func (es EventStore) AppendEvents(
	ctx context.Context,
	aggregateID uuid.UUID,
	expectedVersion uint,
	events eventstore.StorableEvents,
) error {

	if len(events) == 0 {
		return nil
	}

	sqlQuery, buildQueryErr := es.buildAppendQuery(aggregateID, expectedVersion, events)
	if buildQueryErr != nil {
		return buildQueryErr
	}

	rowsAffected, duration, execErr := es.executeAppendQuery(ctx, sqlQuery)
	if execErr != nil {
		return execErr
	}

	if err := es.validateAppendResult(ctx, rowsAffected, aggregateID, expectedVersion, len(events)); err != nil {
		return err
	}

	es.logOperation(
		logMsgEventsAppended,
		logAttrAggregateID, aggregateID.String(),
		logAttrEventCount, len(events),
		logAttrDurationMS, es.durationToMilliseconds(duration),
	)

	return nil
}

// runSelectQuery converts the select statement to SQL, executes it and scans the rows.
func (es EventStore) runSelectQuery(
	ctx context.Context,
	selectStmt *goqu.SelectDataset,
) (eventstore.StorableEvents, error) {

	var empty eventstore.StorableEvents

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		if es.logger != nil {
			es.logger.Error(logMsgBuildSelectQueryFailed, logAttrError, toSQLErr.Error())
		}

		return empty, errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, duration, queryErr := es.executeQuery(ctx, sqlQuery)
	if queryErr != nil {
		return empty, queryErr
	}
	defer es.closeRows(rows)

	eventStream, scanErr := es.processQueryResults(rows)
	if scanErr != nil {
		return empty, scanErr
	}

	es.logOperation(
		logMsgQueryCompleted,
		logAttrEventCount, len(eventStream),
		logAttrDurationMS, es.durationToMilliseconds(duration))

	return eventStream, nil
}

func (es EventStore) selectEventColumns() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(colAggregateID, colEventType, colEventVersion, colOccurredAt, colPayload, colMetadata, colGlobalPosition)
}

// executeQuery executes the SQL query and returns rows with timing information.
func (es EventStore) executeQuery(ctx context.Context, sqlQuery string) (
	adapters.DBRows,
	time.Duration,
	error,
) {

	start := time.Now()
	rows, queryErr := es.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	es.logQueryWithDuration(sqlQuery, logActionQuery, duration)

	if queryErr != nil {
		if es.logger != nil {
			es.logger.Error(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		}

		return nil, duration, errors.Join(eventstore.ErrQueryingEventsFailed, queryErr)
	}

	return rows, duration, nil
}

// closeRows safely closes database rows and logs any errors.
func (es EventStore) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if es.logger != nil {
			es.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

// processQueryResults processes database rows and converts them to storable events.
func (es EventStore) processQueryResults(rows adapters.DBRows) (eventstore.StorableEvents, error) {
	var empty eventstore.StorableEvents
	result := queryResultRow{}
	eventStream := make(eventstore.StorableEvents, 0)

	for rows.Next() {
		rowScanErr := rows.Scan(
			&result.aggregateID,
			&result.eventType,
			&result.eventVersion,
			&result.occurredAt,
			&result.payload,
			&result.metadata,
			&result.globalPosition,
		)

		if rowScanErr != nil {
			if es.logger != nil {
				es.logger.Error(logMsgScanRowFailed, logAttrError, rowScanErr.Error())
			}

			return empty, errors.Join(eventstore.ErrScanningDBRowFailed, rowScanErr)
		}

		event, buildStorableErr := es.storableEventFromRow(result)
		if buildStorableErr != nil {
			if es.logger != nil {
				es.logger.Error(logMsgBuildStorableEventFailed, logAttrError, buildStorableErr.Error(), logAttrEventType, result.eventType)
			}

			return empty, errors.Join(eventstore.ErrBuildingStorableEventFailed, buildStorableErr)
		}

		eventStream = append(eventStream, event)
	}

	return eventStream, nil
}

func (es EventStore) storableEventFromRow(row queryResultRow) (eventstore.StorableEvent, error) {
	aggregateID, parseErr := uuid.Parse(row.aggregateID)
	if parseErr != nil {
		return eventstore.StorableEvent{}, parseErr
	}

	event, buildErr := eventstore.BuildStorableEvent(aggregateID, row.eventType, row.occurredAt, row.payload, row.metadata)
	if buildErr != nil {
		return eventstore.StorableEvent{}, buildErr
	}

	event.EventVersion = row.eventVersion
	event.GlobalPosition = row.globalPosition

	return event, nil
}

// buildAppendQuery builds the appropriate SQL query for single or multiple events.
func (es EventStore) buildAppendQuery(
	aggregateID uuid.UUID,
	expectedVersion uint,
	events eventstore.StorableEvents,
) (sqlQueryString, error) {

	var sqlQuery sqlQueryString
	var buildQueryErr error

	switch len(events) {
	case 1:
		sqlQuery, buildQueryErr = es.buildInsertQueryForSingleEvent(aggregateID, expectedVersion, events[0])

	default:
		sqlQuery, buildQueryErr = es.buildInsertQueryForMultipleEvents(aggregateID, expectedVersion, events)
	}

	if buildQueryErr != nil {
		if es.logger != nil {
			es.logger.Error(logMsgBuildInsertQueryFailed, logAttrError, buildQueryErr.Error(), logAttrEventCount, len(events))
		}

		return "", errors.Join(eventstore.ErrBuildingQueryFailed, buildQueryErr)
	}

	return sqlQuery, nil
}

// executeAppendQuery executes the SQL append query and returns rows affected and duration.
func (es EventStore) executeAppendQuery(ctx context.Context, sqlQuery string) (
	rowsAffectedInt64,
	queryDuration,
	error,
) {

	start := time.Now()
	tag, execErr := es.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	es.logQueryWithDuration(sqlQuery, logActionAppend, duration)

	if execErr != nil {
		if es.logger != nil {
			es.logger.Error(logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		}

		return 0, duration, errors.Join(eventstore.ErrAppendingEventFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := tag.RowsAffected()
	if rowsAffectedErr != nil {
		if es.logger != nil {
			es.logger.Error(logMsgRowsAffectedFailed, logAttrError, rowsAffectedErr.Error())
		}

		return 0, duration, errors.Join(eventstore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, duration, nil
}

// validateAppendResult checks if the append operation was successful and builds the
// typed concurrency error with the actual stored version on conflict.
func (es EventStore) validateAppendResult(
	ctx context.Context,
	rowsAffected int64,
	aggregateID uuid.UUID,
	expectedVersion uint,
	expectedEventCount int,
) error {

	if rowsAffected >= int64(expectedEventCount) {
		return nil
	}

	actualVersion, readErr := es.readMaxVersion(ctx, aggregateID)
	if readErr != nil {
		if es.logger != nil {
			es.logger.Warn(logMsgReadActualVersionFailed, logAttrError, readErr.Error())
		}
	}

	es.logOperation(
		logMsgConcurrencyConflict,
		logAttrAggregateID, aggregateID.String(),
		logAttrExpectedEvents, expectedEventCount,
		logAttrRowsAffected, rowsAffected,
		logAttrExpectedVersion, expectedVersion,
		logAttrActualVersion, actualVersion,
	)

	concurrencyErr := eventstore.ConcurrencyError{
		AggregateID: aggregateID,
		Expected:    expectedVersion,
		Actual:      actualVersion,
	}

	// A failed follow-up read leaves Actual at 0, which would misreport the
	// stream as empty, so the read error travels with the conflict.
	if readErr != nil {
		return errors.Join(concurrencyErr, readErr)
	}

	return concurrencyErr
}

// readMaxVersion reads the highest stored version for the aggregate (0 if none).
func (es EventStore) readMaxVersion(ctx context.Context, aggregateID uuid.UUID) (uint, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(goqu.COALESCE(goqu.MAX(colEventVersion), 0).As(aliasMaxVersion)).
		Where(goqu.C(colAggregateID).Eq(aggregateID.String()))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return 0, errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, _, queryErr := es.executeQuery(ctx, sqlQuery)
	if queryErr != nil {
		return 0, queryErr
	}
	defer es.closeRows(rows)

	var maxVersion uint
	if rows.Next() {
		if scanErr := rows.Scan(&maxVersion); scanErr != nil {
			return 0, errors.Join(eventstore.ErrScanningDBRowFailed, scanErr)
		}
	}

	return maxVersion, nil
}

// maxVersionCTE builds the CTE resolving the aggregate's current max version.
func (es EventStore) maxVersionCTE(aggregateID uuid.UUID) *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(goqu.COALESCE(goqu.MAX(colEventVersion), 0).As(aliasMaxVersion)).
		Where(goqu.C(colAggregateID).Eq(aggregateID.String()))
}

func (es EventStore) buildInsertQueryForSingleEvent(
	aggregateID uuid.UUID,
	expectedVersion uint,
	event eventstore.StorableEvent,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	// Define the SELECT for the INSERT, guarded by the expected version check
	selectStmt := builder.
		From(cteContext).
		Select(
			goqu.V(aggregateID.String()),
			goqu.V(event.EventType),
			goqu.V(expectedVersion+1),
			goqu.V(event.OccurredAt),
			goqu.V(event.PayloadJSON),
			goqu.V(event.MetadataJSON),
		).
		Where(goqu.C(aliasMaxVersion).Eq(goqu.V(expectedVersion)))

	// Finalize the full INSERT query
	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colAggregateID, colEventType, colEventVersion, colOccurredAt, colPayload, colMetadata).
		FromQuery(selectStmt).
		With(cteContext, es.maxVersionCTE(aggregateID))

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", toSQLErr
	}

	return sqlQuery, nil
}

func (es EventStore) buildInsertQueryForMultipleEvents(
	aggregateID uuid.UUID,
	expectedVersion uint,
	events eventstore.StorableEvents,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	// Create individual SELECT statements for each event, with explicit casts
	// so the UNION ALL rows keep their column types
	unionStatements := make([]*goqu.SelectDataset, len(events))
	for i, event := range events {
		unionStatements[i] = builder.
			Select(
				goqu.L(castUUID, aggregateID.String()).As(colAggregateID),
				goqu.L(castText, event.EventType).As(colEventType),
				goqu.L(castBigint, expectedVersion+uint(i)+1).As(colEventVersion),
				goqu.L(castTimestamp, event.OccurredAt).As(colOccurredAt),
				goqu.L(castJsonb, event.PayloadJSON).As(colPayload),
				goqu.L(castJsonb, event.MetadataJSON).As(colMetadata),
			)
	}

	// Combine all SELECT statements with UNION ALL
	valuesStmt := unionStatements[0]
	for i := 1; i < len(unionStatements); i++ {
		valuesStmt = valuesStmt.UnionAll(unionStatements[i])
	}

	// Finalize the full INSERT query
	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colAggregateID, colEventType, colEventVersion, colOccurredAt, colPayload, colMetadata).
		With(cteContext, es.maxVersionCTE(aggregateID)).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(
					cteVals+"."+colAggregateID,
					cteVals+"."+colEventType,
					cteVals+"."+colEventVersion,
					cteVals+"."+colOccurredAt,
					cteVals+"."+colPayload,
					cteVals+"."+colMetadata,
				).
				Where(goqu.C(aliasMaxVersion).Eq(goqu.V(expectedVersion))),
		)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", toSQLErr
	}

	return sqlQuery, nil
}

// logQueryWithDuration logs SQL queries with execution time at debug level if the logger is configured.
func (es EventStore) logQueryWithDuration(
	sqlQuery string,
	action string,
	duration time.Duration,
) {

	if es.logger != nil {
		es.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, es.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if the logger is configured.
func (es EventStore) logOperation(action string, args ...any) {
	if es.logger != nil {
		es.logger.Info(logMsgOperation+action, args...)
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (es EventStore) durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
