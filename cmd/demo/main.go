// Command demo wires the full stack together against a local Postgres and
// Redis: event store, snapshot store, outbox with poller, and the command
// and query handlers. It runs a short user lifecycle and prints the results.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/eventfold/aggregatestore-go/config"
	"github.com/eventfold/aggregatestore-go/eventstore/postgresengine"
	"github.com/eventfold/aggregatestore-go/outbox"
	"github.com/eventfold/aggregatestore-go/pgtx"
	"github.com/eventfold/aggregatestore-go/user/core"
	"github.com/eventfold/aggregatestore-go/user/features/command/createuser"
	"github.com/eventfold/aggregatestore-go/user/features/command/deleteuser"
	"github.com/eventfold/aggregatestore-go/user/features/command/updateuser"
	"github.com/eventfold/aggregatestore-go/user/features/query/listusers"
	"github.com/eventfold/aggregatestore-go/user/features/query/userhistory"
	"github.com/eventfold/aggregatestore-go/user/shell"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.NewWithConfig(ctx, config.PostgresPGXPoolConfig())
	if err != nil {
		logger.Error("connecting to postgres failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(config.RedisOptions())
	defer func() { _ = redisClient.Close() }()

	eventStore, err := postgresengine.NewEventStoreFromPGXPool(pool, postgresengine.WithLogger(logger))
	if err != nil {
		logger.Error("creating event store failed", "error", err)
		os.Exit(1)
	}

	snapshots := shell.NewPostgresSnapshotStore(pool)
	users := shell.NewUserRepository(eventStore, snapshots)

	unitOfWork, err := pgtx.NewRunner(pool)
	if err != nil {
		logger.Error("creating transaction runner failed", "error", err)
		os.Exit(1)
	}
	outboxStore := outbox.NewPostgresStore(pool)

	poller := outbox.NewPoller(
		outboxStore,
		outbox.DelivererFunc(func(_ context.Context, entry outbox.Entry) error {
			logger.Info("outbox entry delivered",
				"channel", entry.EventType,
				"payload", string(entry.Payload))

			return nil
		}),
		outbox.WithPollInterval(500*time.Millisecond),
		outbox.WithBatchSize(100),
		outbox.WithPollerLogger(logger),
	)
	go poller.Run(ctx)

	createHandler := createuser.NewCommandHandler(unitOfWork, users, outboxStore,
		createuser.WithRetryOptions(shell.WithMaxAttempts(3)))
	updateHandler := updateuser.NewCommandHandler(unitOfWork, users, outboxStore,
		updateuser.WithRetryOptions(shell.WithMaxAttempts(3)))
	deleteHandler := deleteuser.NewCommandHandler(unitOfWork, users, outboxStore)

	listHandler := listusers.NewQueryHandler(users,
		listusers.WithCache(shell.NewRedisCache(redisClient)))
	historyHandler := userhistory.NewQueryHandler(users)

	admin := core.BuildActor(uuid.New(), "Admin", "admin@example.com")

	created, err := createHandler.Handle(ctx,
		createuser.BuildCommand("ann@example.com", "Ann", admin, time.Now()))
	if err != nil {
		logger.Error("creating user failed", "error", err)
		os.Exit(1)
	}
	logger.Info("user created", "userID", created.ID.String(), "version", created.Version)

	newName := "Anna"
	updated, err := updateHandler.Handle(ctx,
		updateuser.BuildCommand(created.ID, nil, &newName, admin, time.Now()))
	if err != nil {
		logger.Error("updating user failed", "error", err)
		os.Exit(1)
	}
	logger.Info("user updated", "userID", updated.ID.String(), "version", updated.Version)

	list, err := listHandler.Handle(ctx, listusers.BuildQuery(1, 10))
	if err != nil {
		logger.Error("listing users failed", "error", err)
		os.Exit(1)
	}
	logger.Info("users listed", "count", len(list.Users), "totalCount", list.TotalCount)

	history, err := historyHandler.Handle(ctx, userhistory.BuildQuery(created.ID))
	if err != nil {
		logger.Error("loading user history failed", "error", err)
		os.Exit(1)
	}
	logger.Info("user history loaded", "userID", created.ID.String(), "events", len(history.Entries))

	deleted, err := deleteHandler.Handle(ctx,
		deleteuser.BuildCommand(created.ID, admin, time.Now()))
	if err != nil {
		logger.Error("deleting user failed", "error", err)
		os.Exit(1)
	}
	logger.Info("user deleted", "userID", deleted.ID.String(), "version", deleted.Version)

	// Give the poller a moment to drain the outbox before shutting down.
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
	}
}
