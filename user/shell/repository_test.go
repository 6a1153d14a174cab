package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventfold/aggregatestore-go/aggregate"
	"github.com/eventfold/aggregatestore-go/eventstore"
	"github.com/eventfold/aggregatestore-go/eventstore/memoryengine"
	"github.com/eventfold/aggregatestore-go/user/core"
	"github.com/eventfold/aggregatestore-go/user/shell"
)

func Test_Repository_SaveAndFindByID(t *testing.T) {
	// arrange
	repo, _, _ := givenRepository()
	ctx := context.Background()
	user := givenCreatedUser(t, "ann@example.com", "Ann")

	// act
	require.NoError(t, repo.Save(ctx, user))

	// assert
	assert.Empty(t, user.UncommittedEvents())

	found, err := repo.FindByID(ctx, user.AggregateID())
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", found.Email())
	assert.Equal(t, "Ann", found.Name())
	assert.Equal(t, uint(1), found.Version())
}

func Test_Repository_SaveWithMetadata_StampsGivenMetadataOnEvents(t *testing.T) {
	// arrange
	repo, events, _ := givenRepository()
	ctx := context.Background()
	user := givenCreatedUser(t, "ann@example.com", "Ann")
	metadata := shell.BuildEventMetadata(uuid.New(), uuid.New(), uuid.New())

	// act
	require.NoError(t, repo.SaveWithMetadata(ctx, user, metadata))

	// assert
	stored, err := events.GetEvents(ctx, user.AggregateID(), 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	got, err := shell.EventMetadataFrom(stored[0])
	require.NoError(t, err)
	assert.Equal(t, metadata.MessageID, got.MessageID)
	assert.Equal(t, metadata.CausationID, got.CausationID)
	assert.Equal(t, metadata.CorrelationID, got.CorrelationID)
}

func Test_Repository_Save_WithoutUncommittedEvents_IsNoOp(t *testing.T) {
	// arrange
	repo, events, _ := givenRepository()
	ctx := context.Background()
	user := givenCreatedUser(t, "ann@example.com", "Ann")
	require.NoError(t, repo.Save(ctx, user))

	// act
	require.NoError(t, repo.Save(ctx, user))

	// assert
	stored, err := events.GetEvents(ctx, user.AggregateID(), 0)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func Test_Repository_FindByID_UnknownUser_YieldsNotFound(t *testing.T) {
	// arrange
	repo, _, _ := givenRepository()

	// act
	_, err := repo.FindByID(context.Background(), uuid.New())

	// assert
	assert.True(t, errors.Is(err, aggregate.ErrNotFound))
}

func Test_Repository_Save_DuplicateEmail_YieldsConflict(t *testing.T) {
	// arrange
	repo, _, _ := givenRepository()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, givenCreatedUser(t, "ann@example.com", "Ann")))

	// act
	err := repo.Save(ctx, givenCreatedUser(t, "ann@example.com", "Other Ann"))

	// assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, aggregate.ErrConflict))

	var conflict aggregate.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "email", conflict.Key)
	assert.Equal(t, "ann@example.com", conflict.Value)
}

func Test_Repository_SoftDelete_FreesEmailAndHidesUser(t *testing.T) {
	// arrange
	repo, _, _ := givenRepository()
	ctx := context.Background()
	user := givenCreatedUser(t, "ann@example.com", "Ann")
	require.NoError(t, repo.Save(ctx, user))

	require.NoError(t, user.Delete(nil, time.Now()))
	require.NoError(t, repo.Save(ctx, user))

	// assert - the user is gone from lookups
	_, findErr := repo.FindByID(ctx, user.AggregateID())
	assert.True(t, errors.Is(findErr, aggregate.ErrNotFound))

	_, emailErr := repo.FindByEmail(ctx, "ann@example.com")
	assert.True(t, errors.Is(emailErr, aggregate.ErrNotFound))

	// act - the email is reusable by a new user
	successor := givenCreatedUser(t, "ann@example.com", "New Ann")
	assert.NoError(t, repo.Save(ctx, successor))
}

func Test_Repository_Save_StaleAggregate_YieldsConcurrencyConflict(t *testing.T) {
	// arrange - two replicas of the same aggregate at version 1
	repo, _, _ := givenRepository()
	ctx := context.Background()
	user := givenCreatedUser(t, "ann@example.com", "Ann")
	require.NoError(t, repo.Save(ctx, user))

	first, err := repo.FindByID(ctx, user.AggregateID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, user.AggregateID())
	require.NoError(t, err)

	require.NoError(t, first.UpdateName("Anna", nil, time.Now()))
	require.NoError(t, repo.Save(ctx, first))

	// act - the second replica writes on top of a stale version
	require.NoError(t, second.UpdateName("Annette", nil, time.Now()))
	saveErr := repo.Save(ctx, second)

	// assert
	require.Error(t, saveErr)
	assert.True(t, errors.Is(saveErr, eventstore.ErrConcurrencyConflict))

	var conflict eventstore.ConcurrencyError
	require.True(t, errors.As(saveErr, &conflict))
	assert.Equal(t, uint(1), conflict.Expected)
	assert.Equal(t, uint(2), conflict.Actual)
}

func Test_Repository_GetHistory_ReturnsAllEventsInOrder(t *testing.T) {
	// arrange
	repo, _, _ := givenRepository()
	ctx := context.Background()
	user := givenCreatedUser(t, "ann@example.com", "Ann")
	require.NoError(t, user.UpdateName("Anna", nil, time.Now()))
	require.NoError(t, user.Delete(nil, time.Now()))
	require.NoError(t, repo.Save(ctx, user))

	// act
	history, err := repo.GetHistory(ctx, user.AggregateID())

	// assert
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, core.UserCreatedEventType, history[0].EventType)
	assert.Equal(t, core.UserUpdatedEventType, history[1].EventType)
	assert.Equal(t, core.UserDeletedEventType, history[2].EventType)
	assert.Equal(t, uint(1), history[0].Version)
	assert.Equal(t, uint(3), history[2].Version)
	assert.NotEmpty(t, history[0].Metadata)
}

func Test_Repository_GetHistory_UnknownUser_YieldsNotFound(t *testing.T) {
	// arrange
	repo, _, _ := givenRepository()

	// act
	_, err := repo.GetHistory(context.Background(), uuid.New())

	// assert
	assert.True(t, errors.Is(err, aggregate.ErrNotFound))
}

func Test_Repository_GetAtVersion_ReconstructsEarlierState(t *testing.T) {
	// arrange - Ann is renamed to Anna and then deleted
	repo, _, _ := givenRepository()
	ctx := context.Background()
	user := givenCreatedUser(t, "ann@example.com", "Ann")
	require.NoError(t, user.UpdateName("Anna", nil, time.Now()))
	require.NoError(t, user.Delete(nil, time.Now()))
	require.NoError(t, repo.Save(ctx, user))

	// act
	atOne, err := repo.GetAtVersion(ctx, user.AggregateID(), 1)
	require.NoError(t, err)
	atTwo, err := repo.GetAtVersion(ctx, user.AggregateID(), 2)
	require.NoError(t, err)

	// assert
	assert.Equal(t, "Ann", atOne.Name())
	assert.False(t, atOne.IsDeleted())
	assert.Equal(t, "Anna", atTwo.Name())
	assert.False(t, atTwo.IsDeleted())
}

func Test_Repository_GetAtVersion_BeforeFirstEvent_YieldsNotFound(t *testing.T) {
	// arrange
	repo, _, _ := givenRepository()
	ctx := context.Background()
	user := givenCreatedUser(t, "ann@example.com", "Ann")
	require.NoError(t, repo.Save(ctx, user))

	// act
	_, err := repo.GetAtVersion(ctx, user.AggregateID(), 0)

	// assert
	assert.True(t, errors.Is(err, aggregate.ErrNotFound))
}

func Test_Repository_FindByID_FallsBackToSnapshotWithoutEvents(t *testing.T) {
	// arrange - a snapshot row without any events, as left behind by an import
	repo, _, snapshots := givenRepository()
	ctx := context.Background()
	state := core.UserState{
		ID:        uuid.New(),
		Email:     "legacy@example.com",
		Name:      "Legacy",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Version:   1,
	}
	require.NoError(t, snapshots.Upsert(ctx, state))

	// act
	found, err := repo.FindByID(ctx, state.ID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "legacy@example.com", found.Email())
	assert.Equal(t, uint(1), found.Version())
}

func Test_Repository_FindMany_PaginatesNewestFirst(t *testing.T) {
	// arrange
	repo, _, _ := givenRepository()
	ctx := context.Background()

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	base := time.Now().Add(-time.Hour)
	for i, email := range emails {
		user, err := core.CreateUser(email, "User", nil, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, user))
	}

	// act
	firstPage, total, err := repo.FindMany(ctx, 1, 2)
	require.NoError(t, err)
	secondPage, _, err := repo.FindMany(ctx, 2, 2)
	require.NoError(t, err)

	// assert - newest created first
	assert.Equal(t, 3, total)
	require.Len(t, firstPage, 2)
	require.Len(t, secondPage, 1)
	assert.Equal(t, "c@example.com", firstPage[0].Email)
	assert.Equal(t, "b@example.com", firstPage[1].Email)
	assert.Equal(t, "a@example.com", secondPage[0].Email)
}

func Test_Repository_FindMany_ClampsPageAndPageSize(t *testing.T) {
	// arrange
	repo, _, _ := givenRepository()
	ctx := context.Background()
	user := givenCreatedUser(t, "ann@example.com", "Ann")
	require.NoError(t, repo.Save(ctx, user))

	// act - nonsense paging input falls back to sane values
	states, total, err := repo.FindMany(ctx, -3, 0)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, states, 1)
}

func givenRepository() (*shell.UserRepository, *memoryengine.EventStore, *shell.MemorySnapshotStore) {
	events := memoryengine.NewEventStore()
	snapshots := shell.NewMemorySnapshotStore()

	return shell.NewUserRepository(events, snapshots), events, snapshots
}

func givenCreatedUser(t *testing.T, email string, name string) *core.User {
	t.Helper()

	user, err := core.CreateUser(email, name, nil, time.Now())
	require.NoError(t, err)

	return user
}
