package outbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventfold/aggregatestore-go/outbox"
)

func Test_BuildEntry_AssignsIdentityAndStartsUnprocessed(t *testing.T) {
	// arrange
	createdAt := time.Now()

	// act
	entry := outbox.BuildEntry("user.created", []byte(`{"name":"Ann"}`), []byte(`{}`), createdAt)

	// assert
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, "user.created", entry.EventType)
	assert.False(t, entry.Processed)
	assert.Nil(t, entry.ProcessedAt)
	assert.Equal(t, createdAt, entry.CreatedAt)
}

func Test_MemoryStore_FindUnprocessed_ReturnsEntriesInCreationOrder(t *testing.T) {
	// arrange
	store := outbox.NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	second := outbox.BuildEntry("user.updated", []byte(`{}`), []byte(`{}`), now)
	first := outbox.BuildEntry("user.created", []byte(`{}`), []byte(`{}`), now.Add(-time.Minute))
	require.NoError(t, store.Save(ctx, second))
	require.NoError(t, store.Save(ctx, first))

	// act
	pending, err := store.FindUnprocessed(ctx, 0)

	// assert
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, second.ID, pending[1].ID)
}

func Test_MemoryStore_FindUnprocessed_HonorsLimit(t *testing.T) {
	// arrange
	store := outbox.NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		entry := outbox.BuildEntry("user.created", []byte(`{}`), []byte(`{}`),
			time.Now().Add(time.Duration(i)*time.Second))
		require.NoError(t, store.Save(ctx, entry))
	}

	// act
	pending, err := store.FindUnprocessed(ctx, 3)

	// assert
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}

func Test_MemoryStore_MarkProcessed_HidesEntryFromPolling(t *testing.T) {
	// arrange
	store := outbox.NewMemoryStore()
	ctx := context.Background()
	entry := outbox.BuildEntry("user.created", []byte(`{}`), []byte(`{}`), time.Now())
	require.NoError(t, store.Save(ctx, entry))

	// act
	require.NoError(t, store.MarkProcessed(ctx, entry.ID))

	// assert
	pending, err := store.FindUnprocessed(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// marking again or marking unknown entries stays silent
	assert.NoError(t, store.MarkProcessed(ctx, entry.ID))
	assert.NoError(t, store.MarkProcessed(ctx, uuid.New()))
}

func Test_MemoryStore_Checkpoint_RestoresEntries(t *testing.T) {
	// arrange
	store := outbox.NewMemoryStore()
	ctx := context.Background()
	restore := store.Checkpoint()

	entry := outbox.BuildEntry("user.created", []byte(`{}`), []byte(`{}`), time.Now())
	require.NoError(t, store.Save(ctx, entry))

	// act
	restore()

	// assert
	pending, err := store.FindUnprocessed(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
