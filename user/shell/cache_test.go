package shell

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MemoryCache_SetAndGet(t *testing.T) {
	// arrange
	cache := NewMemoryCache()
	ctx := context.Background()

	// act
	require.NoError(t, cache.Set(ctx, "users:list:p1:s10", []byte(`{"count":1}`), time.Minute))

	value, found, err := cache.Get(ctx, "users:list:p1:s10")

	// assert
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"count":1}`, string(value))
}

func Test_MemoryCache_MissingKey(t *testing.T) {
	// arrange
	cache := NewMemoryCache()

	// act
	_, found, err := cache.Get(context.Background(), "unknown")

	// assert
	require.NoError(t, err)
	assert.False(t, found)
}

func Test_MemoryCache_EntriesExpireByTTL(t *testing.T) {
	// arrange
	now := time.Now()
	cache := NewMemoryCache()
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", []byte("value"), 30*time.Second))

	// act - move past the TTL
	now = now.Add(31 * time.Second)
	_, found, err := cache.Get(ctx, "key")

	// assert
	require.NoError(t, err)
	assert.False(t, found)
}

func Test_MemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	// arrange
	now := time.Now()
	cache := NewMemoryCache()
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", []byte("value"), 0))

	// act
	now = now.Add(24 * time.Hour)
	_, found, err := cache.Get(ctx, "key")

	// assert
	require.NoError(t, err)
	assert.True(t, found)
}

func Test_MemoryCache_DeleteRemovesKey(t *testing.T) {
	// arrange
	cache := NewMemoryCache()
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "key", []byte("value"), time.Minute))

	// act
	require.NoError(t, cache.Delete(ctx, "key"))
	require.NoError(t, cache.Delete(ctx, "key"))

	// assert
	_, found, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)
}
