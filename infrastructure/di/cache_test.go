package di

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCache_SetAndGet(t *testing.T) {
	cache := NewInMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "partner:bob", "profile", 60))

	value, ok := cache.Get(ctx, "partner:bob")
	require.True(t, ok)
	assert.Equal(t, "profile", value)

	_, ok = cache.Get(ctx, "partner:carol")
	assert.False(t, ok)
}

func TestInMemoryCache_ExpiredEntryReadsAsAbsent(t *testing.T) {
	cache := NewInMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "partner:bob", "profile", 0))
	time.Sleep(10 * time.Millisecond)

	_, ok := cache.Get(ctx, "partner:bob")
	assert.False(t, ok)
}

func TestInMemoryCache_DeleteAndClear(t *testing.T) {
	cache := NewInMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", 1, 60))
	require.NoError(t, cache.Set(ctx, "b", 2, 60))

	require.NoError(t, cache.Delete(ctx, "a"))
	_, ok := cache.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, cache.Clear(ctx))
	_, ok = cache.Get(ctx, "b")
	assert.False(t, ok)
}

func TestInMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewInMemoryCache()
	cache.Close()
	cache.Close()
}
