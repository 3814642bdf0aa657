package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSeen(t *testing.T) {
	cache := NewMemoryCache(time.Hour)

	seen, err := cache.Seen(context.Background(), "wamid.1")
	require.NoError(t, err)
	assert.False(t, seen, "first sighting")

	seen, err = cache.Seen(context.Background(), "wamid.1")
	require.NoError(t, err)
	assert.True(t, seen, "second sighting")

	seen, err = cache.Seen(context.Background(), "wamid.2")
	require.NoError(t, err)
	assert.False(t, seen, "different id is independent")
}

func TestMemoryCacheForget(t *testing.T) {
	cache := NewMemoryCache(time.Hour)

	_, err := cache.Seen(context.Background(), "wamid.1")
	require.NoError(t, err)
	require.NoError(t, cache.Forget(context.Background(), "wamid.1"))

	seen, err := cache.Seen(context.Background(), "wamid.1")
	require.NoError(t, err)
	assert.False(t, seen, "a released claim can be claimed again")
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache(time.Nanosecond)

	_, err := cache.Seen(context.Background(), "wamid.1")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	seen, err := cache.Seen(context.Background(), "wamid.1")
	require.NoError(t, err)
	assert.False(t, seen, "expired entries are forgotten")
}
