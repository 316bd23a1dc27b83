package clients

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCache(rdb, time.Minute)
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	miss, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, miss)

	client := &Client{ID: 1, InstagramID: "ig_1", Name: "Anna", Status: "new"}
	require.NoError(t, cache.Set(ctx, client))

	got, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Anna", got.Name)

	require.NoError(t, cache.Invalidate(ctx, 1))
	gone, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestCachedRepositoryReadThrough(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	repo := NewCachedRepository(NewInMemoryRepository(), cache)

	created, _, err := repo.GetOrCreate(ctx, "ig_9", "Vika")
	require.NoError(t, err)

	// Entry is cached after the upsert.
	cached, err := cache.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "Vika", cached.Name)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestCachedRepositorySetStatusInvalidates(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	repo := NewCachedRepository(NewInMemoryRepository(), cache)

	created, _, err := repo.GetOrCreate(ctx, "ig_9", "Vika")
	require.NoError(t, err)

	require.NoError(t, repo.SetStatus(ctx, created.ID, "lead"))
	stale, err := cache.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, stale, "status change must drop the cached profile")

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "lead", got.Status)
}
