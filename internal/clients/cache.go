package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps recently read client profiles in Redis so the chat view
// does not hit Postgres on every poll.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache creates a cache with the given TTL.
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("client:%d", id)
}

// Get returns the cached client, or nil on miss.
func (c *Cache) Get(ctx context.Context, id int64) (*Client, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("clients: cache get: %w", err)
	}
	var client Client
	if err := json.Unmarshal(raw, &client); err != nil {
		return nil, fmt.Errorf("clients: cache decode: %w", err)
	}
	return &client, nil
}

// Set stores the client under its ID.
func (c *Cache) Set(ctx context.Context, client *Client) error {
	raw, err := json.Marshal(client)
	if err != nil {
		return fmt.Errorf("clients: cache encode: %w", err)
	}
	if err := c.rdb.Set(ctx, cacheKey(client.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("clients: cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached entry.
func (c *Cache) Invalidate(ctx context.Context, id int64) error {
	if err := c.rdb.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("clients: cache invalidate: %w", err)
	}
	return nil
}

// CachedRepository decorates a Repository with the Redis cache. Reads by
// ID go through the cache; every mutation invalidates the entry. Cache
// failures degrade to the underlying repository.
type CachedRepository struct {
	Repository
	cache *Cache
}

// NewCachedRepository wraps repo with cache.
func NewCachedRepository(repo Repository, cache *Cache) *CachedRepository {
	return &CachedRepository{Repository: repo, cache: cache}
}

// GetByID serves from cache when possible.
func (r *CachedRepository) GetByID(ctx context.Context, id int64) (*Client, error) {
	if cached, err := r.cache.Get(ctx, id); err == nil && cached != nil {
		return cached, nil
	}
	client, err := r.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = r.cache.Set(ctx, client)
	return client, nil
}

// GetOrCreate mutates counters, so the entry is refreshed.
func (r *CachedRepository) GetOrCreate(ctx context.Context, instagramID, name string) (*Client, bool, error) {
	client, created, err := r.Repository.GetOrCreate(ctx, instagramID, name)
	if err != nil {
		return nil, false, err
	}
	_ = r.cache.Set(ctx, client)
	return client, created, nil
}

// Update writes through and refreshes the cache.
func (r *CachedRepository) Update(ctx context.Context, id int64, req *UpdateRequest) (*Client, error) {
	client, err := r.Repository.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	_ = r.cache.Set(ctx, client)
	return client, nil
}

// SetStatus invalidates the cached profile.
func (r *CachedRepository) SetStatus(ctx context.Context, id int64, status string) error {
	if err := r.Repository.SetStatus(ctx, id, status); err != nil {
		return err
	}
	_ = r.cache.Invalidate(ctx, id)
	return nil
}

// MarkLead invalidates the cached profile.
func (r *CachedRepository) MarkLead(ctx context.Context, id int64, name, phone string) error {
	if err := r.Repository.MarkLead(ctx, id, name, phone); err != nil {
		return err
	}
	_ = r.cache.Invalidate(ctx, id)
	return nil
}
