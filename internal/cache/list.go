package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	// listCachePrefix is the Redis key prefix for cached list responses.
	listCachePrefix = "cache:list:"
	// listCacheTTL bounds staleness of cached list reads.
	listCacheTTL = 60 * time.Second
)

// listKey builds the cache key for an entity list scoped to one caller.
// Lists are ownership-scoped, so entries are never shared across users.
func listKey(entity string, userID int64) string {
	return fmt.Sprintf("%s%s:u%d", listCachePrefix, entity, userID)
}

// GetList retrieves a cached list payload. Returns nil on a miss;
// a miss and a store error are indistinguishable on purpose.
func (c *Cache) GetList(ctx context.Context, entity string, userID int64) []byte {
	data, err := c.client.Get(ctx, listKey(entity, userID)).Bytes()
	if err != nil {
		return nil
	}
	return data
}

// SetList caches a serialized list payload for one caller.
func (c *Cache) SetList(ctx context.Context, entity string, userID int64, data []byte) error {
	return c.client.Set(ctx, listKey(entity, userID), data, listCacheTTL).Err()
}

// InvalidateList drops the cached list for one caller. Called after any
// mutation of that entity type; other callers' entries age out via TTL.
func (c *Cache) InvalidateList(ctx context.Context, entity string, userID int64) error {
	return c.client.Del(ctx, listKey(entity, userID)).Err()
}
