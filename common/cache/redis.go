package cache

import (
	"context"
	"errors"
	"time"

	rediscommon "github.com/resiflow/manifest/common/redis"
)

// RedisCache is a Redis-backed cache implementation
type RedisCache struct {
	client *rediscommon.Client
	prefix string
}

// NewRedisCache creates a cache backed by the shared Redis client.
// All keys are namespaced with the given prefix.
func NewRedisCache(client *rediscommon.Client, prefix string) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
	}
}

// Get retrieves a value from cache
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, c.prefix+key)
	if errors.Is(err, rediscommon.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set stores a value in cache with TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.SetWithExpiry(ctx, c.prefix+key, value, ttl)
}

// Delete removes a value from cache
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Delete(ctx, c.prefix+key)
}

// Close closes the cache. The underlying client is shared and closed by its owner.
func (c *RedisCache) Close() error {
	return nil
}
