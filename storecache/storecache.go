// Package storecache implements the cache repository against Redis via
// go-redis/v9. Each write takes its TTL from the caller; the fixed TTLs for
// the cities, upstream-metadata, and per-entity-fetch buckets live in
// config.Config.CacheTTLFor.
package storecache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the concrete CacheRepository backed by a Redis client.
type Cache struct {
	client *redis.Client
}

// New wraps an existing redis.Client.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// NewFromConfig builds a redis.Client from the REDIS_* options.
func NewFromConfig(host string, port int, password string) *Cache {
	return &Cache{client: redis.NewClient(&redis.Options{
		Addr:     hostPort(host, port),
		Password: password,
	})}
}

func hostPort(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

// Get returns the value and whether it was present (redis.Nil maps to
// found=false, not an error).
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set stores value under key with the given TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a single key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// DeleteByPattern scans and deletes every key matching pattern, used by the
// ingestion worker to invalidate the cities cache bucket.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Exists reports whether key is present.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

// MGet fetches several keys at once, omitting any that were missing.
func (c *Cache) MGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(keys))
	for i, v := range vals {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			out[keys[i]] = []byte(s)
		}
	}
	return out, nil
}

// MSet stores several keys at once under the same TTL, via a pipeline so
// the round trips are batched.
func (c *Cache) MSet(ctx context.Context, values map[string][]byte, ttl time.Duration) error {
	pipe := c.client.Pipeline()
	for k, v := range values {
		pipe.Set(ctx, k, v, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}
