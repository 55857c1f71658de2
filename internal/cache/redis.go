// Package cache holds the Redis-backed set of dedup keys known to be
// committed. It only ever short-circuits work that PostgreSQL already
// recorded; absence from the cache proves nothing.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL covers the processor's retry window with margin.
const DefaultTTL = 7 * 24 * time.Hour

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// RedisKeys records committed dedup keys with a TTL.
type RedisKeys struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisKeys creates a committed-key set. Keys are namespaced by prefix.
func NewRedisKeys(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisKeys {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisKeys{client: client, prefix: prefix, ttl: ttl}
}

// Contains reports whether key was previously added.
func (k *RedisKeys) Contains(ctx context.Context, key string) (bool, error) {
	n, err := k.client.Exists(ctx, k.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}

// Add marks key as committed. Call only after the store commit succeeded.
func (k *RedisKeys) Add(ctx context.Context, key string) error {
	if err := k.client.Set(ctx, k.prefix+key, "1", k.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Healthcheck returns a readiness probe for client.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis healthcheck: %w", err)
		}
		return nil
	}
}
