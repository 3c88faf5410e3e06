// Package cache memoizes provider responses in redis so repeated runs do
// not spend request quota on queries that were already answered.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache is a redis-backed memoization store. A nil *Cache is valid and
// disables caching.
type Cache struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// Options configures a redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// New connects to redis and verifies the connection.
func New(ctx context.Context, opts Options, logger *slog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}

	return NewWithClient(client, opts.Prefix, logger), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client redis.UniversalClient, prefix string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, prefix: prefix, logger: logger}
}

// Close releases the redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// Ping checks the redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Memoize returns the cached value for key, or calls fn and caches its
// result for ttl. Errors from fn are returned and never cached. Redis
// failures degrade to calling fn.
func Memoize[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	if c == nil {
		return fn()
	}

	var result T
	key = c.prefix + key

	cached, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(cached, &result); jsonErr == nil {
			return result, nil
		}
		c.logger.Debug("discarding undecodable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache read failed", "key", key, "error", err)
	}

	result, err = fn()
	if err != nil {
		return result, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "error", err)
		return result, nil
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}

	return result, nil
}
