package cache

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis so several servers can share renders.
type RedisCache struct {
	client *redis.Client
	// retryDelay is the first backoff delay for transient failures.
	retryDelay time.Duration
}

// RedisOption configures a RedisCache.
type RedisOption func(*RedisCache)

// WithRetryDelay sets the first backoff delay (default 200ms).
func WithRetryDelay(d time.Duration) RedisOption {
	return func(c *RedisCache) { c.retryDelay = d }
}

// NewRedisCache connects to the Redis server at url
// (redis://[user:password@]host:port/db) and checks it responds.
func NewRedisCache(ctx context.Context, url string, opts ...RedisOption) (*RedisCache, error) {
	ropts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	c := &RedisCache{client: redis.NewClient(ropts), retryDelay: 200 * time.Millisecond}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		_ = c.client.Close()
		return nil, errors.Join(ErrBackend, err)
	}
	return c, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, opts ...RedisOption) *RedisCache {
	c := &RedisCache{client: client, retryDelay: 200 * time.Millisecond}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	hit := false
	err := c.retry(ctx, func() error {
		b, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		data, hit = b, true
		return nil
	})
	return data, hit, err
}

// Set stores a value in Redis. A zero ttl never expires.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.retry(ctx, func() error {
		return c.client.Set(ctx, key, data, ttl).Err()
	})
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.retry(ctx, func() error {
		return c.client.Del(ctx, key).Err()
	})
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// retry runs fn, retrying network failures with backoff.
func (c *RedisCache) retry(ctx context.Context, fn func() error) error {
	err := RetryWithBackoff(ctx, c.retryDelay, func() error {
		err := fn()
		if isTransient(err) {
			return Retryable(errors.Join(ErrBackend, err))
		}
		return err
	})
	var re *RetryableError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var ne net.Error
	return errors.As(err, &ne) || errors.Is(err, redis.ErrClosed)
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
