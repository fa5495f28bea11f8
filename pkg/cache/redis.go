package cache

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/modelsketch/pkg/buildinfo"
	apperr "github.com/matzehuels/modelsketch/pkg/errors"
)

// RedisConfig configures a [RedisCache].
type RedisConfig struct {
	// URL is a redis:// or rediss:// connection string.
	URL string

	// Attempts is how often a network failure is tried before giving up.
	// Defaults to 3.
	Attempts int

	// Backoff is the delay before the first retry. Defaults to 100ms.
	Backoff time.Duration
}

// RedisCache stores entries in redis with native expiry.
type RedisCache struct {
	client   *redis.Client
	attempts int
	backoff  time.Duration
}

// NewRedisCache connects to redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	if err := apperr.ValidateRedisURL(cfg.URL); err != nil {
		return nil, err
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "parse redis URL")
	}
	if opts.ClientName == "" {
		opts.ClientName = buildinfo.UserAgent()
	}
	c := NewRedisCacheFromClient(redis.NewClient(opts))
	if cfg.Attempts > 0 {
		c.attempts = cfg.Attempts
	}
	if cfg.Backoff > 0 {
		c.backoff = cfg.Backoff
	}

	if err := c.client.Ping(ctx).Err(); err != nil {
		_ = c.client.Close()
		return nil, apperr.Wrap(apperr.ErrCodeCache, errors.Join(ErrUnavailable, err), "ping %s", opts.Addr)
	}
	return c, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, attempts: 3, backoff: 100 * time.Millisecond}
}

// Get retrieves a value from redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	hit := false
	err := c.retry(ctx, func() error {
		b, err := c.client.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			return nil
		case err != nil:
			return classify(err)
		}
		data, hit = b, true
		return nil
	})
	if err != nil {
		return nil, false, apperr.Wrap(apperr.ErrCodeCache, err, "redis get")
	}
	return data, hit, nil
}

// Set stores a value with the given ttl. A zero ttl never expires.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.retry(ctx, func() error {
		return classify(c.client.Set(ctx, key, data, ttl).Err())
	})
	if err != nil {
		return apperr.Wrap(apperr.ErrCodeCache, err, "redis set")
	}
	return nil
}

// Delete removes a key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	err := c.retry(ctx, func() error {
		return classify(c.client.Del(ctx, key).Err())
	})
	if err != nil {
		return apperr.Wrap(apperr.ErrCodeCache, err, "redis del")
	}
	return nil
}

// Close closes the client connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) retry(ctx context.Context, fn func() error) error {
	return RetryWithBackoff(ctx, c.attempts, c.backoff, fn)
}

// classify marks network failures as retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return Retryable(err)
	}
	return err
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
