package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in a Redis instance, letting several processes
// share one artifact cache (e.g. the serve command behind a load balancer).
// Expiry is delegated to Redis TTLs.
type RedisCache struct {
	client *redis.Client
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	// Addr is the host:port of the Redis server.
	Addr string

	// Password is optional.
	Password string

	// DB selects the Redis database number.
	DB int
}

// NewRedisCache connects to Redis and verifies the connection with a ping.
func NewRedisCache(ctx context.Context, opts RedisOptions) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, Retryable(err)
	}
	return &RedisCache{client: client}, nil
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, Retryable(err)
	}
	return data, true, nil
}

// Set stores a value in Redis. A ttl of zero stores without expiry.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return Retryable(err)
	}
	return nil
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return Retryable(err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
