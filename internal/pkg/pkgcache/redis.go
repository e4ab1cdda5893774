package pkgcache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache backed by a Redis server, for deployments running several
// instances against the same videos.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the given Redis server and verifies the connection
// with a ping before returning.
func NewRedis(ctx context.Context, address, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Redis{client: client}, nil
}

// Name identifies the backend in logs and metrics.
func (r *Redis) Name() string {
	return "redis"
}

// Get returns the cached value for key. Every error, including a missing
// key, is treated as a miss so the caller falls through to the upstream API.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "redis get failed", "key", key, "error", err)
		}

		return nil, false
	}

	return value, true
}

// Set stores value under key for ttl. Write failures are logged and dropped.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.WarnContext(ctx, "redis set failed", "key", key, "error", err)
	}
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
