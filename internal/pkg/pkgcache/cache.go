package pkgcache

import (
	"context"
	"io"
	"time"
)

// Cache stores serialized responses for a bounded time.
//
// Both operations are best effort. Get treats every backend error as a miss
// and Set swallows write failures, so a broken cache degrades to fetching
// from the upstream API instead of failing the request.
type Cache interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Get returns the cached value for key, or ok=false on a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool)

	// Set stores value under key for ttl. Non-positive ttl values disable
	// the write.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	io.Closer
}
