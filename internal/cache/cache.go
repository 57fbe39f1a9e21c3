package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is the read-cache abstraction used for product snapshots. It allows
// swapping between the in-memory cache (development) and Redis (production)
// without changing business logic.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// GetOrSet retrieves a value or computes and stores it if missing.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error)

	// Close releases cache resources.
	Close() error
}

// CacheError is a typed string error.
type CacheError string

func (e CacheError) Error() string { return string(e) }

// ErrCacheMiss indicates the key was not found in cache.
const ErrCacheMiss CacheError = "cache miss"

// ProductKey is the cache key for a product snapshot. Invalidated on every
// stock mutation.
func ProductKey(productID int64) string {
	return fmt.Sprintf("product:%d", productID)
}
