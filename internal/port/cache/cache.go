// Package cache defines the key-value cache store port. The backing store may
// be absent or unreachable at any time; callers that must degrade gracefully
// wrap it (see internal/resultcache).
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get for a missing or expired key.
var ErrNotFound = errors.New("cache: key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// DeleteByPrefix evicts every key with the given prefix and returns the
	// number of keys removed.
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)

	// Increment bumps a counter key, setting its expiry on first write.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
