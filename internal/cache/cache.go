// Package cache provides the read-model cache for conversation views
// and the shared TTL cache used by the auto-reply engine. A miss is
// always safe: callers fall through to the store.
package cache

import (
	"context"
	"time"
)

// Cache is the backing-store agnostic interface. Implementations must
// be safe for concurrent use and must degrade (miss / no-op) instead of
// surfacing backend failures to callers.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool)

	// SetWithTTL stores a value that expires after ttl.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Delete removes a single key.
	Delete(ctx context.Context, key string)

	// DeleteByPrefix removes every key starting with prefix. Needed
	// because pagination parameters are embedded in keys.
	DeleteByPrefix(ctx context.Context, prefix string)

	// Close releases background resources (sweep goroutines, pools).
	Close() error
}
