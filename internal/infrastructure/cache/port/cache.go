package port

import (
	"context"
	"time"
)

// Cache defines the minimal contract for a key-value cache used by the application.
// Implementations should be concurrency-safe.
// All methods must be context-aware to allow caller-driven timeouts/cancellation.
//
// Note: Values are stored as strings to keep the port generic and avoid coupling
// to serialization concerns. Adapters may add helper methods in their own packages
// if needed, but this is the stable port exposed to the rest of the app.
type Cache interface {
	// Get fetches the value for key. Misses are reported as ("", ErrMiss);
	// any other non-nil error means a transport or server error.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key with the provided TTL. Zero or negative TTL means
	// no expiration (persist until evicted).
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes one or more keys and returns the number of keys removed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// DelIfEquals removes key only if its current value equals value, as one
	// atomic step, and reports whether it was removed. A missing key or a
	// different value is (false, nil), not an error.
	DelIfEquals(ctx context.Context, key, value string) (bool, error)

	// Incr atomically increments the integer value at key and returns the new
	// value. A missing key counts as zero.
	Incr(ctx context.Context, key string) (int64, error)

	// Scan returns all keys matching the glob-style pattern.
	Scan(ctx context.Context, pattern string) ([]string, error)

	// MGet fetches values for the given keys. Missing or expired keys are
	// simply absent from the result map.
	MGet(ctx context.Context, keys ...string) (map[string]string, error)

	// Ping verifies connectivity with the cache backend.
	Ping(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// ErrMiss should be used by adapters to signal a cache miss in a typed way.
// This allows callers to differentiate misses from transport errors if desired.
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
