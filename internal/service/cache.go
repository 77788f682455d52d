package service

import (
	"context"
	"time"
)

// Cache is the caching interface the services depend on. It is satisfied by
// the Redis-backed cache in internal/platform/cache and by in-memory fakes in
// tests.
//
// Every method is safe to skip on error: services treat a failing cache as a
// miss and serve from the persistent store, because cache entries are pure
// derived data.
type Cache interface {
	// Get retrieves a value and unmarshals it into dest.
	// Returns false on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes a single key.
	Delete(ctx context.Context, key string) error

	// DeletePattern removes all keys matching a glob pattern.
	DeletePattern(ctx context.Context, pattern string) error
}
