package mocks

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"
)

// MemoryCache is an in-memory implementation of the service.Cache interface.
// It stores marshaled values keyed by string, supports glob pattern deletion,
// and can be switched into a failing mode to exercise cache-degradation paths.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte

	// FailAll makes every operation return FailErr, simulating an
	// unavailable cache.
	FailAll bool
	FailErr error

	// Call counters
	GetCalls    int
	SetCalls    int
	DeleteCalls int
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

// Get implements service.Cache.Get
func (c *MemoryCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.GetCalls++
	if c.FailAll {
		return false, c.FailErr
	}

	data, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set implements service.Cache.Set
// TTL is ignored; tests control entry lifetime explicitly.
func (c *MemoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.SetCalls++
	if c.FailAll {
		return c.FailErr
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

// Delete implements service.Cache.Delete
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.DeleteCalls++
	if c.FailAll {
		return c.FailErr
	}

	delete(c.entries, key)
	return nil
}

// DeletePattern implements service.Cache.DeletePattern
func (c *MemoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.DeleteCalls++
	if c.FailAll {
		return c.FailErr
	}

	for key := range c.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.entries, key)
		}
	}
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
