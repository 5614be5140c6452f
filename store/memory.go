package store

import (
	"context"
	"sync"
	"time"

	"github.com/legit-games/oidc-core"
)

type memoryEntry struct {
	blob      []byte
	expiresAt time.Time
}

// MemoryCodeCache is the in-process single-use code cache. Suitable for a
// single-pod deployment and for tests; multi-pod deployments want the valkey
// or gorm variants so redemption stays single-use across replicas.
type MemoryCodeCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	clock   oidc.Clock
}

// NewMemoryCodeCache creates an empty in-memory cache.
func NewMemoryCodeCache() *MemoryCodeCache {
	return NewMemoryCodeCacheWithClock(time.Now)
}

// NewMemoryCodeCacheWithClock creates a cache with an injectable clock.
func NewMemoryCodeCacheWithClock(clock oidc.Clock) *MemoryCodeCache {
	return &MemoryCodeCache{entries: map[string]memoryEntry{}, clock: clock}
}

// Put stores the blob under handle, replacing any prior entry.
func (c *MemoryCodeCache) Put(_ context.Context, handle string, blob []byte, expiresAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[handle] = memoryEntry{blob: append([]byte(nil), blob...), expiresAt: expiresAt}
	return nil
}

// Take removes and returns the entry under handle. The lookup and removal
// happen under one lock so only a single caller can win a given handle.
// Expired entries report absent.
func (c *MemoryCodeCache) Take(_ context.Context, handle string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[handle]
	if !ok {
		return nil, false
	}
	delete(c.entries, handle)
	if !e.expiresAt.After(c.clock()) {
		return nil, false
	}
	return e.blob, true
}

// Remove deletes the entry under handle. Missing entries are not an error.
func (c *MemoryCodeCache) Remove(_ context.Context, handle string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, handle)
	return nil
}
