// Package cache provides a small process-local TTL cache used as the first
// tier of the restaurant read path. The clock is injected so tests can force
// expiry deterministically.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// TTLCache is a concurrency-safe map with per-entry expiry. Concurrent misses
// for the same key may both fetch and populate; entries are replaceable
// wholesale, so last write wins is acceptable.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// New creates a cache with the given TTL. A nil clock defaults to time.Now.
func New(ttl time.Duration, clock func() time.Time) *TTLCache {
	if clock == nil {
		clock = time.Now
	}
	return &TTLCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     clock,
	}
}

// Get returns the cached value for key, or false when absent or expired.
// Expired entries are removed lazily on read.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have replaced it.
		if cur, ok := c.entries[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the cache TTL, replacing any prior entry.
func (c *TTLCache) Set(key string, value interface{}) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Delete removes key if present.
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of entries, counting expired ones not yet evicted.
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
