// Package cache provides a small in-memory cache with TTL-based expiration.
// The clock is injectable so expiry behavior is testable without sleeping.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	data      interface{}
	expiresAt time.Time
}

// Cache is a thread-safe TTL cache. Stale entries are silently replaced on
// the next miss; there is no invalidation signal.
type Cache struct {
	mu    sync.RWMutex
	store map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

// New creates a cache whose entries live for ttl.
func New(ttl time.Duration) *Cache {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock creates a cache with an explicit clock. Tests use this to
// advance time deterministically.
func NewWithClock(ttl time.Duration, now func() time.Time) *Cache {
	return &Cache{
		store: make(map[string]entry),
		ttl:   ttl,
		now:   now,
	}
}

// Get returns the cached value for key, or false on miss or expiry.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// refreshed the entry.
		if cur, ok := c.store[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.store, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.data, true
}

// Set stores value under key with the cache's TTL, overwriting any prior
// entry.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	c.store[key] = entry{
		data:      value,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Clear removes a single key.
func (c *Cache) Clear(key string) {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.store = make(map[string]entry)
	c.mu.Unlock()
}

// Len reports the number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
