package utils

import (
	"sync"
	"time"
)

// simple in-memory TTL cache, used for user summaries during a screen's lifetime.
// Nothing is persisted; entries vanish on restart.
type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// TTLCache is a mutex-guarded map with per-entry expiry.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

// NewTTLCache creates a cache whose entries expire after ttl.
func NewTTLCache(ttl time.Duration) *TTLCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &TTLCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Get returns the cached value for key if it has not expired.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

// Set stores a value under key with the cache's TTL.
func (c *TTLCache) Set(key string, value interface{}) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate removes a key. Used after a punch so stale hours are not shown.
func (c *TTLCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
