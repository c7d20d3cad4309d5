package di

import (
	"context"
	"sync"
	"time"
)

// sweepInterval is how often expired partner profiles are purged. The
// working set is one small entry per chat partner, so a lazy sweep is
// plenty.
const sweepInterval = time.Minute

// InMemoryCache is a TTL cache backing the conversation aggregator's
// partner profile lookups. Expired entries stop being served immediately
// and are physically removed by a background sweep until Close.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	stop    chan struct{}
	once    sync.Once
}

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// NewInMemoryCache creates the cache and starts its sweep loop
func NewInMemoryCache() *InMemoryCache {
	cache := &InMemoryCache{
		entries: make(map[string]cacheEntry),
		stop:    make(chan struct{}),
	}
	go cache.sweep()
	return cache
}

// Get retrieves a live value; expired entries read as absent
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

// Set stores a value with a TTL in seconds
func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(time.Duration(ttlSeconds) * time.Second),
	}
	return nil
}

// Delete removes a value
func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Clear removes all values
func (c *InMemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
	return nil
}

// Close stops the sweep loop; safe to call more than once
func (c *InMemoryCache) Close() {
	c.once.Do(func() {
		close(c.stop)
	})
}

func (c *InMemoryCache) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}
