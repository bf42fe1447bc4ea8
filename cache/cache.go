// Package cache holds recently scraped profiles in memory so interactive
// read paths can skip a full browser round trip.
package cache

import (
	"strings"
	"sync"
	"time"

	"leetfriends/models"
)

// entry holds a cached profile with its creation timestamp.
type entry struct {
	stats     *models.ProfileStatistics
	createdAt time.Time
}

// Cache is a simple in-memory profile cache keyed by handle.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
}

// New creates a Cache. A background goroutine evicts expired entries every
// five minutes.
func New(maxEntries int, ttl time.Duration) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
	go c.cleanupLoop()
	return c
}

// Get retrieves a cached profile if it exists and is younger than the TTL.
func (c *Cache) Get(handle string) (*models.ProfileStatistics, bool) {
	c.mu.RLock()
	e, ok := c.store[key(handle)]
	c.mu.RUnlock()

	if !ok || time.Since(e.createdAt) > c.ttl {
		return nil, false
	}
	return e.stats, true
}

// Set stores a profile. If the cache is at capacity, a random entry is
// evicted to make room (map iteration is random in Go).
func (c *Cache) Set(handle string, stats *models.ProfileStatistics) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}
	c.store[key(handle)] = &entry{stats: stats, createdAt: time.Now()}
}

// Invalidate drops a handle, forcing the next read to scrape fresh.
func (c *Cache) Invalidate(handle string) {
	c.mu.Lock()
	delete(c.store, key(handle))
	c.mu.Unlock()
}

func key(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-c.ttl)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
