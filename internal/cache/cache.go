// Package cache provides the in-memory TTL cache behind the TL;DR
// pipeline. Expired entries read as misses but stay in the map until
// overwritten or cleared, so stats can report active and expired counts
// separately.
package cache

import (
	"sync"
	"time"
)

type Item struct {
	Value    interface{}
	StoredAt time.Time
}

type Cache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]Item
	now   func() time.Time
}

// Stats partitions the current entries by the same staleness test Get
// uses, without evicting anything.
type Stats struct {
	TotalEntries   int     `json:"total_entries"`
	ActiveEntries  int     `json:"active_entries"`
	ExpiredEntries int     `json:"expired_entries"`
	TTLHours       float64 `json:"cache_duration_hours"`
}

func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:   ttl,
		items: make(map[string]Item),
		now:   time.Now,
	}
}

// Set stores or overwrites the value under key with a fresh timestamp.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = Item{
		Value:    value,
		StoredAt: c.now(),
	}
}

// Get returns the stored value and whether it is still fresh. A stale
// entry is a miss but is not removed.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists {
		return nil, false
	}
	if c.now().Sub(item.StoredAt) >= c.ttl {
		return nil, false
	}
	return item.Value, true
}

// Clear drops every entry, fresh or stale.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]Item)
}

func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		TotalEntries: len(c.items),
		TTLHours:     c.ttl.Hours(),
	}
	now := c.now()
	for _, item := range c.items {
		if now.Sub(item.StoredAt) < c.ttl {
			stats.ActiveEntries++
		} else {
			stats.ExpiredEntries++
		}
	}
	return stats
}
