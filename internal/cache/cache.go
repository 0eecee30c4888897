// Package cache provides an in-memory TTL cache for search responses.
package cache

import (
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ResponseCache is a concurrent-safe string cache with per-entry expiration.
type ResponseCache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
}

type entry struct {
	value     string
	expiresAt time.Time
}

// Stats is a point-in-time snapshot of cache occupancy.
type Stats struct {
	Total   int `json:"total"`
	Expired int `json:"expired"`
	Active  int `json:"active"`
}

// New creates a ResponseCache with the given default TTL.
func New(defaultTTL time.Duration) *ResponseCache {
	return &ResponseCache{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
	}
}

// Key builds a deterministic cache key from search parameters. Coordinates
// are quantized to four decimal places, roughly 10 m, so nearby queries
// share an entry. An empty placeType is keyed as "all".
func Key(lat, lng float64, radiusM int, placeType, keyword string) string {
	if placeType == "" {
		placeType = "all"
	}
	return fmt.Sprintf("search:%d:%d:%d:%s:%s",
		int64(math.Round(lat*10000)),
		int64(math.Round(lng*10000)),
		radiusM,
		placeType,
		keyword,
	)
}

// Get returns the cached value for key. Expired entries report a miss.
func (c *ResponseCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

// Set stores a value with the default TTL.
func (c *ResponseCache) Set(key, value string) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores a value with an explicit TTL.
func (c *ResponseCache) SetWithTTL(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

// Cleanup removes all expired entries and returns how many were dropped.
func (c *ResponseCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear empties the cache.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of entries, expired ones included.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CacheStats returns occupancy counts.
func (c *ResponseCache) CacheStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	stats := Stats{Total: len(c.entries)}
	for _, e := range c.entries {
		if now.After(e.expiresAt) {
			stats.Expired++
		} else {
			stats.Active++
		}
	}
	return stats
}

// StartJanitor launches a goroutine that calls Cleanup every interval.
// The returned stop function terminates it.
func (c *ResponseCache) StartJanitor(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if removed := c.Cleanup(); removed > 0 {
					zap.L().Debug("cache cleanup", zap.Int("removed", removed))
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
