package cache

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUCache memoizes successful objective evaluations. Failures are never stored.
type LRUCache struct {
	cache *lru.Cache[CacheKey, float64]
	stats CacheStats
	mu    sync.Mutex
}

// NewLRUCache creates a new LRU cache
func NewLRUCache(config *CacheConfig) (*LRUCache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	c := &LRUCache{stats: CacheStats{MaxSize: config.MaxSize}}
	cache, err := lru.NewWithEvict[CacheKey, float64](config.MaxSize, func(CacheKey, float64) {
		c.stats.Evictions++
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

// Get retrieves a value from the cache
func (c *LRUCache) Get(key CacheKey) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.cache.Get(key)
	if !ok {
		c.stats.Misses++
		return 0, false
	}
	c.stats.Hits++
	return v, true
}

// Set stores a value in the cache
func (c *LRUCache) Set(key CacheKey, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(key, value)
}

// Len returns the number of cached entries
func (c *LRUCache) Len() int {
	return c.cache.Len()
}

// Clear drops every entry
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
}

// GetStats returns a snapshot of the cache statistics
func (c *LRUCache) GetStats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Size = c.cache.Len()
	stats.CalculateHitRate()
	return stats
}
