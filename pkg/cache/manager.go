package cache

import (
	"context"
	"fmt"

	"github.com/snow-ghost/decision/core"
)

// CacheManager memoizes objective evaluations with an LRU cache and
// in-flight deduplication
type CacheManager struct {
	cache        *LRUCache
	deduplicator *Deduplicator

	// OnHit and OnMiss are optional observers, e.g. metrics counters
	OnHit  func()
	OnMiss func()
}

// NewCacheManager creates a new cache manager
func NewCacheManager(config *CacheConfig) (*CacheManager, error) {
	cache, err := NewLRUCache(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	return &CacheManager{
		cache:        cache,
		deduplicator: NewDeduplicator(),
	}, nil
}

// Wrap returns an EvalFunc that serves repeated evaluations of the same
// solution from the cache
func (cm *CacheManager) Wrap(objective string, fn core.EvalFunc) core.EvalFunc {
	return func(ctx context.Context, s core.Solution) (float64, error) {
		key := GenerateKey(objective, s)
		if v, ok := cm.cache.Get(key); ok {
			if cm.OnHit != nil {
				cm.OnHit()
			}
			return v, nil
		}
		if cm.OnMiss != nil {
			cm.OnMiss()
		}

		return cm.deduplicator.Execute(key, func() (float64, error) {
			v, err := fn(ctx, s)
			if err != nil {
				return 0, err
			}
			cm.cache.Set(key, v)
			return v, nil
		})
	}
}

// GetStats returns cache statistics including deduplicated calls
func (cm *CacheManager) GetStats() CacheStats {
	stats := cm.cache.GetStats()
	stats.Deduplicated = cm.deduplicator.Deduplicated()
	return stats
}

// Clear drops all cached evaluations
func (cm *CacheManager) Clear() {
	cm.cache.Clear()
}
