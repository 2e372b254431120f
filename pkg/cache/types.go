package cache

import (
	"crypto/sha256"
	"fmt"

	"github.com/snow-ghost/decision/core"
)

// CacheKey identifies one objective evaluated on one solution
type CacheKey string

// GenerateKey hashes the objective name with the solution fingerprint
func GenerateKey(objective string, s core.Solution) CacheKey {
	hash := sha256.Sum256([]byte(objective + "\x00" + s.Fingerprint()))
	return CacheKey(fmt.Sprintf("%x", hash))
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	MaxSize int `json:"max_size" yaml:"max_size"` // Maximum number of entries
}

// DefaultCacheConfig returns a default cache configuration
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{MaxSize: 4096}
}

// CacheStats represents cache statistics
type CacheStats struct {
	Hits         int64   `json:"hits"`
	Misses       int64   `json:"misses"`
	Size         int     `json:"size"`
	MaxSize      int     `json:"max_size"`
	HitRate      float64 `json:"hit_rate"`
	Evictions    int64   `json:"evictions"`
	Deduplicated int64   `json:"deduplicated"`
}

// CalculateHitRate calculates the hit rate
func (s *CacheStats) CalculateHitRate() {
	total := s.Hits + s.Misses
	if total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	} else {
		s.HitRate = 0.0
	}
}
