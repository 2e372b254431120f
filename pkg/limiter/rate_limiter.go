package limiter

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// RateConfig bounds how often one objective's evaluator may be called
type RateConfig struct {
	PerSecond float64 `json:"per_second" yaml:"per_second"` // 0 = unlimited
	Burst     int     `json:"burst" yaml:"burst"`
}

// RateLimiter manages rate limiting per objective
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
	}
}

// GetLimiter returns or creates a rate limiter for an objective
func (rl *RateLimiter) GetLimiter(objective string, config RateConfig) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.limiters[objective]; exists {
		return limiter
	}

	limit := rate.Inf
	if config.PerSecond > 0 {
		limit = rate.Limit(config.PerSecond)
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}

	limiter := rate.NewLimiter(limit, burst)
	rl.limiters[objective] = limiter
	return limiter
}

// Wait waits for the rate limiter to allow the evaluation
func (rl *RateLimiter) Wait(ctx context.Context, objective string, config RateConfig) error {
	limiter := rl.GetLimiter(objective, config)

	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	return nil
}

// Allow reports whether an evaluation may run right now without waiting
func (rl *RateLimiter) Allow(objective string, config RateConfig) bool {
	return rl.GetLimiter(objective, config).Allow()
}

// Reset drops the limiter of one objective
func (rl *RateLimiter) Reset(objective string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.limiters, objective)
}
