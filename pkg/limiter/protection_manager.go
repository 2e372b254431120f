package limiter

import (
	"context"
	"errors"
	"fmt"

	"github.com/snow-ghost/decision/core"
	"github.com/sony/gobreaker"
)

// Rejection reasons reported through OnReject
const (
	ReasonRateLimited = "rate_limited"
	ReasonCircuitOpen = "circuit_open"
)

// ErrRejected is returned when a guard refuses to run an evaluation
var ErrRejected = errors.New("evaluation rejected by guard")

// GuardConfig bundles the protection settings applied to each objective
type GuardConfig struct {
	Rate           RateConfig            `json:"rate" yaml:"rate"`
	CircuitBreaker *CircuitBreakerConfig `json:"circuit_breaker,omitempty" yaml:"circuit_breaker,omitempty"`
	Retry          *RetryConfig          `json:"retry,omitempty" yaml:"retry,omitempty"`
}

// Guard combines rate limiting, circuit breaking and retries around objective evaluators
type Guard struct {
	config         GuardConfig
	rateLimiter    *RateLimiter
	circuitBreaker *CircuitBreakerManager
	retryManager   *RetryManager

	// OnReject is called when an evaluation is refused
	OnReject func(objective, reason string)
	// OnStateChange is called when an objective's breaker changes state
	OnStateChange func(objective, from, to string)
}

// NewGuard creates a new guard
func NewGuard(config GuardConfig) *Guard {
	g := &Guard{
		config:       config,
		rateLimiter:  NewRateLimiter(),
		retryManager: NewRetryManager(config.Retry),
	}
	g.circuitBreaker = NewCircuitBreakerManager(config.CircuitBreaker, func(objective string, from, to gobreaker.State) {
		if g.OnStateChange != nil {
			g.OnStateChange(objective, from.String(), to.String())
		}
	})
	return g
}

// Wrap returns fn guarded by the rate limiter, circuit breaker and retry policy
func (g *Guard) Wrap(objective string, fn core.EvalFunc) core.EvalFunc {
	return func(ctx context.Context, s core.Solution) (float64, error) {
		return g.retryManager.Execute(ctx, func(ctx context.Context) (float64, error) {
			if err := g.rateLimiter.Wait(ctx, objective, g.config.Rate); err != nil {
				g.reject(objective, ReasonRateLimited)
				return 0, fmt.Errorf("%w: %v", ErrRejected, err)
			}

			v, err := g.circuitBreaker.Execute(objective, func() (float64, error) {
				return fn(ctx, s)
			})
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				g.reject(objective, ReasonCircuitOpen)
				return 0, fmt.Errorf("%w: %v", ErrRejected, err)
			}
			return v, err
		})
	}
}

// State returns the breaker state of an objective
func (g *Guard) State(objective string) string {
	return g.circuitBreaker.GetState(objective).String()
}

// Reset clears the limiter and breaker of an objective
func (g *Guard) Reset(objective string) {
	g.rateLimiter.Reset(objective)
	g.circuitBreaker.Reset(objective)
}

func (g *Guard) reject(objective, reason string) {
	if g.OnReject != nil {
		g.OnReject(objective, reason)
	}
}
