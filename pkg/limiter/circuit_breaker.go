package limiter

import (
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	MaxRequests uint32                             `json:"max_requests" yaml:"max_requests"`
	Interval    time.Duration                      `json:"interval" yaml:"interval"`
	Timeout     time.Duration                      `json:"timeout" yaml:"timeout"`
	ReadyToTrip func(counts gobreaker.Counts) bool `json:"-" yaml:"-"`
}

// DefaultCircuitBreakerConfig returns a default circuit breaker configuration
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Open circuit if failure rate is > 50% and we have at least 5 requests
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
	}
}

// CircuitBreakerManager manages circuit breakers per objective
type CircuitBreakerManager struct {
	breakers      map[string]*gobreaker.CircuitBreaker
	config        *CircuitBreakerConfig
	onStateChange func(objective string, from, to gobreaker.State)
	mu            sync.Mutex
}

// NewCircuitBreakerManager creates a new circuit breaker manager
func NewCircuitBreakerManager(config *CircuitBreakerConfig, onStateChange func(objective string, from, to gobreaker.State)) *CircuitBreakerManager {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	return &CircuitBreakerManager{
		breakers:      make(map[string]*gobreaker.CircuitBreaker),
		config:        config,
		onStateChange: onStateChange,
	}
}

// GetBreaker returns or creates a circuit breaker for an objective
func (cbm *CircuitBreakerManager) GetBreaker(objective string) *gobreaker.CircuitBreaker {
	cbm.mu.Lock()
	defer cbm.mu.Unlock()

	if breaker, exists := cbm.breakers[objective]; exists {
		return breaker
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        fmt.Sprintf("objective-%s", objective),
		MaxRequests: cbm.config.MaxRequests,
		Interval:    cbm.config.Interval,
		Timeout:     cbm.config.Timeout,
		ReadyToTrip: cbm.config.ReadyToTrip,
		OnStateChange: func(_ string, from gobreaker.State, to gobreaker.State) {
			if cbm.onStateChange != nil {
				cbm.onStateChange(objective, from, to)
			}
		},
	})

	cbm.breakers[objective] = breaker
	return breaker
}

// Execute runs fn through the objective's circuit breaker
func (cbm *CircuitBreakerManager) Execute(objective string, fn func() (float64, error)) (float64, error) {
	result, err := cbm.GetBreaker(objective).Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return 0, err
	}
	return result.(float64), nil
}

// GetState returns the current state of an objective's circuit breaker
func (cbm *CircuitBreakerManager) GetState(objective string) gobreaker.State {
	return cbm.GetBreaker(objective).State()
}

// Reset drops the breaker of one objective
func (cbm *CircuitBreakerManager) Reset(objective string) {
	cbm.mu.Lock()
	defer cbm.mu.Unlock()
	delete(cbm.breakers, objective)
}
