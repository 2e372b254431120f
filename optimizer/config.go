package optimizer

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/snow-ghost/decision/core"
)

// OnEvaluationError selects what happens when an objective evaluation fails.
type OnEvaluationError string

const (
	// Abort fails the whole call with the *core.EvaluationError.
	Abort OnEvaluationError = "abort"
	// SubstituteZero logs a warning and scores the failed objective as 0.0.
	SubstituteZero OnEvaluationError = "substitute_zero"
)

// ParseOnEvaluationError parses "abort" or "substitute_zero".
func ParseOnEvaluationError(s string) (OnEvaluationError, error) {
	switch OnEvaluationError(s) {
	case Abort, SubstituteZero:
		return OnEvaluationError(s), nil
	default:
		return "", &core.ConfigurationError{
			Field:  "on_evaluation_error",
			Reason: fmt.Sprintf("must be %q or %q, got %q", Abort, SubstituteZero, s),
		}
	}
}

// Config holds the static configuration of an Optimizer
type Config struct {
	PopulationSize    int               `json:"population_size" yaml:"population_size"`
	Generations       int               `json:"generations" yaml:"generations"`
	MutationRate      float64           `json:"mutation_rate" yaml:"mutation_rate"`
	CrossoverRate     float64           `json:"crossover_rate" yaml:"crossover_rate"`
	ElitismRatio      float64           `json:"elitism_ratio" yaml:"elitism_ratio"`
	OnEvaluationError OnEvaluationError `json:"on_evaluation_error" yaml:"on_evaluation_error"`

	// Parallelism bounds concurrent solution evaluations; 1 is sequential.
	Parallelism int `json:"parallelism" yaml:"parallelism"`
	// Seed seeds the random source; 0 seeds from the clock.
	Seed int64 `json:"seed" yaml:"seed"`
	// CacheSize enables memoization of custom evaluators when > 0.
	CacheSize int `json:"cache_size" yaml:"cache_size"`
	// Deadline bounds the wall-clock time of one call; 0 = none.
	Deadline time.Duration `json:"deadline" yaml:"deadline"`
	// MaxEvaluations bounds objective evaluations per call; 0 = unlimited.
	MaxEvaluations int `json:"max_evaluations" yaml:"max_evaluations"`

	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// DefaultConfig returns the default optimizer configuration
func DefaultConfig() Config {
	return Config{
		PopulationSize:    100,
		Generations:       50,
		MutationRate:      0.1,
		CrossoverRate:     0.7,
		ElitismRatio:      0.1,
		OnEvaluationError: SubstituteZero,
		Parallelism:       1,
		LogLevel:          "info",
	}
}

// LoadConfig loads configuration from environment variables on top of the defaults
func LoadConfig() (Config, error) {
	d := DefaultConfig()
	config := Config{
		PopulationSize:    getEnvInt("OPTIMIZER_POPULATION_SIZE", d.PopulationSize),
		Generations:       getEnvInt("OPTIMIZER_GENERATIONS", d.Generations),
		MutationRate:      getEnvFloat("OPTIMIZER_MUTATION_RATE", d.MutationRate),
		CrossoverRate:     getEnvFloat("OPTIMIZER_CROSSOVER_RATE", d.CrossoverRate),
		ElitismRatio:      getEnvFloat("OPTIMIZER_ELITISM_RATIO", d.ElitismRatio),
		OnEvaluationError: OnEvaluationError(getEnv("OPTIMIZER_ON_EVALUATION_ERROR", string(d.OnEvaluationError))),
		Parallelism:       getEnvInt("OPTIMIZER_PARALLELISM", d.Parallelism),
		Seed:              int64(getEnvInt("OPTIMIZER_SEED", int(d.Seed))),
		CacheSize:         getEnvInt("OPTIMIZER_CACHE_SIZE", d.CacheSize),
		Deadline:          getEnvDuration("OPTIMIZER_DEADLINE", d.Deadline),
		MaxEvaluations:    getEnvInt("OPTIMIZER_MAX_EVALUATIONS", d.MaxEvaluations),
		LogLevel:          getEnv("LOG_LEVEL", d.LogLevel),
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate reports the first invalid setting as a *core.ConfigurationError
func (c Config) Validate() error {
	switch {
	case c.PopulationSize < 1:
		return &core.ConfigurationError{Field: "population_size", Reason: "must be at least 1"}
	case c.Generations < 0:
		return &core.ConfigurationError{Field: "generations", Reason: "must not be negative"}
	case !unit(c.MutationRate):
		return &core.ConfigurationError{Field: "mutation_rate", Reason: "must be within [0,1]"}
	case !unit(c.CrossoverRate):
		return &core.ConfigurationError{Field: "crossover_rate", Reason: "must be within [0,1]"}
	case !unit(c.ElitismRatio):
		return &core.ConfigurationError{Field: "elitism_ratio", Reason: "must be within [0,1]"}
	case c.Parallelism < 0:
		return &core.ConfigurationError{Field: "parallelism", Reason: "must not be negative"}
	case c.CacheSize < 0:
		return &core.ConfigurationError{Field: "cache_size", Reason: "must not be negative"}
	case c.Deadline < 0:
		return &core.ConfigurationError{Field: "deadline", Reason: "must not be negative"}
	case c.MaxEvaluations < 0:
		return &core.ConfigurationError{Field: "max_evaluations", Reason: "must not be negative"}
	}
	if c.OnEvaluationError != "" {
		if _, err := ParseOnEvaluationError(string(c.OnEvaluationError)); err != nil {
			return err
		}
	}
	return nil
}

// Budget returns the per-call budget described by c
func (c Config) Budget() core.Budget {
	return core.Budget{Timeout: c.Deadline, MaxEvaluations: c.MaxEvaluations}
}

// EliteCount is floor(ElitismRatio × PopulationSize)
func (c Config) EliteCount() int {
	return int(c.ElitismRatio * float64(c.PopulationSize))
}

// TournamentSize is max(2, round(0.1 × PopulationSize)), capped at the
// population. Halves round to even.
func (c Config) TournamentSize() int {
	k := int(math.RoundToEven(float64(c.PopulationSize) * 0.1))
	if k < 2 {
		k = 2
	}
	if k > c.PopulationSize {
		k = c.PopulationSize
	}
	return k
}

func (c Config) withDefaults() Config {
	if c.OnEvaluationError == "" {
		c.OnEvaluationError = SubstituteZero
	}
	if c.Parallelism < 1 {
		c.Parallelism = 1
	}
	return c
}

func unit(v float64) bool { return v >= 0 && v <= 1 }

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
