package optimizer

import (
	"math/rand"

	"github.com/snow-ghost/decision/core"
	"github.com/snow-ghost/decision/pkg/limiter"
	"github.com/snow-ghost/decision/pkg/logging"
	"github.com/snow-ghost/decision/pkg/metrics"
	"github.com/snow-ghost/decision/pkg/observability"
	"github.com/snow-ghost/decision/pkg/tracing"
)

// Option customizes an Optimizer
type Option func(*Optimizer)

// WithRand sets the random source all runs draw from. The Optimizer
// serializes access to it.
func WithRand(rng *rand.Rand) Option {
	return func(o *Optimizer) { o.rng = rng }
}

// WithSeed seeds a private random source, overriding Config.Seed
func WithSeed(seed int64) Option {
	return func(o *Optimizer) { o.rng = rand.New(rand.NewSource(seed)) }
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(o *Optimizer) { o.logger = l }
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.PrometheusMetrics) Option {
	return func(o *Optimizer) { o.metrics = m }
}

// WithTracer sets the tracer
func WithTracer(t *tracing.Tracer) Option {
	return func(o *Optimizer) { o.tracer = t }
}

// WithObservability uses the logger, metrics and tracer of m
func WithObservability(m *observability.Manager) Option {
	return func(o *Optimizer) {
		o.logger = m.GetLogger()
		o.metrics = m.GetMetrics()
		o.tracer = m.GetTracer()
	}
}

// WithGuard protects every custom objective evaluator with g
func WithGuard(g *limiter.Guard) Option {
	return func(o *Optimizer) { o.guard = g }
}

// WithSelector replaces tournament selection
func WithSelector(s core.Selector) Option {
	return func(o *Optimizer) { o.selector = s }
}

// WithRecombiner replaces uniform crossover
func WithRecombiner(r core.Recombiner) Option {
	return func(o *Optimizer) { o.recombiner = r }
}

// WithMutator replaces solution space mutation
func WithMutator(m core.Mutator) Option {
	return func(o *Optimizer) { o.mutator = m }
}
