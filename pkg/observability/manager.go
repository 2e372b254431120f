package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/snow-ghost/decision/pkg/cache"
	"github.com/snow-ghost/decision/pkg/limiter"
	"github.com/snow-ghost/decision/pkg/logging"
	"github.com/snow-ghost/decision/pkg/metrics"
	"github.com/snow-ghost/decision/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Manager manages all observability components
type Manager struct {
	metrics *metrics.PrometheusMetrics
	tracer  *tracing.Tracer
	logger  *logging.Logger
}

// Config holds observability configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	JaegerEndpoint string
	LogLevel       string
	LogFormat      string
	LogBackend     string
	Registerer     prometheus.Registerer
}

// NewManager creates a new observability manager
func NewManager(config Config) (*Manager, error) {
	// Create metrics
	prometheusMetrics := metrics.NewPrometheusMetrics(config.Registerer)

	// Create tracer
	tracerConfig := tracing.Config{
		ServiceName:    config.ServiceName,
		ServiceVersion: config.ServiceVersion,
		JaegerEndpoint: config.JaegerEndpoint,
		Environment:    config.Environment,
	}

	tracer, err := tracing.NewTracer(tracerConfig)
	if err != nil {
		return nil, err
	}

	// Create logger
	loggerConfig := logging.Config{
		Level:     config.LogLevel,
		Format:    config.LogFormat,
		Output:    "stderr",
		Backend:   config.LogBackend,
		AddCaller: true,
		AddStack:  false,
	}

	logger, err := logging.NewLogger(loggerConfig)
	if err != nil {
		return nil, err
	}

	return &Manager{
		metrics: prometheusMetrics,
		tracer:  tracer,
		logger:  logger,
	}, nil
}

// NewManagerFrom bundles existing components. Nil components get silent defaults.
func NewManagerFrom(logger *logging.Logger, m *metrics.PrometheusMetrics, tracer *tracing.Tracer) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	if m == nil {
		m = metrics.NewPrometheusMetrics(nil)
	}
	if tracer == nil {
		tracer = tracing.NewNoopTracer()
	}
	return &Manager{metrics: m, tracer: tracer, logger: logger}
}

// NewNopManager returns a manager that logs nothing, traces nothing and
// records metrics into a private registry
func NewNopManager() *Manager {
	return NewManagerFrom(nil, nil, nil)
}

// GetMetrics returns the metrics instance
func (m *Manager) GetMetrics() *metrics.PrometheusMetrics {
	return m.metrics
}

// GetTracer returns the tracer instance
func (m *Manager) GetTracer() *tracing.Tracer {
	return m.tracer
}

// GetLogger returns the logger instance
func (m *Manager) GetLogger() *logging.Logger {
	return m.logger
}

// StartRunSpan starts the span of one optimize call with logging
func (m *Manager) StartRunSpan(ctx context.Context, runID string, spaceSize, objectives, constraints int) (context.Context, trace.Span) {
	ctx, span := m.tracer.StartOptimizeSpan(ctx, spaceSize, objectives, constraints)

	span.SetAttributes(
		attribute.String("run_id", runID),
	)

	m.logger.WithRunID(ctx, runID).WithFields(map[string]interface{}{
		"space_size":  spaceSize,
		"objectives":  objectives,
		"constraints": constraints,
	}).Debug("Optimize started")

	return ctx, span
}

// FinishRun records metrics, logs and ends the span of one optimize call
func (m *Manager) FinishRun(ctx context.Context, span trace.Span, path string, spaceSize, frontierSize, generations int, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		tracing.RecordSpanError(span, err)
	} else {
		m.metrics.RecordFrontier(frontierSize)
		tracing.RecordSpanSuccess(span)
	}
	m.metrics.RecordRun(path, status, duration)

	span.SetAttributes(
		attribute.String("optimizer.path", path),
		attribute.Int("optimizer.frontier_size", frontierSize),
		attribute.Int("optimizer.generations", generations),
	)
	tracing.RecordSpanDuration(span, duration)
	span.End()

	m.logger.LogRun(ctx, path, spaceSize, frontierSize, generations, duration, err)
}

// RecordGeneration records metrics and logs for one evaluated generation
func (m *Manager) RecordGeneration(ctx context.Context, generation int, best, mean float64, feasible int) {
	m.metrics.RecordGeneration(best)
	m.logger.LogGeneration(ctx, generation, best, mean, feasible)
}

// RecordEvaluation records one objective evaluation; a non-nil err means it
// failed and 0.0 was substituted
func (m *Manager) RecordEvaluation(ctx context.Context, objective string, err error) {
	m.metrics.RecordEvaluation(objective, err != nil)
	if err != nil {
		m.logger.LogEvaluationSubstituted(ctx, objective, err)
	}
}

// RecordEvaluationFailure records an evaluation failure that aborts the call
func (m *Manager) RecordEvaluationFailure(objective string) {
	m.metrics.RecordEvaluation(objective, true)
}

// RecordViolation records a violated constraint
func (m *Manager) RecordViolation(constraint string) {
	m.metrics.RecordViolation(constraint)
}

// InstrumentCache routes cache hits and misses to metrics
func (m *Manager) InstrumentCache(cm *cache.CacheManager) {
	cm.OnHit = m.metrics.RecordCacheHit
	cm.OnMiss = m.metrics.RecordCacheMiss
}

// InstrumentGuard routes guard rejections and breaker transitions to metrics
// and logs, keeping hooks the caller already installed
func (m *Manager) InstrumentGuard(g *limiter.Guard) {
	if g.OnReject == nil {
		g.OnReject = m.metrics.RecordGuardRejection
	}
	if g.OnStateChange == nil {
		g.OnStateChange = func(objective, from, to string) {
			m.logger.LogGuardStateChange(context.Background(), objective, from, to)
		}
	}
}

// Shutdown shuts down all observability components
func (m *Manager) Shutdown(ctx context.Context) error {
	// Shutdown tracer
	if err := m.tracer.Shutdown(ctx); err != nil {
		return err
	}

	// Sync logger
	if err := m.logger.Sync(); err != nil {
		return err
	}

	return nil
}
