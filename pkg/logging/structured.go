package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps both slog and zap loggers
type Logger struct {
	slog *slog.Logger
	zap  *zap.Logger
}

// Config holds logging configuration
type Config struct {
	Level     string
	Format    string // "json" or "console"
	Output    string // "stdout" or "stderr"
	Backend   string // "zap" (default) or "slog"; the other one discards
	AddCaller bool
	AddStack  bool
}

// DefaultConfig returns the configuration used by the CLI
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	}
}

// NewLogger creates a new structured logger. Only the configured backend
// writes; the other is kept as a discarding logger so GetSlog and GetZap
// never return nil.
func NewLogger(config Config) (*Logger, error) {
	if config.Output == "" {
		config.Output = "stderr"
	}
	if config.Format == "" {
		config.Format = "json"
	}

	switch config.Backend {
	case "", "zap":
		zapLogger, err := newZap(config)
		if err != nil {
			return nil, err
		}
		return NewFromZap(zapLogger), nil
	case "slog":
		handler, err := newSlogHandler(config)
		if err != nil {
			return nil, err
		}
		return &Logger{slog: slog.New(handler), zap: zap.NewNop()}, nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", config.Backend)
	}
}

func newZap(config Config) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = parseZapLevel(config.Level)
	zapConfig.Encoding = config.Format
	zapConfig.OutputPaths = []string{config.Output}
	zapConfig.ErrorOutputPaths = []string{config.Output}
	zapConfig.DisableCaller = !config.AddCaller
	zapConfig.DisableStacktrace = !config.AddStack
	return zapConfig.Build()
}

func newSlogHandler(config Config) (slog.Handler, error) {
	var out io.Writer = os.Stderr
	if config.Output == "stdout" {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{
		Level:     parseSlogLevel(config.Level),
		AddSource: config.AddCaller,
	}
	switch config.Format {
	case "json":
		return slog.NewJSONHandler(out, opts), nil
	case "console":
		return slog.NewTextHandler(out, opts), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", config.Format)
	}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{
		slog: slog.New(slog.DiscardHandler),
		zap:  zap.NewNop(),
	}
}

// NewFromZap wraps an existing zap logger; slog output is discarded
func NewFromZap(z *zap.Logger) *Logger {
	return &Logger{
		slog: slog.New(slog.DiscardHandler),
		zap:  z,
	}
}

// parseSlogLevel parses slog level from string
func parseSlogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseZapLevel parses zap level from string
func parseZapLevel(level string) zap.AtomicLevel {
	switch level {
	case "debug":
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
}

// WithRunID adds the optimize run ID to logger context
func (l *Logger) WithRunID(ctx context.Context, runID string) *Logger {
	return &Logger{
		slog: l.slog.With("run_id", runID),
		zap:  l.zap.With(zap.String("run_id", runID)),
	}
}

// WithTraceID adds trace ID to logger context
func (l *Logger) WithTraceID(ctx context.Context, traceID string) *Logger {
	return &Logger{
		slog: l.slog.With("trace_id", traceID),
		zap:  l.zap.With(zap.String("trace_id", traceID)),
	}
}

// WithFields adds fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	slogAttrs := make([]any, 0, len(fields)*2)
	zapFields := make([]zap.Field, 0, len(fields))

	for key, value := range fields {
		slogAttrs = append(slogAttrs, key, value)
		zapFields = append(zapFields, zap.Any(key, value))
	}

	return &Logger{
		slog: l.slog.With(slogAttrs...),
		zap:  l.zap.With(zapFields...),
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.slog.Debug(msg, args...)
	l.zap.Debug(msg, convertToZapFields(args)...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.slog.Info(msg, args...)
	l.zap.Info(msg, convertToZapFields(args)...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.slog.Warn(msg, args...)
	l.zap.Warn(msg, convertToZapFields(args)...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.slog.Error(msg, args...)
	l.zap.Error(msg, convertToZapFields(args)...)
}

// convertToZapFields converts interface{} args to zap.Field
func convertToZapFields(args []interface{}) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	fields := make([]zap.Field, 0, len(args)/2)
	for i := 0; i < len(args)-1; i += 2 {
		if key, ok := args[i].(string); ok {
			fields = append(fields, zap.Any(key, args[i+1]))
		}
	}
	return fields
}

// LogRun logs a finished optimize call
func (l *Logger) LogRun(ctx context.Context, path string, spaceSize, frontierSize, generations int, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"path":          path,
		"space_size":    spaceSize,
		"frontier_size": frontierSize,
		"generations":   generations,
		"duration_ms":   float64(duration.Nanoseconds()) / 1e6,
	}

	logger := l.WithFields(fields)
	if err != nil {
		logger.Error("Optimize failed", "error", err.Error())
		return
	}
	logger.Info("Optimize completed")
}

// LogGeneration logs the summary of one GA generation
func (l *Logger) LogGeneration(ctx context.Context, generation int, best, mean float64, feasible int) {
	l.Debug("Generation evaluated",
		"generation", generation,
		"best_fitness", best,
		"mean_fitness", mean,
		"feasible", feasible,
	)
}

// LogEvaluationSubstituted logs an objective failure replaced by 0.0
func (l *Logger) LogEvaluationSubstituted(ctx context.Context, objective string, err error) {
	fields := map[string]interface{}{
		"objective": objective,
		"error":     err.Error(),
	}

	logger := l.WithFields(fields)
	logger.Warn("Objective evaluation failed, substituting 0.0")
}

// LogGuardStateChange logs a circuit breaker transition around an evaluator
func (l *Logger) LogGuardStateChange(ctx context.Context, objective, from, to string) {
	fields := map[string]interface{}{
		"objective": objective,
		"from":      from,
		"to":        to,
	}

	logger := l.WithFields(fields)
	logger.Warn("Evaluation circuit breaker state changed")
}

// Sync syncs the logger
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// GetSlog returns the slog logger
func (l *Logger) GetSlog() *slog.Logger {
	return l.slog
}

// GetZap returns the zap logger
func (l *Logger) GetZap() *zap.Logger {
	return l.zap
}
