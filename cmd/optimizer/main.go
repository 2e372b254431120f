// Command optimizer loads a YAML problem definition and prints its Pareto
// frontier or fitness ranking as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/snow-ghost/decision/optimizer"
	"github.com/snow-ghost/decision/pkg/observability"
	"github.com/snow-ghost/decision/problem"
	"github.com/spf13/pflag"
)

const (
	modeOptimize = "optimize"
	modeRank     = "rank"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "optimizer:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	flags := pflag.NewFlagSet("optimizer", pflag.ContinueOnError)
	var (
		problemPath    = flags.StringP("problem", "p", "", "Problem definition file (default $OPTIMIZER_PROBLEM or problem.yaml)")
		mode           = flags.StringP("mode", "m", modeOptimize, "Mode: optimize, rank")
		seed           = flags.Int64("seed", 0, "Random seed, 0 keeps the configured one")
		logLevel       = flags.String("log-level", "", "Log level: debug, info, warn, error (default $LOG_LEVEL)")
		logFormat      = flags.String("log-format", "json", "Log format: json, console")
		logBackend     = flags.String("log-backend", "zap", "Log backend: zap, slog")
		parallelism    = flags.Int("parallelism", 0, "Concurrent evaluations, 0 keeps the configured value")
		metricsFile    = flags.String("metrics-file", "", "Write Prometheus metrics in text format to this file on exit")
		jaegerEndpoint = flags.String("jaeger-endpoint", "", "Jaeger collector endpoint for traces")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *mode != modeOptimize && *mode != modeRank {
		return fmt.Errorf("unknown mode %q", *mode)
	}

	cfg, err := optimizer.LoadConfig()
	if err != nil {
		return err
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	registry := prometheus.NewRegistry()
	obs, err := observability.NewManager(observability.Config{
		ServiceName:    "decision-optimizer",
		ServiceVersion: "dev",
		Environment:    "cli",
		JaegerEndpoint: *jaegerEndpoint,
		LogLevel:       cfg.LogLevel,
		LogFormat:      *logFormat,
		LogBackend:     *logBackend,
		Registerer:     registry,
	})
	if err != nil {
		return fmt.Errorf("failed to set up observability: %w", err)
	}
	defer func() { _ = obs.Shutdown(context.Background()) }()

	def, err := problem.NewLoader(*problemPath, obs.GetLogger()).Load()
	if err != nil {
		return err
	}
	cfg, err = def.Config(cfg)
	if err != nil {
		return err
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *parallelism > 0 {
		cfg.Parallelism = *parallelism
	}

	p, err := def.Problem()
	if err != nil {
		return err
	}
	o, err := optimizer.New(cfg, optimizer.WithObservability(obs))
	if err != nil {
		return err
	}

	var out interface{}
	switch *mode {
	case modeRank:
		out, err = o.RankSolutions(ctx, p.Space, p.Objectives, p.Constraints)
	default:
		out, err = o.Run(ctx, p)
	}
	if err != nil {
		return err
	}

	if *metricsFile != "" {
		if err := prometheus.WriteToTextfile(*metricsFile, registry); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
