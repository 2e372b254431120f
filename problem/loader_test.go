package problem

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/snow-ghost/decision/core"
	"github.com/snow-ghost/decision/optimizer"
	"github.com/snow-ghost/decision/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"
)

func TestLoader_Load(t *testing.T) {
	zcore, logs := observer.New(zapcore.DebugLevel)
	l := NewLoader(filepath.Join("testdata", "pricing.yaml"), logging.NewFromZap(zap.New(zcore)))

	def, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "weekly-pricing", def.Name)
	require.Len(t, def.Objectives, 3)
	require.Len(t, def.Constraints, 2)
	require.Len(t, def.Solutions, 5)

	first := def.Solutions[0]
	assert.Equal(t, []string{"action", "revenue", "risk", "margin_pct", "stock", "approved"}, first.Keys())
	v, _ := first.Get("approved")
	assert.Equal(t, core.KindBool, v.Kind())

	assert.Equal(t, 1, logs.FilterMessage("Objective weight clamped to [0,1]").Len())
	assert.Equal(t, 1, logs.FilterMessage("Problem loaded").Len())
}

func TestLoader_LoadMissing(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml"), nil).Load()
	assert.Error(t, err)
}

func TestLoader_PathFromEnv(t *testing.T) {
	t.Setenv("OPTIMIZER_PROBLEM", "/tmp/from-env.yaml")
	assert.Equal(t, "/tmp/from-env.yaml", NewLoader("", nil).Path())
	assert.Equal(t, "explicit.yaml", NewLoader("explicit.yaml", nil).Path())
}

func TestDefinition_Build(t *testing.T) {
	def, err := NewLoader(filepath.Join("testdata", "pricing.yaml"), nil).Load()
	require.NoError(t, err)

	objectives, err := def.BuildObjectives()
	require.NoError(t, err)
	assert.Equal(t, core.Minimize, objectives[1].Direction)
	assert.Equal(t, 1.0, objectives[2].Weight)

	margin, err := objectives[2].Evaluate(context.Background(), def.Solutions[1])
	require.NoError(t, err)
	assert.Equal(t, 0.3, margin)

	constraints, err := def.BuildConstraints()
	require.NoError(t, err)
	assert.Equal(t, "stock in [1,+Inf]", constraints[0].Name)
	assert.Equal(t, core.DefaultPenalty, constraints[0].Penalty)
	assert.Equal(t, "approved", constraints[1].Name)
	assert.Equal(t, 50.0, constraints[1].Penalty)

	ok, err := constraints[0].IsSatisfied(context.Background(), def.Solutions[3])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDefinition_Config(t *testing.T) {
	def, err := NewLoader(filepath.Join("testdata", "pricing.yaml"), nil).Load()
	require.NoError(t, err)

	cfg, err := def.Config(optimizer.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.PopulationSize)
	assert.Equal(t, 5, cfg.Generations)
	assert.Equal(t, optimizer.Abort, cfg.OnEvaluationError)
	// untouched settings keep the base value
	assert.Equal(t, 0.7, cfg.CrossoverRate)

	bad, err := LoadFromBytes([]byte("optimizer:\n  mutation_rate: 4\n"))
	require.NoError(t, err)
	_, err = bad.Config(optimizer.DefaultConfig())
	var cfgErr *core.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))

	none := &Definition{}
	cfg, err = none.Config(optimizer.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, optimizer.DefaultConfig(), cfg)
}

func TestDefinition_OptimizeEndToEnd(t *testing.T) {
	def, err := NewLoader(filepath.Join("testdata", "pricing.yaml"), nil).Load()
	require.NoError(t, err)
	p, err := def.Problem()
	require.NoError(t, err)
	cfg, err := def.Config(optimizer.DefaultConfig())
	require.NoError(t, err)

	o, err := optimizer.New(cfg, optimizer.WithSeed(1))
	require.NoError(t, err)
	report, err := o.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, optimizer.PathExhaustive, report.Path)

	actions := make([]string, 0, len(report.Frontier))
	for _, s := range report.Frontier {
		v, _ := s.Get("action")
		actions = append(actions, v.Interface().(string))
	}
	assert.Equal(t, []string{"discount", "bundle", "hold"}, actions)
}

func TestConstraintSpec_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec ConstraintSpec
	}{
		{"no key", ConstraintSpec{Type: ConstraintRequired}},
		{"unknown type", ConstraintSpec{Type: "regex", Key: "a"}},
		{"empty range", ConstraintSpec{Type: ConstraintRange, Key: "a"}},
		{"equals without value", ConstraintSpec{Type: ConstraintEquals, Key: "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := &Definition{Constraints: []ConstraintSpec{tt.spec}}
			_, err := def.BuildConstraints()
			var cfgErr *core.ConfigurationError
			assert.True(t, errors.As(err, &cfgErr), "got %v", err)
		})
	}

	upper := 5.0
	def := &Definition{Constraints: []ConstraintSpec{{Type: ConstraintRange, Key: "a", Max: &upper}}}
	cs, err := def.BuildConstraints()
	require.NoError(t, err)
	ok, err := cs[0].IsSatisfied(context.Background(), core.SolutionOf("a", math.Inf(-1)))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDefinition_BadDirection(t *testing.T) {
	def := &Definition{Objectives: []ObjectiveSpec{{Name: "x", Weight: 1, Direction: "up"}}}
	_, err := def.Problem()
	var cfgErr *core.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestLoader_SaveRoundTrip(t *testing.T) {
	penalty := 10.0
	value := core.String("eu")
	def := &Definition{
		Name:        "roundtrip",
		Objectives:  []ObjectiveSpec{{Name: "profit", Weight: 0.8, Direction: "maximize"}},
		Constraints: []ConstraintSpec{{Type: ConstraintEquals, Key: "region", Value: &value, Penalty: &penalty}},
		Solutions: []core.Solution{
			core.SolutionOf("profit", 12.5, "region", "eu"),
			core.SolutionOf("profit", 9, "region", "us"),
		},
	}

	l := NewLoader(filepath.Join(t.TempDir(), "nested", "problem.yaml"), nil)
	require.NoError(t, l.Save(def))

	loaded, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, def.Name, loaded.Name)
	assert.Equal(t, def.Objectives, loaded.Objectives)
	require.Len(t, loaded.Solutions, 2)
	assert.True(t, def.Solutions[0].Equal(loaded.Solutions[0]))
	assert.True(t, loaded.Constraints[0].Value.Equal(value))
}

func TestLoader_SaveKeepsOptimizerSettings(t *testing.T) {
	def, err := LoadFromBytes([]byte(`objectives:
  - {name: profit, weight: 1, direction: maximize}
solutions:
  - {profit: 1}
optimizer:
  population_size: 10
  mutation_rate: 0.25
`))
	require.NoError(t, err)
	assert.Equal(t, yaml.MappingNode, def.Optimizer.Kind)

	l := NewLoader(filepath.Join(t.TempDir(), "problem.yaml"), nil)
	require.NoError(t, l.Save(def))
	loaded, err := l.Load()
	require.NoError(t, err)

	cfg, err := loaded.Config(optimizer.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.PopulationSize)
	assert.Equal(t, 0.25, cfg.MutationRate)
	assert.Equal(t, optimizer.DefaultConfig().Generations, cfg.Generations)
}
