package optimizer

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/snow-ghost/decision/core"
	"github.com/snow-ghost/decision/pkg/limiter"
	"github.com/snow-ghost/decision/pkg/metrics"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridSpace(n int) []core.Solution {
	space := make([]core.Solution, n)
	for i := range space {
		space[i] = core.SolutionOf("x", i, "y", (i*7919)%n, "label", "s")
	}
	return space
}

func TestGenetic_ZeroGenerationsFiltersInitial(t *testing.T) {
	o := newOptimizer(t, func(c *Config) {
		c.PopulationSize = 5
		c.Generations = 0
	})
	objectives := []*core.Objective{core.MustObjective("v", 1, "maximize", nil)}
	space := make([]core.Solution, 20)
	for i := range space {
		space[i] = core.SolutionOf("v", i)
	}
	initial := []core.Solution{
		core.SolutionOf("v", 100), core.SolutionOf("v", 104), core.SolutionOf("v", 101),
		core.SolutionOf("v", 103), core.SolutionOf("v", 102),
	}

	report, err := o.Run(context.Background(), Problem{Objectives: objectives, Space: space, Initial: initial})
	require.NoError(t, err)
	assert.Equal(t, PathGenetic, report.Path)
	assert.Equal(t, 0, report.Generations)
	assert.Len(t, report.BestFitness, 1)
	assert.Equal(t, 5, report.Evaluations)
	assertSolutions(t, []core.Solution{core.SolutionOf("v", 104)}, report.Frontier)
}

func TestGenetic_ElitismKeepsBestFeasible(t *testing.T) {
	o := newOptimizer(t, func(c *Config) {
		c.PopulationSize = 50
		c.Generations = 20
	})
	objectives := []*core.Objective{core.MustObjective("x", 1, "maximize", nil)}
	even := core.MustConstraint("even", core.Check(func(s core.Solution) bool {
		v, _ := s.Get("x")
		f, _ := v.Float()
		return int(f)%2 == 0
	}))
	space := make([]core.Solution, 500)
	for i := range space {
		space[i] = core.SolutionOf("x", i)
	}

	report, err := o.Run(context.Background(), Problem{
		Objectives:  objectives,
		Constraints: []*core.Constraint{even},
		Space:       space,
		Initial:     []core.Solution{core.SolutionOf("x", 498)},
	})
	require.NoError(t, err)
	assert.Equal(t, 20, report.Generations)
	assert.Len(t, report.BestFitness, 21)
	for _, best := range report.BestFitness {
		assert.Greater(t, best, 0.0)
	}
	// elites and unmutated copies may repeat the best solution
	require.NotEmpty(t, report.Frontier)
	for _, s := range report.Frontier {
		assert.True(t, s.Equal(core.SolutionOf("x", 498)), "unexpected frontier member %s", s)
	}
}

func TestGenetic_SeededRunsAreReproducible(t *testing.T) {
	objectives := []*core.Objective{
		core.MustObjective("x", 0.6, "maximize", nil),
		core.MustObjective("y", 0.4, "minimize", nil),
	}
	space := gridSpace(300)

	run := func(parallelism int) *Report {
		o, err := New(Config{
			PopulationSize: 20,
			Generations:    15,
			MutationRate:   0.3,
			CrossoverRate:  0.8,
			ElitismRatio:   0.1,
			Parallelism:    parallelism,
		}, WithSeed(7))
		require.NoError(t, err)
		report, err := o.Run(context.Background(), Problem{Objectives: objectives, Space: space})
		require.NoError(t, err)
		return report
	}

	sequential := run(1)
	assertSolutions(t, sequential.Frontier, run(1).Frontier)

	parallel := run(4)
	assertSolutions(t, sequential.Frontier, parallel.Frontier)
	assert.Equal(t, sequential.BestFitness, parallel.BestFitness)
	assert.Equal(t, sequential.Evaluations, parallel.Evaluations)
	assert.NotEmpty(t, sequential.Frontier)
}

func TestGenetic_ZeroGenerationsKeepsTiedDuplicates(t *testing.T) {
	o := newOptimizer(t, func(c *Config) {
		c.PopulationSize = 3
		c.Generations = 0
	})
	objectives := []*core.Objective{core.MustObjective("v", 1, "maximize", nil)}
	space := []core.Solution{
		core.SolutionOf("v", 1), core.SolutionOf("v", 2), core.SolutionOf("v", 3), core.SolutionOf("v", 4),
	}
	initial := []core.Solution{core.SolutionOf("v", 9), core.SolutionOf("v", 9), core.SolutionOf("v", 0)}

	report, err := o.Run(context.Background(), Problem{Objectives: objectives, Space: space, Initial: initial})
	require.NoError(t, err)
	assert.Equal(t, PathGenetic, report.Path)
	assertSolutions(t, []core.Solution{core.SolutionOf("v", 9), core.SolutionOf("v", 9)}, report.Frontier)
}

func TestGenetic_FrontierIsFeasible(t *testing.T) {
	o := newOptimizer(t, func(c *Config) {
		c.PopulationSize = 10
		c.Generations = 10
	})
	objectives := []*core.Objective{
		core.MustObjective("x", 1, "maximize", nil),
		core.MustObjective("y", 1, "maximize", nil),
	}
	constraints := []*core.Constraint{core.RangeConstraint("y", 0, 40)}

	got, err := o.Optimize(context.Background(), objectives, constraints, gridSpace(100))
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for _, s := range got {
		y, _ := s.Get("y")
		f, _ := y.Float()
		assert.LessOrEqual(t, f, 40.0)
	}
}

func TestInitPopulation(t *testing.T) {
	space := gridSpace(10)
	r := &run{cfg: Config{PopulationSize: 4}, rng: rand.New(rand.NewSource(3))}

	seeded := r.initPopulation(space, []core.Solution{core.SolutionOf("x", 99)})
	require.Len(t, seeded, 4)
	assert.True(t, seeded[0].Equal(core.SolutionOf("x", 99)))
	seen := make(map[string]bool)
	for _, s := range seeded[1:] {
		assert.False(t, seen[s.Fingerprint()], "sampled with replacement")
		seen[s.Fingerprint()] = true
	}

	// initial solutions beyond the population size are dropped
	many := gridSpace(6)
	assertSolutions(t, many[:4], r.initPopulation(space, many))

	// a short space is used whole and padded with duplicates
	r.cfg.PopulationSize = 7
	padded := r.initPopulation(space[:3], nil)
	require.Len(t, padded, 7)
	assertSolutions(t, space[:3], padded[:3])
}

type countingMutator struct{ calls int }

func (m *countingMutator) Mutate(_ *rand.Rand, s core.Solution, _ []core.Solution) core.Solution {
	m.calls++
	return s.With("mutated", core.Bool(true))
}

func TestReproduce_OddPopulation(t *testing.T) {
	mut := &countingMutator{}
	o := newOptimizer(t, func(c *Config) {
		c.MutationRate = 1
		c.CrossoverRate = 0
	}, WithMutator(mut))
	r, err := o.newRun(nil, nil)
	require.NoError(t, err)
	r.rng = rand.New(rand.NewSource(1))

	pop := gridSpace(5)
	children := r.reproduce(pop, []int{0, 1, 2, 3, 4}, pop)
	require.Len(t, children, 5)
	assert.Equal(t, 5, mut.calls)
	for i, c := range children {
		assert.True(t, c.Has("mutated"))
		x, _ := c.Get("x")
		assert.True(t, x.Equal(core.Int(int64(i))))
	}
	// parents are untouched
	assert.False(t, pop[0].Has("mutated"))
}

func TestEliteIndices(t *testing.T) {
	fit := []float64{0.2, 0.9, 0.5, 0.9, 0.1}
	assert.Equal(t, []int{1, 3}, eliteIndices(fit, 2))
	assert.Empty(t, eliteIndices(fit, 0))
	assert.Len(t, eliteIndices(fit, 10), 5)
}

func TestGenetic_CacheServesRepeatedSolutions(t *testing.T) {
	var calls atomic.Int32
	price := func(_ context.Context, s core.Solution) (float64, error) {
		calls.Add(1)
		v, _ := s.Get("x")
		return v.Float()
	}
	objectives := []*core.Objective{core.MustObjective("price", 1, "maximize", price)}
	space := gridSpace(30)

	cached := newOptimizer(t, func(c *Config) {
		c.PopulationSize = 10
		c.Generations = 10
		c.CacheSize = 64
	})
	report, err := cached.Run(context.Background(), Problem{Objectives: objectives, Space: space})
	require.NoError(t, err)
	assert.Less(t, int(calls.Load()), report.Evaluations)
}

func TestGenetic_GuardRejectionsAreSubstituted(t *testing.T) {
	m := metrics.NewPrometheusMetrics(nil)
	guard := limiter.NewGuard(limiter.GuardConfig{
		CircuitBreaker: &limiter.CircuitBreakerConfig{
			MaxRequests: 1,
			Timeout:     time.Hour,
			ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 2 },
		},
	})
	var calls atomic.Int32
	down := func(context.Context, core.Solution) (float64, error) {
		calls.Add(1)
		return 0, errors.New("quote service down")
	}
	objectives := []*core.Objective{core.MustObjective("quote", 1, "maximize", down)}

	o := newOptimizer(t, nil, WithGuard(guard), WithMetrics(m))
	ranked, err := o.RankSolutions(context.Background(), gridSpace(5), objectives, nil)
	require.NoError(t, err)
	require.Len(t, ranked, 5)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 3.0, testutil.ToFloat64(m.GuardRejectionsTotal.WithLabelValues("quote", limiter.ReasonCircuitOpen)))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.EvaluationErrorsTotal.WithLabelValues("quote")))
}
