package optimizer

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/snow-ghost/decision/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankSolutions_SortedDescending(t *testing.T) {
	o := newOptimizer(t, nil)
	objectives := []*core.Objective{
		core.MustObjective("revenue", 0.8, "maximize", nil),
		core.MustObjective("risk", 0.2, "minimize", nil),
	}
	solutions := gridSpace(40)
	for i := range solutions {
		x, _ := solutions[i].Get("x")
		y, _ := solutions[i].Get("y")
		solutions[i] = core.SolutionOf("revenue", x, "risk", y)
	}

	ranked, err := o.RankSolutions(context.Background(), solutions, objectives, nil)
	require.NoError(t, err)
	require.Len(t, ranked, len(solutions))
	assert.True(t, sort.SliceIsSorted(ranked, func(a, b int) bool { return ranked[a].Fitness > ranked[b].Fitness }))
	for _, r := range ranked {
		assert.GreaterOrEqual(t, r.Fitness, 0.0)
		assert.LessOrEqual(t, r.Fitness, 1.0)
	}
}

func TestRankSolutions_ViolationLowersFitness(t *testing.T) {
	o := newOptimizer(t, nil)
	objectives := []*core.Objective{core.MustObjective("price", 1, "maximize", nil)}
	constraints := []*core.Constraint{core.EqualsConstraint("in_stock", core.Bool(true))}
	solutions := []core.Solution{
		core.SolutionOf("price", 10, "in_stock", true),
		core.SolutionOf("price", 10, "in_stock", false),
		core.SolutionOf("price", 5, "in_stock", true),
	}

	ranked, err := o.RankSolutions(context.Background(), solutions, objectives, constraints)
	require.NoError(t, err)
	assert.Equal(t, 1.0, ranked[0].Fitness)
	assert.True(t, ranked[0].Solution.Equal(solutions[0]))

	// ties keep input order
	assert.True(t, ranked[1].Solution.Equal(solutions[1]))
	assert.True(t, ranked[2].Solution.Equal(solutions[2]))
	assert.Less(t, ranked[1].Fitness, ranked[0].Fitness)
}

func TestRankSolutions_ZeroWeights(t *testing.T) {
	o := newOptimizer(t, nil)
	objectives := []*core.Objective{core.MustObjective("price", 0, "maximize", nil)}
	ranked, err := o.RankSolutions(context.Background(), priceSpace(3, 1, 2), objectives, nil)
	require.NoError(t, err)
	for _, r := range ranked {
		assert.Equal(t, 0.0, r.Fitness)
	}
	assertSolutions(t, priceSpace(3, 1, 2), []core.Solution{ranked[0].Solution, ranked[1].Solution, ranked[2].Solution})
}

func TestRankSolutions_Empty(t *testing.T) {
	o := newOptimizer(t, nil)
	ranked, err := o.RankSolutions(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)

	_, ok := Best(ranked)
	assert.False(t, ok)
}

func TestRankSolutions_EvaluationErrors(t *testing.T) {
	boom := errors.New("no quote")
	objectives := []*core.Objective{
		core.MustObjective("quote", 1, "maximize", func(_ context.Context, s core.Solution) (float64, error) {
			if s.Has("broken") {
				return 0, boom
			}
			return 1, nil
		}),
	}
	solutions := []core.Solution{core.SolutionOf("broken", true), core.SolutionOf("ok", true)}

	ranked, err := newOptimizer(t, nil).RankSolutions(context.Background(), solutions, objectives, nil)
	require.NoError(t, err)
	best, ok := Best(ranked)
	require.True(t, ok)
	assert.True(t, best.Solution.Has("ok"))

	abort := newOptimizer(t, func(c *Config) { c.OnEvaluationError = Abort })
	_, err = abort.RankSolutions(context.Background(), solutions, objectives, nil)
	assert.ErrorIs(t, err, boom)
}
