package optimizer

import (
	"context"
	"sort"

	"github.com/snow-ghost/decision/core"
	"github.com/snow-ghost/decision/pkg/tracing"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// genetic evolves a population drawn from space for cfg.Generations
// generations and returns the frontier of the last one. Elites carry their
// evaluation forward, so only offspring are evaluated each generation, and
// the frontier is read from those stored evaluations rather than from a
// fresh pass over the final population. The two agree for deterministic
// evaluators; an evaluator with side effects or varying output is not
// called again at the end. Identical solutions on the frontier are all kept.
func (r *run) genetic(ctx context.Context, space, initial []core.Solution) ([]core.Solution, error) {
	pop := r.initPopulation(space, initial)
	recs, err := r.evaluate(ctx, pop, false)
	if err != nil {
		return nil, err
	}

	for gen := 0; gen < r.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pop, recs, err = r.generation(ctx, gen, pop, recs, space)
		if err != nil {
			return nil, err
		}
		r.report.Generations++
	}

	r.observe(ctx, r.cfg.Generations, r.score(recs), recs)
	return r.frontier(pop, recs), nil
}

// generation runs select, reproduce and elitism merge once and evaluates the offspring.
func (r *run) generation(ctx context.Context, gen int, pop []core.Solution, recs []record, space []core.Solution) ([]core.Solution, []record, error) {
	ctx, span := r.obs.GetTracer().StartGenerationSpan(ctx, gen)
	defer span.End()

	n := len(pop)
	fit := r.score(recs)
	best := r.observe(ctx, gen, fit, recs)
	tracing.AddSpanAttributes(span, map[string]interface{}{"optimizer.best_fitness": best})

	parents := r.selector.Select(r.rng, fit, n)
	children := r.reproduce(pop, parents, space)

	elites := eliteIndices(fit, r.cfg.EliteCount())
	next := make([]core.Solution, 0, n)
	nextRecs := make([]record, 0, n)
	for _, i := range elites {
		next = append(next, pop[i])
		nextRecs = append(nextRecs, recs[i])
	}

	offspring := children[:n-len(elites)]
	offRecs, err := r.evaluate(ctx, offspring, false)
	if err != nil {
		tracing.RecordSpanError(span, err)
		return nil, nil, err
	}
	tracing.RecordSpanSuccess(span)

	return append(next, offspring...), append(nextRecs, offRecs...), nil
}

// initPopulation seeds with initial, then fills from space without
// replacement, padding with random duplicates when space runs short.
func (r *run) initPopulation(space, initial []core.Solution) []core.Solution {
	n := r.cfg.PopulationSize
	if len(initial) > n {
		initial = initial[:n]
	}
	pop := make([]core.Solution, 0, n)
	pop = append(pop, initial...)

	remaining := n - len(pop)
	if remaining == 0 || len(space) == 0 {
		return pop
	}
	if remaining <= len(space) {
		for _, i := range r.rng.Perm(len(space))[:remaining] {
			pop = append(pop, space[i])
		}
		return pop
	}

	pop = append(pop, space...)
	for len(pop) < n {
		pop = append(pop, space[r.rng.Intn(len(space))])
	}
	return pop
}

// reproduce pairs parents consecutively, crosses each pair with
// CrossoverRate and mutates every child with MutationRate. An unpaired last
// parent is copied as a single child.
func (r *run) reproduce(pop []core.Solution, parents []int, space []core.Solution) []core.Solution {
	children := make([]core.Solution, 0, len(parents))
	for i := 0; i < len(parents); i += 2 {
		a := pop[parents[i]]
		if i+1 == len(parents) {
			children = append(children, r.mutate(a, space))
			break
		}
		b := pop[parents[i+1]]
		if r.rng.Float64() < r.cfg.CrossoverRate {
			a, b = r.recombiner.Recombine(r.rng, a, b)
		}
		children = append(children, r.mutate(a, space), r.mutate(b, space))
	}
	return children
}

func (r *run) mutate(s core.Solution, space []core.Solution) core.Solution {
	if r.rng.Float64() < r.cfg.MutationRate {
		return r.mutator.Mutate(r.rng, s, space)
	}
	return s
}

// observe records the fitness summary of one evaluated population and returns its best fitness.
func (r *run) observe(ctx context.Context, gen int, fit []float64, recs []record) float64 {
	if len(fit) == 0 {
		return 0
	}
	best := floats.Max(fit)
	feasible := 0
	for _, rec := range recs {
		if rec.feasible() {
			feasible++
		}
	}
	r.report.BestFitness = append(r.report.BestFitness, best)
	r.obs.RecordGeneration(ctx, gen, best, stat.Mean(fit, nil), feasible)
	return best
}

// eliteIndices returns the indices of the k fittest, ties in index order.
func eliteIndices(fit []float64, k int) []int {
	idx := make([]int, len(fit))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return fit[idx[a]] > fit[idx[b]] })
	if k > len(idx) {
		k = len(idx)
	}
	return idx[:k]
}
