package optimizer

import (
	"context"
	"math/rand"
	"sync/atomic"

	"github.com/snow-ghost/decision/core"
	"github.com/snow-ghost/decision/pkg/observability"
	"github.com/snow-ghost/decision/policy/local"
	"golang.org/x/sync/errgroup"
)

// record is the evaluation of one solution.
type record struct {
	values     []float64 // raw objective values, 0.0 where substituted
	violations int
	evaluated  bool // false when skipped as infeasible
}

func (r record) feasible() bool { return r.violations == 0 }

// run holds the state of one optimize or rank call.
type run struct {
	cfg         Config
	rng         *rand.Rand
	obs         *observability.Manager
	objectives  []*core.Objective
	constraints []*core.Constraint
	fitness     *core.WeightedFitness
	budget      *local.Guard
	report      *Report

	selector   core.Selector
	recombiner core.Recombiner
	mutator    core.Mutator

	errors atomic.Int64
}

// evaluate checks constraints and evaluates objectives for every solution,
// up to cfg.Parallelism at a time. Results keep input order. With
// skipInfeasible, objectives are not evaluated for infeasible solutions.
func (r *run) evaluate(ctx context.Context, sols []core.Solution, skipInfeasible bool) ([]record, error) {
	recs := make([]record, len(sols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Parallelism)
	for i := range sols {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			rec, err := r.evaluateOne(gctx, sols[i], skipInfeasible)
			if err != nil {
				return err
			}
			recs[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *run) evaluateOne(ctx context.Context, s core.Solution, skipInfeasible bool) (record, error) {
	var rec record
	for _, c := range r.constraints {
		ok, err := c.IsSatisfied(ctx, s)
		if err != nil {
			return rec, err
		}
		if !ok {
			rec.violations++
			r.obs.RecordViolation(c.Name)
		}
	}
	if skipInfeasible && !rec.feasible() {
		return rec, nil
	}

	if err := r.budget.Spend(len(r.objectives)); err != nil {
		return rec, err
	}
	rec.values = make([]float64, len(r.objectives))
	rec.evaluated = true
	for k, o := range r.objectives {
		v, err := o.Evaluate(ctx, s)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return rec, ctxErr
			}
			if r.cfg.OnEvaluationError == Abort {
				r.obs.RecordEvaluationFailure(o.Name)
				return rec, err
			}
			r.errors.Add(1)
			r.obs.RecordEvaluation(ctx, o.Name, err)
			rec.values[k] = 0
			continue
		}
		r.obs.RecordEvaluation(ctx, o.Name, nil)
		rec.values[k] = v
	}
	return rec, nil
}

// score returns the fitness of every record, normalized against the
// objective window of recs itself. All records must be evaluated.
func (r *run) score(recs []record) []float64 {
	values := make([][]float64, len(recs))
	for i, rec := range recs {
		values[i] = rec.values
	}
	window := core.NewWindow(values, len(r.objectives))

	fit := make([]float64, len(recs))
	for i, rec := range recs {
		fit[i] = r.fitness.Score(rec.values, window, rec.violations)
	}
	return fit
}

// frontier returns the non-dominated feasible solutions in input order.
func (r *run) frontier(sols []core.Solution, recs []record) []core.Solution {
	candidates := make([]int, 0, len(recs))
	vectors := make([][]float64, 0, len(recs))
	for i, rec := range recs {
		if !rec.evaluated || !rec.feasible() {
			continue
		}
		v := make([]float64, len(rec.values))
		for k, o := range r.objectives {
			v[k] = o.Adjusted(rec.values[k])
		}
		candidates = append(candidates, i)
		vectors = append(vectors, v)
	}

	front := ParetoFront(vectors)
	out := make([]core.Solution, len(front))
	for i, f := range front {
		out[i] = sols[candidates[f]]
	}
	return out
}
