package optimizer

import (
	"context"
	"fmt"
	"sort"

	"github.com/snow-ghost/decision/core"
	"github.com/snow-ghost/decision/pkg/tracing"
)

// RankSolutions scores every solution with the weighted fitness used by the
// genetic search and returns them by fitness, highest first. Ties keep input
// order. The normalization window is the one of solutions itself.
func (o *Optimizer) RankSolutions(ctx context.Context, solutions []core.Solution, objectives []*core.Objective, constraints []*core.Constraint) ([]core.Ranked, error) {
	ctx, span := o.obs.GetTracer().StartRankSpan(ctx, len(solutions))
	defer span.End()

	r, err := o.newRun(objectives, constraints)
	if err != nil {
		tracing.RecordSpanError(span, err)
		return nil, err
	}

	var recs []record
	err = r.budget.Wrap(ctx, func(ctx context.Context) error {
		var err error
		recs, err = r.evaluate(ctx, solutions, false)
		return err
	})
	if err != nil {
		err = fmt.Errorf("rank: %w", err)
		tracing.RecordSpanError(span, err)
		return nil, err
	}

	fit := r.score(recs)
	ranked := make([]core.Ranked, len(solutions))
	for i, s := range solutions {
		ranked[i] = core.Ranked{Solution: s, Fitness: fit[i]}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Fitness > ranked[b].Fitness })

	tracing.RecordSpanSuccess(span)
	return ranked, nil
}

// Best returns the top entry of a ranking.
func Best(ranked []core.Ranked) (core.Ranked, bool) {
	if len(ranked) == 0 {
		return core.Ranked{}, false
	}
	return ranked[0], true
}
