package local

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/snow-ghost/decision/core"
)

// Guard enforces a core.Budget around one optimize call.
// - Wrap: applies the wall-clock Timeout to the run's context
// - Spend: counts objective evaluations against MaxEvaluations
// A Guard is single-use; create one per call.
type Guard struct {
	budget core.Budget
	spent  atomic.Int64
}

func NewGuard(b core.Budget) *Guard {
	return &Guard{budget: b}
}

// Wrap runs fn under the budget's timeout. With no timeout fn runs on ctx as is.
// A run cut short by the deadline reports context.DeadlineExceeded even if fn
// returned a wrapped variant.
func (g *Guard) Wrap(ctx context.Context, run func(ctx context.Context) error) error {
	if g.budget.Timeout <= 0 {
		return run(ctx)
	}

	execCtx, cancel := context.WithTimeout(ctx, g.budget.Timeout)
	defer cancel()

	err := run(execCtx)
	if err != nil && errors.Is(execCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("budget timeout %s: %w", g.budget.Timeout, context.DeadlineExceeded)
	}
	return err
}

// Spend reserves n evaluations. It fails with core.ErrBudgetExhausted once
// the reservation would exceed MaxEvaluations; the failed reservation is not kept.
func (g *Guard) Spend(n int) error {
	if g.budget.MaxEvaluations <= 0 {
		g.spent.Add(int64(n))
		return nil
	}
	total := g.spent.Add(int64(n))
	if total > int64(g.budget.MaxEvaluations) {
		g.spent.Add(-int64(n))
		return fmt.Errorf("%w: %d of %d evaluations used", core.ErrBudgetExhausted, total-int64(n), g.budget.MaxEvaluations)
	}
	return nil
}

// Spent returns the number of evaluations reserved so far.
func (g *Guard) Spent() int { return int(g.spent.Load()) }

// Remaining returns the evaluations left, or -1 when unbounded.
func (g *Guard) Remaining() int {
	if g.budget.MaxEvaluations <= 0 {
		return -1
	}
	return g.budget.MaxEvaluations - g.Spent()
}
