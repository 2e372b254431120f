package testkit

import (
	"context"
	"fmt"

	"github.com/snow-ghost/decision/core"
)

// CheckFrontier verifies the structural properties every returned frontier
// must have:
//   - each member satisfies every constraint
//   - no member dominates another
//
// Objective values are read with Evaluate and direction-adjusted.
func CheckFrontier(ctx context.Context, objectives []*core.Objective, constraints []*core.Constraint, frontier []core.Solution) error {
	vectors := make([][]float64, len(frontier))
	for i, s := range frontier {
		for _, c := range constraints {
			ok, err := c.IsSatisfied(ctx, s)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("frontier member %s violates %q", Label(s), c.Name)
			}
		}
		v := make([]float64, len(objectives))
		for k, o := range objectives {
			raw, err := o.Evaluate(ctx, s)
			if err != nil {
				return err
			}
			v[k] = o.Adjusted(raw)
		}
		vectors[i] = v
	}

	for i := range vectors {
		for j := range vectors {
			if i != j && dominates(vectors[j], vectors[i]) {
				return fmt.Errorf("frontier member %s is dominated by %s", Label(frontier[i]), Label(frontier[j]))
			}
		}
	}
	return nil
}

// CheckSubset verifies every member of got appears in space.
func CheckSubset(space, got []core.Solution) error {
	index := make(map[string]struct{}, len(space))
	for _, s := range space {
		index[s.Fingerprint()] = struct{}{}
	}
	for _, s := range got {
		if _, ok := index[s.Fingerprint()]; !ok {
			return fmt.Errorf("solution %s is not in the space", Label(s))
		}
	}
	return nil
}

func dominates(a, b []float64) bool {
	better := false
	for k := range a {
		if a[k] < b[k] {
			return false
		}
		if a[k] > b[k] {
			better = true
		}
	}
	return better
}
