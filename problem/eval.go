package problem

import (
	"context"

	"github.com/snow-ghost/decision/core"
)

// lookup reads attribute key as the objective value
func lookup(key string) core.EvalFunc {
	return func(_ context.Context, s core.Solution) (float64, error) {
		v, ok := s.Get(key)
		if !ok {
			return 0, core.ErrMissingKey
		}
		return v.Float()
	}
}
