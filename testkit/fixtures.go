// Package testkit provides deterministic problem fixtures and property checks
// for optimizer results.
package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/snow-ghost/decision/core"
)

// RandomSpace returns n solutions whose attributes are uniform integers in
// [0,100). Each solution also carries an "id" attribute.
func RandomSpace(rng *rand.Rand, n int, keys ...string) []core.Solution {
	space := make([]core.Solution, n)
	for i := range space {
		kv := make([]any, 0, 2*(len(keys)+1))
		kv = append(kv, "id", i)
		for _, k := range keys {
			kv = append(kv, k, rng.Intn(100))
		}
		space[i] = core.SolutionOf(kv...)
	}
	return space
}

// TradeOffSpace returns n solutions on a convex front: "gain" rises with
// i while "cost" rises quadratically. Every solution is Pareto optimal for
// maximize gain / minimize cost.
func TradeOffSpace(n int) []core.Solution {
	space := make([]core.Solution, n)
	for i := range space {
		x := float64(i) / math.Max(1, float64(n-1))
		space[i] = core.SolutionOf("id", i, "gain", x, "cost", x*x)
	}
	return space
}

// TradeOffObjectives returns the objectives matching TradeOffSpace.
func TradeOffObjectives() []*core.Objective {
	return []*core.Objective{
		core.MustObjective("gain", 1, "maximize", nil),
		core.MustObjective("cost", 1, "minimize", nil),
	}
}

// Label names a fixture solution for test output.
func Label(s core.Solution) string {
	if id, ok := s.Get("id"); ok {
		return fmt.Sprintf("#%s", id)
	}
	return s.String()
}
