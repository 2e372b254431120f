package mutate

import (
	"math/rand"

	"github.com/snow-ghost/decision/core"
)

// UniformCrossover swaps every attribute the parents share with probability
// 0.5, one coin per key. An attribute only one parent has goes to both children.
// Key order follows a, then the keys only b has.
type UniformCrossover struct{}

func NewUniformCrossover() *UniformCrossover { return &UniformCrossover{} }

func (c *UniformCrossover) Recombine(rng *rand.Rand, a, b core.Solution) (core.Solution, core.Solution) {
	left := make([]any, 0, 2*(a.Len()+b.Len()))
	right := make([]any, 0, 2*(a.Len()+b.Len()))

	for _, k := range a.Keys() {
		va, _ := a.Get(k)
		vb, shared := b.Get(k)
		if !shared {
			left = append(left, k, va)
			right = append(right, k, va)
			continue
		}
		if rng.Float64() < 0.5 {
			va, vb = vb, va
		}
		left = append(left, k, va)
		right = append(right, k, vb)
	}
	for _, k := range b.Keys() {
		if a.Has(k) {
			continue
		}
		vb, _ := b.Get(k)
		left = append(left, k, vb)
		right = append(right, k, vb)
	}

	return core.SolutionOf(left...), core.SolutionOf(right...)
}
