package core

import "math/rand"

// Selector picks n parent indices from a scored population.
type Selector interface {
	Select(rng *rand.Rand, fitness []float64, n int) []int
}

// Recombiner produces two children from two parents. Parents are never modified.
type Recombiner interface {
	Recombine(rng *rand.Rand, a, b Solution) (Solution, Solution)
}

// Mutator perturbs a child, drawing replacement values from the solution space.
type Mutator interface {
	Mutate(rng *rand.Rand, s Solution, space []Solution) Solution
}
