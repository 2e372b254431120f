package mutate

import (
	"math/rand"

	"github.com/snow-ghost/decision/core"
)

// SpaceMutator overwrites one random attribute of a solution with the value
// the same attribute has in a random member of the solution space.
// It never modifies its input and always consumes two draws from rng, so a
// seeded run stays aligned even when the donor lacks the key.
type SpaceMutator struct{}

func NewSpaceMutator() *SpaceMutator { return &SpaceMutator{} }

func (m *SpaceMutator) Mutate(rng *rand.Rand, s core.Solution, space []core.Solution) core.Solution {
	if s.Len() == 0 || len(space) == 0 {
		return s
	}
	keys := s.Keys()
	key := keys[rng.Intn(len(keys))]
	donor := space[rng.Intn(len(space))]

	v, ok := donor.Get(key)
	if !ok {
		return s
	}
	return s.With(key, v)
}
