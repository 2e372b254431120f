package optimizer

import "math/rand"

// TournamentSelector picks each parent as the fittest of Size distinct,
// uniformly drawn individuals. Tournaments are independent, so one individual
// may win several times.
type TournamentSelector struct {
	Size int
}

func NewTournamentSelector(size int) *TournamentSelector {
	return &TournamentSelector{Size: size}
}

func (t *TournamentSelector) Select(rng *rand.Rand, fitness []float64, n int) []int {
	if len(fitness) == 0 || n <= 0 {
		return nil
	}
	size := t.Size
	if size < 1 {
		size = 1
	}
	if size > len(fitness) {
		size = len(fitness)
	}

	idx := make([]int, len(fitness))
	for i := range idx {
		idx[i] = i
	}

	winners := make([]int, n)
	for w := range winners {
		// partial Fisher-Yates: idx[:size] becomes a uniform sample
		for j := 0; j < size; j++ {
			r := j + rng.Intn(len(idx)-j)
			idx[j], idx[r] = idx[r], idx[j]
		}
		best := idx[0]
		for _, c := range idx[1:size] {
			if fitness[c] > fitness[best] {
				best = c
			}
		}
		winners[w] = best
	}
	return winners
}
