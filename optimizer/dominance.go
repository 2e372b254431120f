package optimizer

// Dominates reports whether a dominates b. Both vectors hold
// direction-adjusted values where larger is better. a dominates b when it is
// no worse on every objective and the vectors differ, so identical vectors
// never dominate each other.
func Dominates(a, b []float64) bool {
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

// ParetoFront returns the indices of the non-dominated vectors in input order.
func ParetoFront(vectors [][]float64) []int {
	front := make([]int, 0, len(vectors))
	for i := range vectors {
		dominated := false
		for j := range vectors {
			if i != j && Dominates(vectors[j], vectors[i]) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, i)
		}
	}
	return front
}
