package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDominates(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want bool
	}{
		{"strictly better everywhere", []float64{2, 2}, []float64{1, 1}, true},
		{"better on one, equal on other", []float64{2, 1}, []float64{1, 1}, true},
		{"identical", []float64{1, 1}, []float64{1, 1}, false},
		{"trade-off", []float64{2, 0}, []float64{1, 1}, false},
		{"worse", []float64{0, 0}, []float64{1, 1}, false},
		{"no objectives", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dominates(tt.a, tt.b))
		})
	}
}

func TestParetoFront(t *testing.T) {
	vectors := [][]float64{
		{1, 5}, // front
		{5, 1}, // front
		{3, 3}, // front
		{2, 2}, // dominated by {3,3}
		{3, 3}, // tie with index 2, survives
		{0, 5}, // dominated by {1,5}
	}
	assert.Equal(t, []int{0, 1, 2, 4}, ParetoFront(vectors))
	assert.Empty(t, ParetoFront(nil))
	assert.Equal(t, []int{0}, ParetoFront([][]float64{{7}}))
}
