package core

import (
	"gonum.org/v1/gonum/floats"
)

// Window is the per-objective [min,max] range observed over one evaluated set.
// Fitness is always normalized against the window of the set being scored.
type Window struct {
	Min []float64
	Max []float64
}

// NewWindow computes the range of every objective column. values[i][k] is
// the raw value of objective k on solution i.
func NewWindow(values [][]float64, numObjectives int) Window {
	w := Window{Min: make([]float64, numObjectives), Max: make([]float64, numObjectives)}
	if len(values) == 0 {
		return w
	}
	column := make([]float64, len(values))
	for k := 0; k < numObjectives; k++ {
		for i, row := range values {
			column[i] = row[k]
		}
		w.Min[k] = floats.Min(column)
		w.Max[k] = floats.Max(column)
	}
	return w
}

// WeightedFitness evaluates fitness as the weight-averaged normalized
// objective score minus the constraint violation penalty.
type WeightedFitness struct {
	Objectives  []*Objective
	Constraints []*Constraint

	totalWeight  float64
	totalPenalty float64
}

func NewWeightedFitness(objectives []*Objective, constraints []*Constraint) *WeightedFitness {
	w := &WeightedFitness{Objectives: objectives, Constraints: constraints}
	for _, o := range objectives {
		w.totalWeight += o.Weight
	}
	for _, c := range constraints {
		w.totalPenalty += c.Penalty
	}
	return w
}

// TotalPenalty is the sum of all constraint penalties. Every violated
// constraint costs this full amount.
func (w *WeightedFitness) TotalPenalty() float64 { return w.totalPenalty }

// Score returns the fitness of one solution given its raw objective values,
// the window of the set it belongs to and its count of violated constraints.
// The result is never negative.
func (w *WeightedFitness) Score(values []float64, window Window, violations int) float64 {
	score := 0.0
	if w.totalWeight > 0 {
		for k, o := range w.Objectives {
			score += o.Score(values[k], window.Min[k], window.Max[k])
		}
		score /= w.totalWeight
	}
	score -= float64(violations) * w.totalPenalty
	if score < 0 {
		return 0
	}
	return score
}
