package core

import (
	"context"
	"fmt"
	"strings"
)

// Direction states whether larger or smaller objective values are preferred.
type Direction int

const (
	Maximize Direction = iota
	Minimize
)

func (d Direction) String() string {
	if d == Minimize {
		return "minimize"
	}
	return "maximize"
}

// ParseDirection accepts exactly "maximize" or "minimize".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "maximize":
		return Maximize, nil
	case "minimize":
		return Minimize, nil
	default:
		return 0, &ConfigurationError{Field: "direction", Reason: fmt.Sprintf("%q is not maximize or minimize", s)}
	}
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// EvalFunc scores a solution on one dimension. It may block on external
// systems and should honor ctx.
type EvalFunc func(ctx context.Context, s Solution) (float64, error)

// Objective is one weighted, directed scoring dimension.
type Objective struct {
	Name      string
	Weight    float64
	Direction Direction
	// Eval overrides the default lookup of the attribute named Name.
	Eval EvalFunc
}

// NewObjective validates direction and clamps weight into [0,1].
func NewObjective(name string, weight float64, direction string, eval EvalFunc) (*Objective, error) {
	if name == "" {
		return nil, &ConfigurationError{Field: "name", Reason: "objective name is required"}
	}
	d, err := ParseDirection(direction)
	if err != nil {
		return nil, fmt.Errorf("objective %q: %w", name, err)
	}
	return &Objective{
		Name:      name,
		Weight:    ClampWeight(weight),
		Direction: d,
		Eval:      eval,
	}, nil
}

// MustObjective is NewObjective for statically known definitions.
func MustObjective(name string, weight float64, direction string, eval EvalFunc) *Objective {
	o, err := NewObjective(name, weight, direction, eval)
	if err != nil {
		panic(err)
	}
	return o
}

// ClampWeight maps any weight into [0,1]. NaN becomes 0.
func ClampWeight(w float64) float64 {
	switch {
	case w != w, w < 0:
		return 0
	case w > 1:
		return 1
	default:
		return w
	}
}

// Evaluate returns the raw objective value for s. Errors and panics of a
// custom Eval come back as *EvaluationError.
func (o *Objective) Evaluate(ctx context.Context, s Solution) (v float64, err error) {
	if o.Eval != nil {
		defer func() {
			if r := recover(); r != nil {
				v, err = 0, &EvaluationError{Objective: o.Name, Solution: s, Err: fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err = o.Eval(ctx, s)
		if err != nil {
			return 0, &EvaluationError{Objective: o.Name, Solution: s, Err: err}
		}
		return v, nil
	}

	raw, ok := s.Get(o.Name)
	if !ok {
		return 0, &EvaluationError{Objective: o.Name, Solution: s, Err: ErrMissingKey}
	}
	v, err = raw.Float()
	if err != nil {
		return 0, &EvaluationError{Objective: o.Name, Solution: s, Err: err}
	}
	return v, nil
}

// Normalize scales value into [0,1] against [min,max]. A degenerate range
// yields 0.5; minimize objectives are inverted.
func (o *Objective) Normalize(value, min, max float64) float64 {
	if min == max {
		return 0.5
	}
	n := (value - min) / (max - min)
	if o.Direction == Minimize {
		return 1 - n
	}
	return n
}

// Adjusted maps a raw value so that larger is always better.
func (o *Objective) Adjusted(value float64) float64 {
	if o.Direction == Minimize {
		return -value
	}
	return value
}

func (o *Objective) String() string {
	return fmt.Sprintf("%s(%s, w=%g)", o.Name, o.Direction, o.Weight)
}

// Score is the weighted normalized contribution of value to fitness.
func (o *Objective) Score(value, min, max float64) float64 {
	return o.Weight * o.Normalize(value, min, max)
}
