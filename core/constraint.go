package core

import (
	"context"
	"fmt"
)

// DefaultPenalty is the penalty carried by a constraint unless overridden.
const DefaultPenalty = 1000.0

// Predicate reports whether s is feasible with respect to one rule.
type Predicate func(ctx context.Context, s Solution) (bool, error)

// Constraint is a stateless feasibility rule with a penalty weight.
type Constraint struct {
	Name      string
	Predicate Predicate
	Penalty   float64
}

// ConstraintOption customizes a Constraint.
type ConstraintOption func(*Constraint)

// WithPenalty overrides DefaultPenalty.
func WithPenalty(p float64) ConstraintOption {
	return func(c *Constraint) { c.Penalty = p }
}

func NewConstraint(name string, pred Predicate, opts ...ConstraintOption) (*Constraint, error) {
	if name == "" {
		return nil, &ConfigurationError{Field: "name", Reason: "constraint name is required"}
	}
	if pred == nil {
		return nil, &ConfigurationError{Field: "predicate", Reason: fmt.Sprintf("constraint %q has no predicate", name)}
	}
	c := &Constraint{Name: name, Predicate: pred, Penalty: DefaultPenalty}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MustConstraint is NewConstraint for statically known definitions.
func MustConstraint(name string, pred Predicate, opts ...ConstraintOption) *Constraint {
	c, err := NewConstraint(name, pred, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Check adapts a plain boolean rule into a Predicate.
func Check(fn func(s Solution) bool) Predicate {
	return func(_ context.Context, s Solution) (bool, error) {
		return fn(s), nil
	}
}

// IsSatisfied runs the predicate. Errors and panics come back as *ConstraintError.
func (c *Constraint) IsSatisfied(ctx context.Context, s Solution) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, &ConstraintError{Constraint: c.Name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	ok, err = c.Predicate(ctx, s)
	if err != nil {
		return false, &ConstraintError{Constraint: c.Name, Err: err}
	}
	return ok, nil
}

// RangeConstraint requires attribute key to read as a number within [min,max].
// A missing or non-numeric attribute is a violation, not an error.
func RangeConstraint(key string, min, max float64, opts ...ConstraintOption) *Constraint {
	return MustConstraint(fmt.Sprintf("%s in [%g,%g]", key, min, max), func(_ context.Context, s Solution) (bool, error) {
		v, ok := s.Get(key)
		if !ok {
			return false, nil
		}
		f, err := v.Float()
		if err != nil {
			return false, nil
		}
		return f >= min && f <= max, nil
	}, opts...)
}

// EqualsConstraint requires attribute key to hold exactly want.
func EqualsConstraint(key string, want Value, opts ...ConstraintOption) *Constraint {
	return MustConstraint(fmt.Sprintf("%s == %s", key, want), func(_ context.Context, s Solution) (bool, error) {
		v, ok := s.Get(key)
		return ok && v.Equal(want), nil
	}, opts...)
}

// RequiredConstraint requires attribute key to be present.
func RequiredConstraint(key string, opts ...ConstraintOption) *Constraint {
	return MustConstraint(fmt.Sprintf("%s required", key), func(_ context.Context, s Solution) (bool, error) {
		return s.Has(key), nil
	}, opts...)
}
