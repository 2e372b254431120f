package problem

import (
	"fmt"
	"math"

	"github.com/snow-ghost/decision/core"
	"github.com/snow-ghost/decision/optimizer"
	"gopkg.in/yaml.v3"
)

// Constraint types understood in problem files
const (
	ConstraintRange    = "range"
	ConstraintEquals   = "equals"
	ConstraintRequired = "required"
)

// ObjectiveSpec declares an objective read from a solution attribute
type ObjectiveSpec struct {
	Name      string  `json:"name" yaml:"name"`
	Weight    float64 `json:"weight" yaml:"weight"`
	Direction string  `json:"direction" yaml:"direction"` // maximize|minimize
	Key       string  `json:"key,omitempty" yaml:"key,omitempty"` // attribute to read, defaults to Name
}

// ConstraintSpec declares a constraint over one solution attribute
type ConstraintSpec struct {
	Name    string      `json:"name,omitempty" yaml:"name,omitempty"`
	Type    string      `json:"type" yaml:"type"` // range|equals|required
	Key     string      `json:"key" yaml:"key"`
	Min     *float64    `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64    `json:"max,omitempty" yaml:"max,omitempty"`
	Value   *core.Value `json:"value,omitempty" yaml:"value,omitempty"`
	Penalty *float64    `json:"penalty,omitempty" yaml:"penalty,omitempty"`
}

// Definition is a complete optimization problem as stored on disk
type Definition struct {
	Name        string           `json:"name,omitempty" yaml:"name,omitempty"`
	Objectives  []ObjectiveSpec  `json:"objectives" yaml:"objectives"`
	Constraints []ConstraintSpec `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Solutions   []core.Solution  `json:"solutions" yaml:"solutions"`
	Initial     []core.Solution  `json:"initial,omitempty" yaml:"initial,omitempty"`
	// Optimizer overrides individual optimizer settings. Kept as a raw node so
	// only the keys present in the file replace the base configuration.
	Optimizer yaml.Node `json:"-" yaml:"optimizer,omitempty"`
}

// BuildObjectives turns the objective specs into core objectives
func (d *Definition) BuildObjectives() ([]*core.Objective, error) {
	out := make([]*core.Objective, 0, len(d.Objectives))
	for _, spec := range d.Objectives {
		var eval core.EvalFunc
		if spec.Key != "" && spec.Key != spec.Name {
			eval = lookup(spec.Key)
		}
		o, err := core.NewObjective(spec.Name, spec.Weight, spec.Direction, eval)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// BuildConstraints turns the constraint specs into core constraints
func (d *Definition) BuildConstraints() ([]*core.Constraint, error) {
	out := make([]*core.Constraint, 0, len(d.Constraints))
	for i, spec := range d.Constraints {
		c, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("constraint %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// Problem builds the optimizer input
func (d *Definition) Problem() (optimizer.Problem, error) {
	objectives, err := d.BuildObjectives()
	if err != nil {
		return optimizer.Problem{}, err
	}
	constraints, err := d.BuildConstraints()
	if err != nil {
		return optimizer.Problem{}, err
	}
	return optimizer.Problem{
		Objectives:  objectives,
		Constraints: constraints,
		Space:       d.Solutions,
		Initial:     d.Initial,
	}, nil
}

// Config applies the optimizer overrides of the definition on top of base
func (d *Definition) Config(base optimizer.Config) (optimizer.Config, error) {
	if d.Optimizer.Kind == 0 {
		return base, nil
	}
	cfg := base
	if err := d.Optimizer.Decode(&cfg); err != nil {
		return base, fmt.Errorf("failed to parse optimizer settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

func (s ConstraintSpec) build() (*core.Constraint, error) {
	if s.Key == "" {
		return nil, &core.ConfigurationError{Field: "key", Reason: "constraint key is required"}
	}

	var opts []core.ConstraintOption
	if s.Penalty != nil {
		opts = append(opts, core.WithPenalty(*s.Penalty))
	}

	var c *core.Constraint
	switch s.Type {
	case ConstraintRange:
		if s.Min == nil && s.Max == nil {
			return nil, &core.ConfigurationError{Field: "range", Reason: "min or max is required"}
		}
		lo, hi := math.Inf(-1), math.Inf(1)
		if s.Min != nil {
			lo = *s.Min
		}
		if s.Max != nil {
			hi = *s.Max
		}
		c = core.RangeConstraint(s.Key, lo, hi, opts...)
	case ConstraintEquals:
		if s.Value == nil {
			return nil, &core.ConfigurationError{Field: "value", Reason: "equals constraint needs a value"}
		}
		c = core.EqualsConstraint(s.Key, *s.Value, opts...)
	case ConstraintRequired:
		c = core.RequiredConstraint(s.Key, opts...)
	default:
		return nil, &core.ConfigurationError{Field: "type", Reason: fmt.Sprintf("unknown constraint type %q", s.Type)}
	}

	if s.Name != "" {
		c.Name = s.Name
	}
	return c, nil
}
