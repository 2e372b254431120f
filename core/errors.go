package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingKey is returned when a default objective lookup misses.
	ErrMissingKey = errors.New("missing key")
	// ErrNonNumeric is returned when a string attribute is read as a number.
	ErrNonNumeric = errors.New("non-numeric value")
	// ErrBudgetExhausted is returned when an evaluation budget runs out.
	ErrBudgetExhausted = errors.New("evaluation budget exhausted")
)

// ConfigurationError reports an invalid objective, constraint or optimizer setting.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// EvaluationError reports a failed objective evaluation.
type EvaluationError struct {
	Objective string
	Solution  Solution
	Err       error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate objective %q on %s: %v", e.Objective, e.Solution, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// ConstraintError reports a failing constraint predicate. It always aborts the call.
type ConstraintError struct {
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint %q: %v", e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }
