package core

import "time"

// Budget bounds the cost of one optimize call.
type Budget struct {
	Timeout        time.Duration // wall-clock limit, 0 = none
	MaxEvaluations int           // objective evaluations, 0 = unlimited
}

// Unlimited reports whether b imposes no bound at all.
func (b Budget) Unlimited() bool {
	return b.Timeout <= 0 && b.MaxEvaluations <= 0
}

// Ranked pairs a solution with its fitness.
type Ranked struct {
	Solution Solution `json:"solution" yaml:"solution"`
	Fitness  float64  `json:"fitness" yaml:"fitness"`
}
