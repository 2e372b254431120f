// Package optimizer selects Pareto-optimal or best-ranked decisions from a
// space of candidate solutions under weighted objectives and hard constraints.
//
// Small spaces are searched exhaustively; spaces larger than the configured
// population are searched with a genetic algorithm. An Optimizer holds only
// configuration and a random source and can be shared between goroutines.
package optimizer

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/snow-ghost/decision/core"
	"github.com/snow-ghost/decision/optimizer/mutate"
	"github.com/snow-ghost/decision/pkg/cache"
	"github.com/snow-ghost/decision/pkg/limiter"
	"github.com/snow-ghost/decision/pkg/logging"
	"github.com/snow-ghost/decision/pkg/metrics"
	"github.com/snow-ghost/decision/pkg/observability"
	"github.com/snow-ghost/decision/pkg/tracing"
	"github.com/snow-ghost/decision/policy/local"
)

// Strategies reported in Report.Path
const (
	PathEmpty        = "empty"
	PathNoObjectives = "no_objectives"
	PathExhaustive   = "exhaustive"
	PathGenetic      = "genetic"
)

// Problem is the input of one optimize call
type Problem struct {
	Objectives  []*core.Objective
	Constraints []*core.Constraint
	Space       []core.Solution
	// Initial seeds the GA population; ignored on the exhaustive path.
	Initial []core.Solution
}

// Report describes one finished optimize call
type Report struct {
	RunID            string          `json:"run_id" yaml:"run_id"`
	Path             string          `json:"path" yaml:"path"`
	Frontier         []core.Solution `json:"frontier" yaml:"frontier"`
	Generations      int             `json:"generations" yaml:"generations"`
	Evaluations      int             `json:"evaluations" yaml:"evaluations"`
	EvaluationErrors int             `json:"evaluation_errors" yaml:"evaluation_errors"`
	// BestFitness holds the best fitness of every evaluated GA population,
	// starting with the initial one.
	BestFitness []float64     `json:"best_fitness,omitempty" yaml:"best_fitness,omitempty"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
}

type Optimizer struct {
	config Config

	mu  sync.Mutex
	rng *rand.Rand

	logger  *logging.Logger
	metrics *metrics.PrometheusMetrics
	tracer  *tracing.Tracer
	obs     *observability.Manager
	guard   *limiter.Guard

	selector   core.Selector
	recombiner core.Recombiner
	mutator    core.Mutator
}

// New validates config and builds an Optimizer
func New(config Config, opts ...Option) (*Optimizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	o := &Optimizer{config: config.withDefaults()}
	for _, opt := range opts {
		opt(o)
	}

	if o.rng == nil {
		seed := o.config.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		o.rng = rand.New(rand.NewSource(seed))
	}
	o.obs = observability.NewManagerFrom(o.logger, o.metrics, o.tracer)
	if o.selector == nil {
		o.selector = NewTournamentSelector(o.config.TournamentSize())
	}
	if o.recombiner == nil {
		o.recombiner = mutate.NewUniformCrossover()
	}
	if o.mutator == nil {
		o.mutator = mutate.NewSpaceMutator()
	}
	if o.guard != nil {
		o.obs.InstrumentGuard(o.guard)
	}
	return o, nil
}

// Config returns the effective configuration
func (o *Optimizer) Config() Config { return o.config }

// Optimize returns the Pareto frontier of the feasible solutions in space.
// initial seeds the GA population when the space is too large to search exhaustively.
func (o *Optimizer) Optimize(ctx context.Context, objectives []*core.Objective, constraints []*core.Constraint, space []core.Solution, initial ...core.Solution) ([]core.Solution, error) {
	report, err := o.Run(ctx, Problem{
		Objectives:  objectives,
		Constraints: constraints,
		Space:       space,
		Initial:     initial,
	})
	if err != nil {
		return nil, err
	}
	return report.Frontier, nil
}

// Run is Optimize returning the full Report
func (o *Optimizer) Run(ctx context.Context, p Problem) (*Report, error) {
	start := time.Now()
	r, err := o.newRun(p.Objectives, p.Constraints)
	if err != nil {
		return nil, err
	}
	seed := o.nextSeed()
	r.rng = rand.New(rand.NewSource(seed))
	r.report.RunID = strconv.FormatUint(uint64(seed), 36)
	report := r.report

	ctx, span := o.obs.StartRunSpan(ctx, report.RunID, len(p.Space), len(p.Objectives), len(p.Constraints))
	logger := o.obs.GetLogger().WithRunID(ctx, report.RunID)

	switch {
	case len(p.Space) == 0:
		logger.Warn("Empty solution space, returning no solutions")
		report.Path = PathEmpty
		report.Frontier = []core.Solution{}
	case len(p.Objectives) == 0:
		logger.Warn("No objectives given, returning the first solution", "space_size", len(p.Space))
		report.Path = PathNoObjectives
		report.Frontier = []core.Solution{p.Space[0]}
	case len(p.Space) <= o.config.PopulationSize:
		report.Path = PathExhaustive
		err = r.budget.Wrap(ctx, func(ctx context.Context) error {
			recs, err := r.evaluate(ctx, p.Space, true)
			if err != nil {
				return err
			}
			report.Frontier = r.frontier(p.Space, recs)
			return nil
		})
	default:
		report.Path = PathGenetic
		err = r.budget.Wrap(ctx, func(ctx context.Context) error {
			frontier, err := r.genetic(ctx, p.Space, p.Initial)
			report.Frontier = frontier
			return err
		})
	}

	report.Evaluations = r.budget.Spent()
	report.EvaluationErrors = int(r.errors.Load())
	report.Duration = time.Since(start)
	if err != nil {
		err = fmt.Errorf("optimize (%s): %w", report.Path, err)
		report.Frontier = nil
	}
	o.obs.FinishRun(ctx, span, report.Path, len(p.Space), len(report.Frontier), report.Generations, report.Duration, err)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// newRun prepares the per-call state. Custom evaluators are wrapped by the
// guard and then the cache, so cache hits bypass the guard.
func (o *Optimizer) newRun(objectives []*core.Objective, constraints []*core.Constraint) (*run, error) {
	var cm *cache.CacheManager
	if o.config.CacheSize > 0 {
		var err error
		cm, err = cache.NewCacheManager(&cache.CacheConfig{MaxSize: o.config.CacheSize})
		if err != nil {
			return nil, err
		}
		o.obs.InstrumentCache(cm)
	}

	wrapped := make([]*core.Objective, len(objectives))
	for i, obj := range objectives {
		w := *obj
		if w.Eval != nil {
			if o.guard != nil {
				w.Eval = o.guard.Wrap(obj.Name, w.Eval)
			}
			if cm != nil {
				// index keeps same-named objectives apart
				w.Eval = cm.Wrap(strconv.Itoa(i)+"/"+obj.Name, w.Eval)
			}
		}
		wrapped[i] = &w
	}

	return &run{
		cfg:         o.config,
		obs:         o.obs,
		objectives:  wrapped,
		constraints: constraints,
		fitness:     core.NewWeightedFitness(wrapped, constraints),
		budget:      local.NewGuard(o.config.Budget()),
		report:      &Report{},
		selector:    o.selector,
		recombiner:  o.recombiner,
		mutator:     o.mutator,
	}, nil
}

func (o *Optimizer) nextSeed() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rng.Int63()
}
