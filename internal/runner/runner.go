// Package runner prices a battery of scenarios on both engines.
//
// Every scenario is priced twice: once with the Black-Scholes closed form
// (European exercise) and once on the binomial lattice (American exercise by
// default). Each model's runtime covers engine construction plus pricing.
//
// Engines are immutable, so scenarios are priced concurrently on a bounded
// errgroup. Results are written into per-scenario slots, which keeps quote
// order identical to scenario order regardless of scheduling.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rewired-gh/optionpricer/internal/logger"
	"github.com/rewired-gh/optionpricer/internal/models"
	"github.com/rewired-gh/optionpricer/internal/pricing"
	"github.com/rewired-gh/optionpricer/internal/scenario"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Config holds runner settings
type Config struct {
	Steps    int
	Workers  int
	Exercise pricing.Exercise
}

// Runner prices scenario batteries
type Runner struct {
	steps    int
	workers  int
	exercise pricing.Exercise
}

// New creates a new Runner. Workers below 1 are treated as 1.
func New(cfg Config) *Runner {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		steps:    cfg.Steps,
		workers:  workers,
		exercise: cfg.Exercise,
	}
}

// ScenarioError represents a per-scenario pricing failure
type ScenarioError struct {
	ScenarioID string
	Err        error
}

func (e ScenarioError) Error() string {
	return fmt.Sprintf("pricing error for scenario %s: %v", e.ScenarioID, e.Err)
}

func (e ScenarioError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one run. Quotes hold the Black-Scholes quote
// followed by the Binomial Tree quote for every scenario that priced.
type Result struct {
	Run    models.Run
	Quotes []models.Quote
	Errors []ScenarioError
}

type slot struct {
	european models.Quote
	american models.Quote
	err      error
}

// Run prices every scenario. Per-scenario failures are collected in
// Result.Errors; the returned error is non-nil only when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, scenarios []models.Scenario) (*Result, error) {
	startTime := time.Now()
	runID := uuid.New().String()
	logger.Info("Starting pricing run %s (%d scenarios, steps: %d, exercise: %s, workers: %d)",
		runID, len(scenarios), r.steps, r.exercise, r.workers)

	slots := make([]slot, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, sc := range scenarios {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			euro, amer, err := r.PriceScenario(runID, sc)
			slots[i] = slot{european: euro, american: amer, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pricing run cancelled: %w", err)
	}

	result := &Result{
		Quotes: make([]models.Quote, 0, 2*len(scenarios)),
	}
	for i, s := range slots {
		if s.err != nil {
			result.Errors = append(result.Errors, ScenarioError{ScenarioID: scenarios[i].ID, Err: s.err})
			logger.With(logrus.Fields{"run": runID, "scenario": scenarios[i].ID}).
				Warnf("Failed to price scenario: %v", s.err)
			continue
		}
		result.Quotes = append(result.Quotes, s.european, s.american)
	}

	result.Run = models.Run{
		ID:        runID,
		StartedAt: startTime,
		Steps:     r.steps,
		Exercise:  r.exercise.String(),
		Scenarios: len(scenarios),
		Duration:  time.Since(startTime),
	}

	logger.Info("Pricing run %s completed in %v (%d quotes, %d failures)",
		runID, result.Run.Duration, len(result.Quotes), len(result.Errors))
	return result, nil
}

// PriceScenario prices sc on the analytic and lattice engines.
func (r *Runner) PriceScenario(runID string, sc models.Scenario) (european, american models.Quote, err error) {
	if err := sc.Validate(); err != nil {
		return models.Quote{}, models.Quote{}, fmt.Errorf("invalid scenario: %w", err)
	}
	contract, err := scenario.Contract(sc)
	if err != nil {
		return models.Quote{}, models.Quote{}, fmt.Errorf("failed to build contract: %w", err)
	}

	// Black-Scholes
	t1 := time.Now()
	bs, err := pricing.NewAnalyticEngine(sc.Spot, sc.Rate, sc.Volatility)
	if err != nil {
		return models.Quote{}, models.Quote{}, fmt.Errorf("failed to create analytic engine: %w", err)
	}
	euro, err := bs.Price(contract, sc.Kind)
	if err != nil {
		return models.Quote{}, models.Quote{}, fmt.Errorf("failed to price with Black-Scholes: %w", err)
	}
	bsRuntime := time.Since(t1)

	// Binomial Tree
	t2 := time.Now()
	bt, err := pricing.NewLatticeEngine(sc.Spot, sc.Rate, sc.Volatility, r.steps, pricing.WithExercise(r.exercise))
	if err != nil {
		return models.Quote{}, models.Quote{}, fmt.Errorf("failed to create lattice engine: %w", err)
	}
	amer, err := bt.Price(contract)
	if err != nil {
		return models.Quote{}, models.Quote{}, fmt.Errorf("failed to price with binomial tree: %w", err)
	}
	btRuntime := time.Since(t2)

	pricedAt := time.Now()
	european = models.Quote{
		ID:       uuid.New().String(),
		RunID:    runID,
		Scenario: sc,
		Model:    models.ModelBlackScholes,
		Price:    euro,
		Runtime:  bsRuntime,
		PricedAt: pricedAt,
	}
	american = models.Quote{
		ID:       uuid.New().String(),
		RunID:    runID,
		Scenario: sc,
		Model:    models.ModelBinomialTree,
		Price:    amer,
		Runtime:  btRuntime,
		PricedAt: pricedAt,
	}

	logger.Debug("Priced %s: Black-Scholes=%.6f (%v), Binomial Tree=%.6f (%v)",
		sc.ID, euro, bsRuntime, amer, btRuntime)
	return european, american, nil
}
