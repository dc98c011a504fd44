// Package compare pairs European and American quotes of the same scenario and
// analyzes the difference.
//
// The early-exercise premium of a scenario is
//
//	premium = price(Binomial Tree, American) - price(Black-Scholes, European)
//
// A premium above the configured tolerance marks the scenario as one where
// exercising before maturity is worth something; for calls on a non-dividend
// underlying the premium is only lattice discretization error and stays near 0.
//
// Use TopEarlyExercise to rank scenarios by premium and Summarize for
// aggregate statistics across a run. Sweep measures how the lattice price
// approaches the closed form as the step count grows.
package compare

import (
	"fmt"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rewired-gh/optionpricer/internal/logger"
	"github.com/rewired-gh/optionpricer/internal/models"
)

// Comparator builds comparisons from quotes
type Comparator struct {
	tolerance float64
}

// New creates a Comparator. Premiums at or below tolerance are not flagged as early exercise.
func New(tolerance float64) *Comparator {
	if tolerance < 0 {
		tolerance = 0
	}
	return &Comparator{tolerance: tolerance}
}

// CompareError represents a per-scenario error during comparison
type CompareError struct {
	ScenarioID string
	Err        error
}

func (e CompareError) Error() string {
	return fmt.Sprintf("comparison error for scenario %s: %v", e.ScenarioID, e.Err)
}

type pair struct {
	scenario models.Scenario
	european *models.Quote
	american *models.Quote
}

// Compare groups quotes by scenario, preserving first-seen order, and returns one
// comparison per scenario that has exactly one quote per model. Incomplete or
// duplicated scenarios are reported as non-fatal errors.
func (c *Comparator) Compare(quotes []models.Quote) ([]models.Comparison, []CompareError) {
	pairs := make(map[string]*pair)
	var order []string
	var compareErrors []CompareError
	duplicated := make(map[string]bool)

	for i := range quotes {
		q := &quotes[i]
		id := q.Scenario.ID
		p, exists := pairs[id]
		if !exists {
			p = &pair{scenario: q.Scenario}
			pairs[id] = p
			order = append(order, id)
		}

		switch q.Model {
		case models.ModelBlackScholes:
			if p.european != nil {
				duplicated[id] = true
			}
			p.european = q
		case models.ModelBinomialTree:
			if p.american != nil {
				duplicated[id] = true
			}
			p.american = q
		default:
			compareErrors = append(compareErrors, CompareError{ScenarioID: id, Err: fmt.Errorf("unknown model %q", q.Model)})
		}
	}

	comparisons := make([]models.Comparison, 0, len(order))
	for _, id := range order {
		p := pairs[id]
		switch {
		case duplicated[id]:
			compareErrors = append(compareErrors, CompareError{ScenarioID: id, Err: fmt.Errorf("duplicate quotes")})
			continue
		case p.european == nil:
			compareErrors = append(compareErrors, CompareError{ScenarioID: id, Err: fmt.Errorf("missing %s quote", models.ModelBlackScholes)})
			continue
		case p.american == nil:
			compareErrors = append(compareErrors, CompareError{ScenarioID: id, Err: fmt.Errorf("missing %s quote", models.ModelBinomialTree)})
			continue
		}

		premium := p.american.Price - p.european.Price
		comparisons = append(comparisons, models.Comparison{
			ScenarioID:      id,
			Name:            p.scenario.Name,
			Kind:            p.scenario.Kind,
			European:        p.european.Price,
			American:        p.american.Price,
			Premium:         premium,
			EarlyExercise:   premium > c.tolerance,
			EuropeanRuntime: p.european.Runtime,
			AmericanRuntime: p.american.Runtime,
		})
	}

	logger.Debug("Compare: %d quotes, %d comparisons, %d errors", len(quotes), len(comparisons), len(compareErrors))
	return comparisons, compareErrors
}

// TopEarlyExercise returns at most k comparisons flagged as early exercise,
// sorted by premium descending. Ties are broken by ScenarioID descending for
// determinism. Returns an empty (non-nil) slice when nothing qualifies.
func TopEarlyExercise(comparisons []models.Comparison, k int) []models.Comparison {
	var candidates []models.Comparison
	for _, c := range comparisons {
		if c.EarlyExercise {
			candidates = append(candidates, c)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Premium != candidates[j].Premium {
			return candidates[i].Premium > candidates[j].Premium
		}
		// Tie-break: ID lexicographic descending
		return candidates[i].ScenarioID > candidates[j].ScenarioID
	})

	if k <= 0 || len(candidates) == 0 {
		return []models.Comparison{}
	}
	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[:k]
}

// Summary aggregates a run's comparisons
type Summary struct {
	Scenarios           int
	EarlyExercise       int
	MeanPremium         float64
	MedianPremium       float64
	MaxPremium          float64
	StdDevPremium       float64
	MeanEuropeanRuntime time.Duration
	MeanAmericanRuntime time.Duration
}

// Summarize computes premium and runtime statistics. An empty input yields a zero Summary.
func Summarize(comparisons []models.Comparison) (Summary, error) {
	summary := Summary{Scenarios: len(comparisons)}
	if len(comparisons) == 0 {
		return summary, nil
	}

	premiums := make([]float64, len(comparisons))
	euroRuntimes := make([]float64, len(comparisons))
	amerRuntimes := make([]float64, len(comparisons))
	for i, c := range comparisons {
		premiums[i] = c.Premium
		euroRuntimes[i] = float64(c.EuropeanRuntime)
		amerRuntimes[i] = float64(c.AmericanRuntime)
		if c.EarlyExercise {
			summary.EarlyExercise++
		}
	}

	var err error
	if summary.MeanPremium, err = stats.Mean(premiums); err != nil {
		return Summary{}, fmt.Errorf("failed to compute mean premium: %w", err)
	}
	if summary.MedianPremium, err = stats.Median(premiums); err != nil {
		return Summary{}, fmt.Errorf("failed to compute median premium: %w", err)
	}
	if summary.MaxPremium, err = stats.Max(premiums); err != nil {
		return Summary{}, fmt.Errorf("failed to compute max premium: %w", err)
	}
	if summary.StdDevPremium, err = stats.StandardDeviation(premiums); err != nil {
		return Summary{}, fmt.Errorf("failed to compute premium deviation: %w", err)
	}

	meanEuro, err := stats.Mean(euroRuntimes)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to compute mean runtime: %w", err)
	}
	meanAmer, err := stats.Mean(amerRuntimes)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to compute mean runtime: %w", err)
	}
	summary.MeanEuropeanRuntime = time.Duration(meanEuro)
	summary.MeanAmericanRuntime = time.Duration(meanAmer)

	return summary, nil
}
