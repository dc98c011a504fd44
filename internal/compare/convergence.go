package compare

import (
	"fmt"
	"math"
	"time"

	"github.com/rewired-gh/optionpricer/internal/models"
	"github.com/rewired-gh/optionpricer/internal/pricing"
	"github.com/rewired-gh/optionpricer/internal/scenario"
)

// DefaultSweepSteps is the lattice resolution ladder used by the converge command.
var DefaultSweepSteps = []int{10, 50, 100, 500, 1000, 5000}

// ConvergencePoint is the lattice price at one resolution against the closed form.
type ConvergencePoint struct {
	Steps      int
	Lattice    float64
	Analytic   float64
	Difference float64 // Lattice - Analytic
	AbsError   float64
	Runtime    time.Duration
}

// Sweep prices sc on the lattice at each step count and measures the distance to
// the Black-Scholes price. With European exercise (or a call, where early exercise
// is never optimal) the distance is pure discretization error.
func Sweep(sc models.Scenario, steps []int, exercise pricing.Exercise) ([]ConvergencePoint, error) {
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	contract, err := scenario.Contract(sc)
	if err != nil {
		return nil, fmt.Errorf("failed to build contract: %w", err)
	}

	analytic, err := pricing.NewAnalyticEngine(sc.Spot, sc.Rate, sc.Volatility)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytic engine: %w", err)
	}
	reference, err := analytic.Price(contract, sc.Kind)
	if err != nil {
		return nil, fmt.Errorf("failed to price with Black-Scholes: %w", err)
	}

	points := make([]ConvergencePoint, 0, len(steps))
	for _, n := range steps {
		start := time.Now()
		lattice, err := pricing.NewLatticeEngine(sc.Spot, sc.Rate, sc.Volatility, n, pricing.WithExercise(exercise))
		if err != nil {
			return nil, fmt.Errorf("failed to create lattice engine with %d steps: %w", n, err)
		}
		price, err := lattice.Price(contract)
		if err != nil {
			return nil, fmt.Errorf("failed to price with %d steps: %w", n, err)
		}

		diff := price - reference
		points = append(points, ConvergencePoint{
			Steps:      n,
			Lattice:    price,
			Analytic:   reference,
			Difference: diff,
			AbsError:   math.Abs(diff),
			Runtime:    time.Since(start),
		})
	}
	return points, nil
}

// NonIncreasing reports whether AbsError never grows along points. Binomial
// prices oscillate between odd and even step counts, so only a coarse ladder
// (each rung several times the previous) is expected to satisfy this.
func NonIncreasing(points []ConvergencePoint) bool {
	for i := 1; i < len(points); i++ {
		if points[i].AbsError > points[i-1].AbsError {
			return false
		}
	}
	return true
}
