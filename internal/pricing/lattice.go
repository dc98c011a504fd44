package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/rewired-gh/optionpricer/internal/logger"
)

// Exercise selects when the lattice lets the holder exercise.
type Exercise int

const (
	// American allows exercise at every layer of the tree.
	American Exercise = iota
	// European allows exercise only at maturity.
	European
)

func (e Exercise) String() string {
	if e == European {
		return "european"
	}
	return "american"
}

// ParseExercise accepts "american" or "european" in any case.
func ParseExercise(s string) (Exercise, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "american", "":
		return American, nil
	case "european":
		return European, nil
	}
	return American, invalid("exercise", s, "must be american or european")
}

// LatticeOption configures a LatticeEngine.
type LatticeOption func(*LatticeEngine)

// WithExercise sets the exercise style. The default is American.
func WithExercise(ex Exercise) LatticeOption {
	return func(e *LatticeEngine) {
		e.exercise = ex
	}
}

// MaxSteps bounds the tree resolution. It caps the per-call buffer at
// MaxSteps+1 values and the length of the zero-volatility path.
const MaxSteps = 10_000_000

// LatticeEngine prices options on a recombining binomial tree with
// backward induction.
type LatticeEngine struct {
	spot       float64
	rate       float64
	volatility float64
	steps      int
	exercise   Exercise
}

// NewLatticeEngine snapshots the market and the tree resolution. steps must
// be at least 1.
func NewLatticeEngine(spot, rate, volatility float64, steps int, opts ...LatticeOption) (*LatticeEngine, error) {
	if err := validateMarket(spot, rate, volatility); err != nil {
		return nil, err
	}
	if steps <= 0 {
		return nil, invalid("steps", steps, "must be positive")
	}
	if steps > MaxSteps {
		return nil, invalid("steps", steps, fmt.Sprintf("must not exceed %d", MaxSteps))
	}

	e := &LatticeEngine{
		spot:       spot,
		rate:       rate,
		volatility: volatility,
		steps:      steps,
		exercise:   American,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.exercise != American && e.exercise != European {
		return nil, invalid("exercise", int(e.exercise), "unknown exercise style")
	}

	logger.Debug("Lattice engine created (spot=%g, rate=%g, volatility=%g, steps=%d, exercise=%s)",
		spot, rate, volatility, steps, e.exercise)
	return e, nil
}

func (e *LatticeEngine) Steps() int         { return e.steps }
func (e *LatticeEngine) Exercise() Exercise { return e.exercise }

// Price values c by backward induction over steps+1 time layers. With
// American exercise every node takes max(intrinsic, continuation).
//
// A single buffer of steps+1 values is allocated per call and overwritten
// layer by layer, so concurrent calls share nothing.
func (e *LatticeEngine) Price(c Contract) (float64, error) {
	if err := c.validate(); err != nil {
		return 0, err
	}

	payoff := c.payoff
	if c.maturity == 0 {
		return payoff.Evaluate(e.spot), nil
	}

	n := e.steps
	dt := c.maturity / float64(n)
	volDt := e.volatility * math.Sqrt(dt)
	discount := math.Exp(-e.rate * dt)

	if volDt <= varianceEpsilon {
		return e.priceDeterministic(payoff, c.maturity, dt, discount), nil
	}

	u := math.Exp(volDt)
	d := 1 / u
	p := (math.Exp(e.rate*dt) - d) / (u - d)
	q := 1 - p
	// Adjacent nodes in a layer differ by one up-move and one fewer down-move.
	stride := u * u
	early := e.exercise == American

	values := make([]float64, n+1)

	// Terminal layer: node i has price spot * u^i * d^(n-i).
	s := e.spot * math.Pow(d, float64(n))
	for i := 0; i <= n; i++ {
		values[i] = payoff.Evaluate(s)
		s *= stride
	}

	for t := n - 1; t >= 0; t-- {
		// Lowest node of layer t is spot * d^t; rebuilt per layer so the root is exactly spot.
		s = e.spot * math.Pow(d, float64(t))
		for i := 0; i <= t; i++ {
			v := discount * (p*values[i+1] + q*values[i])
			if early {
				if exercise := payoff.Evaluate(s); exercise > v {
					v = exercise
				}
			}
			values[i] = v
			s *= stride
		}
	}

	return values[0], nil
}

// priceDeterministic handles volatility*sqrt(dt) <= 1e-8, where u == d and the
// tree collapses to the forward path spot*exp(rate*t*dt).
func (e *LatticeEngine) priceDeterministic(payoff Payoff, maturity, dt, discount float64) float64 {
	terminal := payoff.Evaluate(e.spot * math.Exp(e.rate*maturity))
	if e.exercise == European {
		return math.Exp(-e.rate*maturity) * terminal
	}

	v := terminal
	for t := e.steps - 1; t >= 0; t-- {
		v *= discount
		forward := e.spot * math.Exp(e.rate*dt*float64(t))
		if exercise := payoff.Evaluate(forward); exercise > v {
			v = exercise
		}
	}
	return v
}
