package pricing

import (
	"math"

	"github.com/rewired-gh/optionpricer/internal/logger"
	"gonum.org/v1/gonum/stat/distuv"
)

// varianceEpsilon is the total-variance cutoff (volatility*sqrt(T)) below which
// the underlying is treated as a deterministic drift.
const varianceEpsilon = 1e-8

// AnalyticEngine prices European options with the Black-Scholes closed form.
type AnalyticEngine struct {
	spot       float64
	rate       float64
	volatility float64
}

// NewAnalyticEngine snapshots the market. spot must be positive and volatility
// non-negative.
func NewAnalyticEngine(spot, rate, volatility float64) (*AnalyticEngine, error) {
	if err := validateMarket(spot, rate, volatility); err != nil {
		return nil, err
	}
	logger.Debug("Analytic engine created (spot=%g, rate=%g, volatility=%g)", spot, rate, volatility)
	return &AnalyticEngine{spot: spot, rate: rate, volatility: volatility}, nil
}

func (e *AnalyticEngine) Spot() float64       { return e.spot }
func (e *AnalyticEngine) Rate() float64       { return e.rate }
func (e *AnalyticEngine) Volatility() float64 { return e.volatility }

// CallPrice is Price(c, Call).
func (e *AnalyticEngine) CallPrice(c Contract) (float64, error) {
	return e.Price(c, Call)
}

// PutPrice is Price(c, Put).
func (e *AnalyticEngine) PutPrice(c Contract) (float64, error) {
	return e.Price(c, Put)
}

// Price returns the European price of c in the given direction. Only the
// payoff's strike is read; the direction comes from kind.
//
// An expired contract (T == 0) is worth its intrinsic value. When
// volatility*sqrt(T) <= 1e-8 the price is the discounted intrinsic value at
// the forward spot*exp(rate*T).
func (e *AnalyticEngine) Price(c Contract, kind OptionKind) (float64, error) {
	if err := c.validate(); err != nil {
		return 0, err
	}
	if kind != Call && kind != Put {
		return 0, invalid("kind", kind, "must be CALL or PUT")
	}

	T := c.maturity
	K := c.payoff.Strike()
	if !isFinite(K) || K <= 0 {
		return 0, invalid("strike", K, "must be positive and finite")
	}

	if T == 0 {
		return intrinsic(kind, e.spot, K), nil
	}

	volT := e.volatility * math.Sqrt(T)
	discount := math.Exp(-e.rate * T)

	if volT <= varianceEpsilon {
		forward := e.spot * math.Exp(e.rate*T)
		return discount * intrinsic(kind, forward, K), nil
	}

	d1 := (math.Log(e.spot/K) + (e.rate+0.5*e.volatility*e.volatility)*T) / volT
	d2 := d1 - volT

	if kind == Call {
		return e.spot*normCDF(d1) - K*discount*normCDF(d2), nil
	}
	return K*discount*normCDF(-d2) - e.spot*normCDF(-d1), nil
}

// normCDF is the standard normal CDF, 0.5*erfc(-x/sqrt(2)).
func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}
