// Package models defines the entities the pricing driver works with.
// These models represent market scenarios, priced quotes, European/American comparisons
// and pricing runs. All models include built-in validation to ensure data integrity
// before anything is stored or reported.
//
// Terminology:
//   - Scenario: one market state plus one option (spot, strike, rate, volatility, maturity, kind).
//   - Quote: the price of a scenario under one model (Black-Scholes or Binomial Tree).
//   - Comparison: both quotes of a scenario side by side, with the early-exercise premium.
//   - Run: one execution of the scenario battery.
package models

import (
	"errors"

	"github.com/rewired-gh/optionpricer/internal/pricing"
)

// Scenario is a market state and option to price on both engines.
type Scenario struct {
	ID         string             `json:"id"`   // Stable slug derived from Name
	Name       string             `json:"name"` // Human label, e.g. "ATM Put"
	Kind       pricing.OptionKind `json:"kind"`
	Spot       float64            `json:"spot"`
	Strike     float64            `json:"strike"`
	Rate       float64            `json:"rate"`       // Continuously-compounded risk-free rate
	Volatility float64            `json:"volatility"` // Annualized
	Maturity   float64            `json:"maturity"`   // Years to expiry
}

// Validate checks that all scenario fields are valid.
func (s *Scenario) Validate() error {
	if s.ID == "" {
		return errors.New("scenario ID must not be empty")
	}
	if s.Name == "" {
		return errors.New("scenario name must not be empty")
	}
	if s.Kind != pricing.Call && s.Kind != pricing.Put {
		return errors.New("scenario kind must be CALL or PUT")
	}
	if s.Spot <= 0 {
		return errors.New("spot must be positive")
	}
	if s.Strike <= 0 {
		return errors.New("strike must be positive")
	}
	if s.Volatility < 0 {
		return errors.New("volatility must not be negative")
	}
	if s.Maturity < 0 {
		return errors.New("maturity must not be negative")
	}
	return nil
}
