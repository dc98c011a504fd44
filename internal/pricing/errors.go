package pricing

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter is returned when an engine, payoff or contract is given
// inputs outside the model's domain (non-positive spot, negative volatility,
// negative maturity, non-positive step count, and so on).
var ErrInvalidParameter = errors.New("invalid parameter")

// ParameterError describes which input was rejected. It unwraps to
// ErrInvalidParameter so callers can match with errors.Is.
type ParameterError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

func invalid(field string, value any, reason string) error {
	return &ParameterError{Field: field, Value: value, Reason: reason}
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// validateMarket checks the market snapshot shared by both engines.
func validateMarket(spot, rate, volatility float64) error {
	if !isFinite(spot) || spot <= 0 {
		return invalid("spot", spot, "must be positive and finite")
	}
	if !isFinite(rate) {
		return invalid("rate", rate, "must be finite")
	}
	if !isFinite(volatility) || volatility < 0 {
		return invalid("volatility", volatility, "must be non-negative and finite")
	}
	return nil
}
