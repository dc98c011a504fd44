// Package scenario builds the battery of market scenarios the driver prices and
// turns a scenario into the pricing Contract the engines consume.
package scenario

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rewired-gh/optionpricer/internal/config"
	"github.com/rewired-gh/optionpricer/internal/models"
	"github.com/rewired-gh/optionpricer/internal/pricing"
)

// DefaultBattery returns the ten built-in scenarios: at/in the money, high
// volatility, low rate with long maturity, and short maturity, each as a put
// and a call.
func DefaultBattery() []models.Scenario {
	defs := []struct {
		name                              string
		spot, strike, rate, vol, maturity float64
		kind                              pricing.OptionKind
	}{
		{"ATM Put", 100, 100, 0.05, 0.2, 1.0, pricing.Put},
		{"ATM Call", 100, 100, 0.05, 0.2, 1.0, pricing.Call},
		{"ITM Put", 120, 100, 0.05, 0.2, 1.0, pricing.Put},
		{"ITM Call", 80, 100, 0.05, 0.2, 1.0, pricing.Call},
		{"High vol Put", 100, 100, 0.05, 0.4, 1.0, pricing.Put},
		{"High vol Call", 100, 100, 0.05, 0.4, 1.0, pricing.Call},
		{"Low rate long T Put", 100, 100, 0.01, 0.2, 2.0, pricing.Put},
		{"Low rate long T Call", 100, 100, 0.01, 0.2, 2.0, pricing.Call},
		{"Short T Put", 100, 90, 0.05, 0.2, 0.5, pricing.Put},
		{"Short T Call", 100, 110, 0.05, 0.2, 0.5, pricing.Call},
	}

	battery := make([]models.Scenario, 0, len(defs))
	for _, d := range defs {
		battery = append(battery, models.Scenario{
			ID:         Slug(d.name),
			Name:       d.name,
			Kind:       d.kind,
			Spot:       d.spot,
			Strike:     d.strike,
			Rate:       d.rate,
			Volatility: d.vol,
			Maturity:   d.maturity,
		})
	}
	return battery
}

// FromConfig converts configured scenarios. An empty list yields the default battery.
func FromConfig(cfgs []config.ScenarioConfig) ([]models.Scenario, error) {
	if len(cfgs) == 0 {
		return DefaultBattery(), nil
	}

	result := make([]models.Scenario, 0, len(cfgs))
	seen := make(map[string]bool, len(cfgs))
	for i, c := range cfgs {
		kind, err := pricing.ParseOptionKind(c.Kind)
		if err != nil {
			return nil, fmt.Errorf("scenario %d (%s): %w", i, c.Name, err)
		}
		s := models.Scenario{
			ID:         Slug(c.Name),
			Name:       c.Name,
			Kind:       kind,
			Spot:       c.Spot,
			Strike:     c.Strike,
			Rate:       c.Rate,
			Volatility: c.Volatility,
			Maturity:   c.Maturity,
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("scenario %d (%s): %w", i, c.Name, err)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("scenario %d (%s): duplicate id %q", i, c.Name, s.ID)
		}
		seen[s.ID] = true
		result = append(result, s)
	}
	return result, nil
}

// Contract builds the payoff and contract for s.
func Contract(s models.Scenario) (pricing.Contract, error) {
	payoff, err := pricing.NewPayoff(s.Kind, s.Strike)
	if err != nil {
		return pricing.Contract{}, err
	}
	return pricing.NewContract(s.Maturity, payoff)
}

// Slug lowercases name and joins its alphanumeric runs with dashes:
// "Low rate, long T Put" becomes "low-rate-long-t-put".
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
