package models

import (
	"errors"
	"math"
	"time"

	"github.com/rewired-gh/optionpricer/internal/pricing"
)

// Comparison puts the European (closed form) and American (lattice) prices of a
// scenario side by side.
type Comparison struct {
	ScenarioID      string             `json:"scenario_id"`
	Name            string             `json:"name"`
	Kind            pricing.OptionKind `json:"kind"`
	European        float64            `json:"european"`
	American        float64            `json:"american"`
	Premium         float64            `json:"premium"` // American - European
	EarlyExercise   bool               `json:"early_exercise"`
	EuropeanRuntime time.Duration      `json:"european_runtime"`
	AmericanRuntime time.Duration      `json:"american_runtime"`
}

// Validate checks that all comparison fields are valid
func (c *Comparison) Validate() error {
	if c.ScenarioID == "" {
		return errors.New("scenario ID must not be empty")
	}
	if c.Kind != pricing.Call && c.Kind != pricing.Put {
		return errors.New("kind must be CALL or PUT")
	}
	if c.European < -priceTolerance || c.American < -priceTolerance {
		return errors.New("prices must not be negative")
	}

	// Verify premium equals the price difference
	if math.Abs(c.Premium-(c.American-c.European)) > 1e-9 {
		return errors.New("premium must equal american - european")
	}

	if c.EuropeanRuntime < 0 || c.AmericanRuntime < 0 {
		return errors.New("runtimes must not be negative")
	}
	return nil
}
