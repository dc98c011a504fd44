package compare

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rewired-gh/optionpricer/internal/models"
	"github.com/rewired-gh/optionpricer/internal/pricing"
	"github.com/rewired-gh/optionpricer/internal/runner"
	"github.com/rewired-gh/optionpricer/internal/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quote(id, model string, price float64) models.Quote {
	return models.Quote{
		ID:       fmt.Sprintf("%s-%s", id, model),
		RunID:    "run",
		Scenario: models.Scenario{ID: id, Name: id, Kind: pricing.Put, Spot: 100, Strike: 100, Rate: 0.05, Volatility: 0.2, Maturity: 1},
		Model:    model,
		Price:    price,
		Runtime:  time.Millisecond,
		PricedAt: time.Now(),
	}
}

func comparison(id string, premium float64, early bool) models.Comparison {
	return models.Comparison{ScenarioID: id, Kind: pricing.Put, European: 5, American: 5 + premium, Premium: premium, EarlyExercise: early}
}

func TestCompare_PairsQuotes(t *testing.T) {
	c := New(1e-6)
	quotes := []models.Quote{
		quote("a", models.ModelBlackScholes, 5.5735),
		quote("a", models.ModelBinomialTree, 6.0896),
		quote("b", models.ModelBinomialTree, 10.4506),
		quote("b", models.ModelBlackScholes, 10.4506),
	}

	comps, errs := c.Compare(quotes)
	require.Empty(t, errs)
	require.Len(t, comps, 2)

	assert.Equal(t, "a", comps[0].ScenarioID)
	assert.InDelta(t, 0.5161, comps[0].Premium, 1e-12)
	assert.True(t, comps[0].EarlyExercise)
	assert.Equal(t, time.Millisecond, comps[0].AmericanRuntime)

	assert.Equal(t, "b", comps[1].ScenarioID)
	assert.Equal(t, 0.0, comps[1].Premium)
	assert.False(t, comps[1].EarlyExercise)

	for _, comp := range comps {
		require.NoError(t, comp.Validate())
	}
}

func TestCompare_Tolerance(t *testing.T) {
	quotes := []models.Quote{
		quote("a", models.ModelBlackScholes, 10),
		quote("a", models.ModelBinomialTree, 10.001),
	}

	comps, _ := New(0.01).Compare(quotes)
	require.Len(t, comps, 1)
	assert.False(t, comps[0].EarlyExercise)

	comps, _ = New(0.0001).Compare(quotes)
	require.Len(t, comps, 1)
	assert.True(t, comps[0].EarlyExercise)

	// Negative tolerance is clamped to zero
	comps, _ = New(-1).Compare([]models.Quote{
		quote("a", models.ModelBlackScholes, 10),
		quote("a", models.ModelBinomialTree, 9.99),
	})
	require.Len(t, comps, 1)
	assert.False(t, comps[0].EarlyExercise)
}

func TestCompare_Errors(t *testing.T) {
	quotes := []models.Quote{
		quote("missing-tree", models.ModelBlackScholes, 1),
		quote("missing-bs", models.ModelBinomialTree, 1),
		quote("dup", models.ModelBlackScholes, 1),
		quote("dup", models.ModelBlackScholes, 1),
		quote("dup", models.ModelBinomialTree, 1),
		quote("ok", models.ModelBlackScholes, 1),
		quote("ok", models.ModelBinomialTree, 1),
		quote("ok", "Monte Carlo", 1),
	}

	comps, errs := New(0).Compare(quotes)
	require.Len(t, comps, 1)
	assert.Equal(t, "ok", comps[0].ScenarioID)

	require.Len(t, errs, 4)
	ids := make(map[string]bool)
	for _, e := range errs {
		ids[e.ScenarioID] = true
		assert.Contains(t, e.Error(), e.ScenarioID)
	}
	for _, id := range []string{"missing-tree", "missing-bs", "dup", "ok"} {
		assert.True(t, ids[id], "expected error for %s", id)
	}
}

func TestCompare_Empty(t *testing.T) {
	comps, errs := New(0).Compare(nil)
	assert.NotNil(t, comps)
	assert.Empty(t, comps)
	assert.Empty(t, errs)
}

func TestTopEarlyExercise_Ranking(t *testing.T) {
	comps := []models.Comparison{
		comparison("a", 0.1, true),
		comparison("b", 0.5, true),
		comparison("c", 0.9, false),
		comparison("d", 0.3, true),
	}

	top := TopEarlyExercise(comps, 10)
	require.Len(t, top, 3)
	assert.Equal(t, "b", top[0].ScenarioID)
	assert.Equal(t, "d", top[1].ScenarioID)
	assert.Equal(t, "a", top[2].ScenarioID)
}

func TestTopEarlyExercise_TopKLimit(t *testing.T) {
	comps := []models.Comparison{
		comparison("a", 0.1, true),
		comparison("b", 0.5, true),
		comparison("c", 0.3, true),
	}

	top := TopEarlyExercise(comps, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "b", top[0].ScenarioID)
	assert.Equal(t, "c", top[1].ScenarioID)
}

func TestTopEarlyExercise_TieBreak(t *testing.T) {
	comps := []models.Comparison{
		comparison("alpha", 0.2, true),
		comparison("gamma", 0.2, true),
		comparison("beta", 0.2, true),
	}

	top := TopEarlyExercise(comps, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "gamma", top[0].ScenarioID)
	assert.Equal(t, "beta", top[1].ScenarioID)
	assert.Equal(t, "alpha", top[2].ScenarioID)
}

func TestTopEarlyExercise_EmptyResults(t *testing.T) {
	tests := []struct {
		name  string
		comps []models.Comparison
		k     int
	}{
		{"nil input", nil, 5},
		{"none flagged", []models.Comparison{comparison("a", 0, false)}, 5},
		{"zero k", []models.Comparison{comparison("a", 1, true)}, 0},
		{"negative k", []models.Comparison{comparison("a", 1, true)}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top := TopEarlyExercise(tt.comps, tt.k)
			assert.NotNil(t, top)
			assert.Empty(t, top)
		})
	}
}

func TestSummarize(t *testing.T) {
	comps := []models.Comparison{
		comparison("a", 0.1, true),
		comparison("b", 0.5, true),
		comparison("c", 0.0, false),
	}
	comps[0].EuropeanRuntime = 2 * time.Microsecond
	comps[1].EuropeanRuntime = 4 * time.Microsecond
	comps[2].EuropeanRuntime = 6 * time.Microsecond
	comps[0].AmericanRuntime = 3 * time.Millisecond
	comps[1].AmericanRuntime = 3 * time.Millisecond
	comps[2].AmericanRuntime = 3 * time.Millisecond

	s, err := Summarize(comps)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Scenarios)
	assert.Equal(t, 2, s.EarlyExercise)
	assert.InDelta(t, 0.2, s.MeanPremium, 1e-12)
	assert.InDelta(t, 0.1, s.MedianPremium, 1e-12)
	assert.InDelta(t, 0.5, s.MaxPremium, 1e-12)
	assert.Greater(t, s.StdDevPremium, 0.0)
	assert.Equal(t, 4*time.Microsecond, s.MeanEuropeanRuntime)
	assert.Equal(t, 3*time.Millisecond, s.MeanAmericanRuntime)
}

func TestSummarize_Empty(t *testing.T) {
	s, err := Summarize(nil)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, s)
}

func TestCompare_DefaultBatteryEndToEnd(t *testing.T) {
	result, err := runner.New(runner.Config{Steps: 500, Workers: 4, Exercise: pricing.American}).
		Run(context.Background(), scenario.DefaultBattery())
	require.NoError(t, err)

	comps, errs := New(1e-3).Compare(result.Quotes)
	require.Empty(t, errs)
	require.Len(t, comps, 10)

	for _, c := range comps {
		require.NoError(t, c.Validate())
		// Calls carry no early-exercise value without dividends
		if c.Kind == pricing.Call {
			assert.InDelta(t, 0.0, c.Premium, 0.05, c.Name)
		}
	}

	// The ATM put is the textbook early-exercise case
	assert.True(t, comps[0].EarlyExercise)
	assert.Greater(t, comps[0].Premium, 0.2)
}
