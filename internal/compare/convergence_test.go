package compare

import (
	"testing"

	"github.com/rewired-gh/optionpricer/internal/pricing"
	"github.com/rewired-gh/optionpricer/internal/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweep_EuropeanConverges(t *testing.T) {
	atmCall := scenario.DefaultBattery()[1]
	steps := []int{10, 100, 1000, 10000}

	points, err := Sweep(atmCall, steps, pricing.European)
	require.NoError(t, err)
	require.Len(t, points, len(steps))

	for i, p := range points {
		assert.Equal(t, steps[i], p.Steps)
		assert.InDelta(t, 10.450583572185565, p.Analytic, 1e-7)
		assert.InDelta(t, p.Lattice-p.Analytic, p.Difference, 1e-15)
		assert.GreaterOrEqual(t, p.AbsError, 0.0)
	}
	assert.True(t, NonIncreasing(points))
	assert.Less(t, points[len(points)-1].AbsError, 1e-3)
}

func TestSweep_AmericanPutStaysAbove(t *testing.T) {
	atmPut := scenario.DefaultBattery()[0]

	points, err := Sweep(atmPut, []int{100, 1000}, pricing.American)
	require.NoError(t, err)
	for _, p := range points {
		assert.Greater(t, p.Difference, 0.2)
	}
}

func TestSweep_Errors(t *testing.T) {
	sc := scenario.DefaultBattery()[0]

	_, err := Sweep(sc, []int{10, 0}, pricing.European)
	assert.ErrorIs(t, err, pricing.ErrInvalidParameter)

	sc.Volatility = -0.1
	_, err = Sweep(sc, []int{10}, pricing.European)
	assert.Error(t, err)
}

func TestNonIncreasing(t *testing.T) {
	assert.True(t, NonIncreasing(nil))
	assert.True(t, NonIncreasing([]ConvergencePoint{{AbsError: 1}, {AbsError: 0.5}, {AbsError: 0.5}}))
	assert.False(t, NonIncreasing([]ConvergencePoint{{AbsError: 1}, {AbsError: 0.5}, {AbsError: 0.6}}))
}
