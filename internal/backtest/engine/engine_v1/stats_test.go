package engine

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-threshold/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyReturns(t *testing.T) {
	assert.Empty(t, DailyReturns(nil))
	assert.Empty(t, DailyReturns([]float64{100}))

	returns := DailyReturns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.1, returns[0], 1e-12)
	assert.InDelta(t, -0.1, returns[1], 1e-12)
}

func TestCAGRRoundTrip(t *testing.T) {
	cagr, err := CAGR([]float64{100000, 110000}, DefaultTradingDaysPerYear)
	require.NoError(t, err)

	expected := math.Pow(1.1, 252.0/2) - 1
	assert.InEpsilon(t, expected, cagr, 1e-12)
}

func TestCAGREmpty(t *testing.T) {
	_, err := CAGR(nil, DefaultTradingDaysPerYear)
	require.Error(t, err)
	assert.True(t, errors.IsComputationError(err))
}

func TestSharpe(t *testing.T) {
	tests := []struct {
		name     string
		returns  []float64
		expected float64
	}{
		{name: "empty", returns: nil, expected: 0},
		{name: "single return", returns: []float64{0.05}, expected: 0},
		{name: "equal returns", returns: []float64{0.01, 0.01, 0.01, 0.01}, expected: 0},
		{name: "all zero", returns: []float64{0, 0, 0}, expected: 0},
		// mean 0.01, sample std 0.01
		{name: "mixed", returns: []float64{0, 0.01, 0.02}, expected: math.Sqrt(252)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Sharpe(tt.returns, DefaultTradingDaysPerYear), 1e-9)
		})
	}
}

func TestMaxDrawdown(t *testing.T) {
	assert.Equal(t, 0.0, MaxDrawdown(nil))
	assert.Equal(t, 0.0, MaxDrawdown([]float64{100, 110, 120}))
	assert.InDelta(t, -0.25, MaxDrawdown([]float64{100, 120, 90, 130}), 1e-12)
	assert.InDelta(t, -0.5, MaxDrawdown([]float64{100, 50, 80, 60}), 1e-12)
}

func TestWinRate(t *testing.T) {
	assert.Equal(t, 0.0, WinRate(nil))
	assert.Equal(t, 50.0, WinRate([]float64{0.1, -0.1, 0, 0.2}))
	assert.Equal(t, 0.0, WinRate([]float64{0, 0, 0}))
}

func TestCalculateMetricsFlatCurve(t *testing.T) {
	metrics, err := CalculateMetrics([]float64{100000, 100000, 100000}, DefaultTradingDaysPerYear)
	require.NoError(t, err)

	assert.Equal(t, Metrics{}, metrics)
	assert.False(t, math.Signbit(metrics.MaxDrawdown))
}

func TestCalculateMetricsRounding(t *testing.T) {
	metrics, err := CalculateMetrics([]float64{100, 120, 90, 130}, 3)
	require.NoError(t, err)

	// (1.3)^(3/4) - 1 = 0.217467...
	assert.Equal(t, 21.75, metrics.Cagr)
	assert.Equal(t, -25.0, metrics.MaxDrawdown)
	assert.Equal(t, 66.67, metrics.WinRate)
	assert.LessOrEqual(t, metrics.MaxDrawdown, 0.0)
}

func TestCalculateMetricsNonFinite(t *testing.T) {
	_, err := CalculateMetrics([]float64{0, 100}, DefaultTradingDaysPerYear)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMetricsFailed))
}

func nan() float64 {
	return math.NaN()
}
