package engine

import (
	"math"

	"github.com/rxtech-lab/argo-threshold/internal/series"
	"github.com/rxtech-lab/argo-threshold/pkg/errors"
	"github.com/shopspring/decimal"
)

// Metrics are the risk/return statistics of an equity curve.
// Cagr, MaxDrawdown and WinRate are percentages; Sharpe is a plain ratio.
// Every value is rounded to 2 decimals.
type Metrics struct {
	Cagr        float64
	Sharpe      float64
	MaxDrawdown float64
	WinRate     float64
}

// DailyReturns returns E_i/E_{i-1} - 1 for every i >= 1. Empty for fewer than two points.
func DailyReturns(equity []float64) []float64 {
	if len(equity) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		returns[i-1] = equity[i]/equity[i-1] - 1
	}

	return returns
}

// CAGR returns (E_{n-1}/E_0)^(periodsPerYear/n) - 1 as a fraction.
func CAGR(equity []float64, periodsPerYear int) (float64, error) {
	if len(equity) == 0 {
		return 0, errors.New(errors.ErrCodeMetricsFailed, "CAGR is undefined for an empty equity curve")
	}

	n := float64(len(equity))

	return math.Pow(equity[len(equity)-1]/equity[0], float64(periodsPerYear)/n) - 1, nil
}

// Sharpe returns sqrt(periodsPerYear) * mean / sample standard deviation of returns.
// It is 0 when the deviation is zero or cannot be estimated (fewer than two returns).
func Sharpe(returns []float64, periodsPerYear int) float64 {
	std, ok := series.SampleStdDev(returns)
	if !ok || std == 0 || series.AllEqual(returns) {
		return 0
	}

	mean, _ := series.Mean(returns)

	return math.Sqrt(float64(periodsPerYear)) * mean / std
}

// MaxDrawdown returns the most negative (E_i - M_i)/M_i where M_i is the running maximum.
// The result is a fraction and never positive.
func MaxDrawdown(equity []float64) float64 {
	if len(equity) == 0 {
		return 0
	}

	peak := equity[0]
	worst := 0.0

	for _, e := range equity {
		peak = math.Max(peak, e)

		if drawdown := (e - peak) / peak; drawdown < worst {
			worst = drawdown
		}
	}

	return worst
}

// WinRate returns the percentage of returns strictly above zero. 0 when there are none.
func WinRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	wins := 0

	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}

	return float64(wins) / float64(len(returns)) * 100
}

// CalculateMetrics derives all statistics from an equity curve.
func CalculateMetrics(equity []float64, periodsPerYear int) (Metrics, error) {
	cagr, err := CAGR(equity, periodsPerYear)
	if err != nil {
		return Metrics{}, err
	}

	returns := DailyReturns(equity)

	raw := []struct {
		name  string
		value float64
	}{
		{name: "cagr", value: cagr * 100},
		{name: "sharpe", value: Sharpe(returns, periodsPerYear)},
		{name: "max_drawdown", value: MaxDrawdown(equity) * 100},
		{name: "win_rate", value: WinRate(returns)},
	}

	rounded := make([]float64, len(raw))

	for i, metric := range raw {
		if math.IsNaN(metric.value) || math.IsInf(metric.value, 0) {
			return Metrics{}, errors.Newf(errors.ErrCodeMetricsFailed, "%s is not a finite number", metric.name)
		}

		rounded[i] = roundTo2(metric.value)
	}

	return Metrics{
		Cagr:        rounded[0],
		Sharpe:      rounded[1],
		MaxDrawdown: rounded[2],
		WinRate:     rounded[3],
	}, nil
}

func roundTo2(value float64) float64 {
	rounded := decimal.NewFromFloat(value).Round(2).InexactFloat64()
	if rounded == 0 {
		return 0 // drop the sign of negative zero
	}

	return rounded
}
