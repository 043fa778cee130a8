package indicator

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-threshold/internal/series"
	"github.com/rxtech-lab/argo-threshold/internal/types"
	"github.com/rxtech-lab/argo-threshold/pkg/errors"
)

// DefaultRSIPeriod is the lookback window used when none is configured.
const DefaultRSIPeriod = 14

// RSI represents the Relative Strength Index indicator.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	return &RSI{
		period: DefaultRSIPeriod,
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Period returns the configured lookback window.
func (r *RSI) Period() int {
	return r.period
}

// Config configures the RSI indicator. Expected parameters: period (int).
func (r *RSI) Config(params ...any) error {
	if len(params) < 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects at least 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidParameter, "invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	r.period = period

	return nil
}

// Compute calculates RSI over the whole close series with Wilder's smoothing.
// The first period entries are undefined, so a series of period+1 closes yields a single value.
func (r *RSI) Compute(closes []float64) (series.Series, error) {
	for i, c := range closes {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, errors.Newf(errors.ErrCodeIndicatorCalculation, "close price at index %d is not a finite number", i)
		}
	}

	out := series.Undefined(len(closes))
	if len(closes) <= r.period {
		return out, nil
	}

	period := float64(r.period)

	// First average over the initial window of price changes
	avgGain := 0.0
	avgLoss := 0.0

	for i := 1; i <= r.period; i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}

	avgGain /= period
	avgLoss /= period

	out[r.period] = optional.Some(rsiFromAverages(avgGain, avgLoss))

	// Subsequent averages using Wilder's smoothing method
	for i := r.period + 1; i < len(closes); i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain = (avgGain*(period-1) + gain) / period
		avgLoss = (avgLoss*(period-1) + loss) / period

		out[i] = optional.Some(rsiFromAverages(avgGain, avgLoss))
	}

	return out, nil
}

func splitChange(change float64) (gain float64, loss float64) {
	if change > 0 {
		return change, 0
	}

	return 0, -change
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100 // Perfect uptrend, or no movement at all
	}

	rs := avgGain / avgLoss
	rsi := 100 - (100 / (1 + rs))

	return math.Min(100, math.Max(0, rsi))
}
