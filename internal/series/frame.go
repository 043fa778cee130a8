package series

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-threshold/internal/types"
	"github.com/rxtech-lab/argo-threshold/pkg/errors"
	"github.com/samber/lo"
)

// FrameRow is one row where both the close price and the indicator value are defined.
type FrameRow struct {
	Time  time.Time
	Close float64
	Value float64
}

// Frame is the aligned input of the simulator.
type Frame []FrameRow

// Align joins prices with values by position and drops every row where the value
// or the close is undefined.
func Align(prices []types.MarketData, values Series) (Frame, error) {
	if len(prices) != len(values) {
		return nil, errors.Newf(errors.ErrCodeFrameMismatch,
			"cannot align %d prices with %d indicator values", len(prices), len(values))
	}

	frame := make(Frame, 0, len(prices))

	for i, price := range prices {
		if values[i].IsNone() || math.IsNaN(price.Close) {
			continue
		}

		frame = append(frame, FrameRow{
			Time:  price.Time,
			Close: price.Close,
			Value: values[i].Unwrap(),
		})
	}

	return frame, nil
}

// Closes returns the close column.
func (f Frame) Closes() []float64 {
	return lo.Map(f, func(row FrameRow, _ int) float64 { return row.Close })
}

// Values returns the indicator column.
func (f Frame) Values() []float64 {
	return lo.Map(f, func(row FrameRow, _ int) float64 { return row.Value })
}
