package engine

import (
	"github.com/rxtech-lab/argo-threshold/internal/series"
	"github.com/rxtech-lab/argo-threshold/internal/types"
)

// Thresholds are the crossing levels of the normalized indicator.
type Thresholds struct {
	Buy  float64
	Sell float64
}

// StepResult is the outcome of applying one row to the position state.
type StepResult struct {
	State  types.PositionState
	Equity float64
	Action types.TradeAction
}

// Transition applies row to state. prevClose is the close of the preceding aligned row
// and equity the account value after it. Exactly one branch fires:
//   - flat and value below Buy: enter long at the row's close, equity unchanged
//   - long and value above Sell: exit, equity scaled by close/entry price
//   - long otherwise: mark to market, equity scaled by close/prevClose
//   - flat otherwise: equity unchanged
func Transition(state types.PositionState, row series.FrameRow, prevClose float64, equity float64, th Thresholds) StepResult {
	switch {
	case !state.IsLong() && row.Value < th.Buy:
		return StepResult{
			State:  types.LongPosition(row.Close, row.Time),
			Equity: equity,
			Action: types.TradeActionEnter,
		}
	case state.IsLong() && row.Value > th.Sell:
		return StepResult{
			State:  types.FlatPosition(),
			Equity: equity * (row.Close / state.EntryPrice.Unwrap()),
			Action: types.TradeActionExit,
		}
	case state.IsLong():
		return StepResult{
			State:  state,
			Equity: equity * (row.Close / prevClose),
			Action: types.TradeActionHold,
		}
	default:
		return StepResult{
			State:  state,
			Equity: equity,
			Action: types.TradeActionWait,
		}
	}
}
