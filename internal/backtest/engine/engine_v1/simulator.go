package engine

import (
	"math"

	"github.com/rxtech-lab/argo-threshold/internal/series"
	"github.com/rxtech-lab/argo-threshold/internal/types"
	"github.com/rxtech-lab/argo-threshold/pkg/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Simulation is the output of a single pass of the position state machine.
type Simulation struct {
	Equity     []types.EquityPoint
	Actions    []types.TradeAction
	Trades     []types.Trade
	FinalState types.PositionState
}

// EquityValues returns the equity curve without timestamps.
func (s Simulation) EquityValues() []float64 {
	return lo.Map(s.Equity, func(p types.EquityPoint, _ int) float64 { return p.Equity })
}

// Simulate runs the Flat/Long state machine over frame from left to right.
// The first row only seeds the curve with initialCapital; its indicator value is never
// evaluated, so no entry can happen on it. A position still open after the last row
// stays open.
func Simulate(frame series.Frame, initialCapital float64, th Thresholds) (Simulation, error) {
	if len(frame) == 0 {
		return Simulation{}, errors.New(errors.ErrCodeEmptySeries, "cannot simulate an empty frame")
	}

	if initialCapital <= 0 || math.IsInf(initialCapital, 0) || math.IsNaN(initialCapital) {
		return Simulation{}, errors.Newf(errors.ErrCodeInvalidParameter, "initial capital must be positive, got %v", initialCapital)
	}

	state := types.FlatPosition()
	equity := initialCapital
	entryEquity := initialCapital

	sim := Simulation{
		Equity:  make([]types.EquityPoint, 0, len(frame)),
		Actions: make([]types.TradeAction, 0, len(frame)),
		Trades:  make([]types.Trade, 0),
	}
	sim.Equity = append(sim.Equity, types.EquityPoint{Time: frame[0].Time, Equity: equity})
	sim.Actions = append(sim.Actions, types.TradeActionWait)

	for i := 1; i < len(frame); i++ {
		row := frame[i]
		step := Transition(state, row, frame[i-1].Close, equity, th)

		if math.IsNaN(step.Equity) || math.IsInf(step.Equity, 0) || step.Equity <= 0 {
			return Simulation{}, errors.Newf(errors.ErrCodeSimulationFailed,
				"equity is not a positive finite number at %s", row.Time.Format("2006-01-02"))
		}

		switch step.Action {
		case types.TradeActionEnter:
			entryEquity = equity
		case types.TradeActionExit:
			pnl, _ := decimal.NewFromFloat(step.Equity).Sub(decimal.NewFromFloat(entryEquity)).Float64()
			sim.Trades = append(sim.Trades, types.Trade{
				EntryTime:  state.EntryTime.Unwrap(),
				ExitTime:   row.Time,
				EntryPrice: state.EntryPrice.Unwrap(),
				ExitPrice:  row.Close,
				PnL:        pnl,
			})
		}

		if !step.State.IsValid() {
			return Simulation{}, errors.Newf(errors.ErrCodeSimulationFailed, "unreachable position state %q", step.State.State)
		}

		state = step.State
		equity = step.Equity
		sim.Equity = append(sim.Equity, types.EquityPoint{Time: row.Time, Equity: equity})
		sim.Actions = append(sim.Actions, step.Action)
	}

	sim.FinalState = state

	return sim, nil
}
