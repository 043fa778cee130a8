package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// TradeState is the holding of the simulated account at one timestamp.
type TradeState string

const (
	TradeStateFlat TradeState = "flat"
	TradeStateLong TradeState = "long"
)

// PositionState is the simulator state threaded from one row to the next.
// EntryPrice is Some exactly while State is TradeStateLong.
type PositionState struct {
	State      TradeState
	EntryPrice optional.Option[float64]
	EntryTime  optional.Option[time.Time]
}

// FlatPosition is the initial simulator state.
func FlatPosition() PositionState {
	return PositionState{
		State:      TradeStateFlat,
		EntryPrice: optional.None[float64](),
		EntryTime:  optional.None[time.Time](),
	}
}

// LongPosition opens a position at the given price.
func LongPosition(entryPrice float64, entryTime time.Time) PositionState {
	return PositionState{
		State:      TradeStateLong,
		EntryPrice: optional.Some(entryPrice),
		EntryTime:  optional.Some(entryTime),
	}
}

func (p PositionState) IsLong() bool {
	return p.State == TradeStateLong
}

// IsValid reports whether the state is one of the two reachable holdings
// and the entry price is set accordingly.
func (p PositionState) IsValid() bool {
	switch p.State {
	case TradeStateFlat:
		return p.EntryPrice.IsNone()
	case TradeStateLong:
		return p.EntryPrice.IsSome()
	default:
		return false
	}
}

// TradeAction is the branch of the transition that fired for a row.
type TradeAction string

const (
	TradeActionEnter TradeAction = "enter"
	TradeActionExit  TradeAction = "exit"
	TradeActionHold  TradeAction = "hold"
	TradeActionWait  TradeAction = "wait"
)

// EquityPoint is one entry of the equity curve.
type EquityPoint struct {
	Time   time.Time `json:"time" yaml:"time"`
	Equity float64   `json:"equity" yaml:"equity"`
}

// Trade is a completed long round trip.
type Trade struct {
	EntryTime  time.Time `json:"entry_time" yaml:"entry_time"`
	ExitTime   time.Time `json:"exit_time" yaml:"exit_time"`
	EntryPrice float64   `json:"entry_price" yaml:"entry_price"`
	ExitPrice  float64   `json:"exit_price" yaml:"exit_price"`
	// PnL is the change of account equity realized by the exit.
	PnL float64 `json:"pnl" yaml:"pnl"`
}

// Return is the fractional price return of the trade.
func (t Trade) Return() float64 {
	if t.EntryPrice == 0 {
		return 0
	}

	ret, _ := decimal.NewFromFloat(t.ExitPrice).
		Div(decimal.NewFromFloat(t.EntryPrice)).
		Sub(decimal.NewFromInt(1)).
		Float64()

	return ret
}

// IsWin reports whether the trade closed above its entry.
func (t Trade) IsWin() bool {
	return t.ExitPrice > t.EntryPrice
}
