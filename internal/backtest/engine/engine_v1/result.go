package engine

import (
	"time"

	"github.com/rxtech-lab/argo-threshold/internal/backtest/engine"
	"github.com/rxtech-lab/argo-threshold/internal/series"
	"github.com/rxtech-lab/argo-threshold/internal/types"
)

// AssembleResult packages the metrics, the equity curve and the normalized indicator
// values of one run. Curves are copied so the result shares no memory with its inputs.
func AssembleResult(runID string, params engine.RunParams, kind types.IndicatorType, metrics Metrics, sim Simulation, frame series.Frame, createdAt time.Time) types.BacktestResult {
	trades := make([]types.Trade, len(sim.Trades))
	copy(trades, sim.Trades)

	return types.BacktestResult{
		ID:              runID,
		Ticker:          params.Ticker,
		Indicator:       kind,
		Normalization:   params.Normalization,
		StartDate:       params.StartDate,
		EndDate:         params.EndDate,
		Cagr:            metrics.Cagr,
		Sharpe:          metrics.Sharpe,
		MaxDrawdown:     metrics.MaxDrawdown,
		WinRate:         metrics.WinRate,
		NumberOfTrades:  len(trades),
		EquityCurve:     sim.EquityValues(),
		IndicatorValues: frame.Values(),
		Trades:          trades,
		CreatedAt:       createdAt,
	}
}
