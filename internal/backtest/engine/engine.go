package engine

import (
	"context"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-threshold/internal/types"
	"github.com/rxtech-lab/argo-threshold/pkg/marketdata/provider"
)

// DateLayout is the calendar date format accepted for run ranges.
const DateLayout = "2006-01-02"

// RunParams describes one backtest run.
type RunParams struct {
	Ticker string `validate:"required"`
	// Indicator is the indicator name, e.g. "RSI".
	Indicator string `validate:"required"`
	// Normalization is the method label, e.g. "Min-Max". Unknown labels use the raw indicator.
	Normalization string
	// StartDate and EndDate are calendar dates in YYYY-MM-DD. StartDate must not be after EndDate.
	StartDate string `validate:"required,datetime=2006-01-02"`
	EndDate   string `validate:"required,datetime=2006-01-02"`
	// BuyThreshold and SellThreshold override the configured thresholds when set.
	BuyThreshold  optional.Option[float64]
	SellThreshold optional.Option[float64]
}

// Lifecycle callback types for a backtest run
// All callbacks with error return can abort execution if they return an error

// OnRunStartCallback is called after the parameters are validated and before any data is fetched.
type OnRunStartCallback func(runID string, params RunParams) error

// OnRunEndCallback is called when a run finishes (always called via defer).
type OnRunEndCallback func(runID string, err error)

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart *OnRunStartCallback
	OnRunEnd   *OnRunEndCallback
}

type Engine interface {
	// Initialize the engine with the given YAML configuration. Missing keys keep their defaults.
	Initialize(config string) error
	// SetProvider sets the price series provider used by Run.
	SetProvider(provider provider.Provider) error
	// Run fetches the price series and runs the backtest. It either returns a complete
	// result or an error, never a partial result.
	Run(ctx context.Context, params RunParams, callbacks LifecycleCallbacks) (types.BacktestResult, error)
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
