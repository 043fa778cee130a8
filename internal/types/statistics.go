package types

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/rxtech-lab/argo-threshold/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RequiredResultKeys are the record keys every consumer of a backtest result relies on.
var RequiredResultKeys = []string{"cagr", "sharpe", "max_drawdown", "win_rate", "equity_curve"}

// BacktestResult is the output record of one backtest run.
// Metrics other than Sharpe are percentages. All metrics are rounded to 2 decimals.
type BacktestResult struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Ticker is the symbol the prices were fetched for.
	Ticker string `yaml:"ticker" json:"ticker"`
	// Indicator is the indicator that drove the signals.
	Indicator IndicatorType `yaml:"indicator" json:"indicator"`
	// Normalization is the normalization method as requested by the caller.
	Normalization string `yaml:"normalization" json:"normalization"`
	// StartDate and EndDate are the requested calendar range in YYYY-MM-DD.
	StartDate string `yaml:"start_date" json:"start_date"`
	EndDate   string `yaml:"end_date" json:"end_date"`
	// Compound annual growth rate in percent.
	Cagr float64 `yaml:"cagr" json:"cagr"`
	// Annualized Sharpe ratio.
	Sharpe float64 `yaml:"sharpe" json:"sharpe"`
	// Largest peak to trough decline in percent. Never positive.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// Share of periods with a positive return in percent.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// NumberOfTrades counts completed round trips.
	NumberOfTrades int `yaml:"number_of_trades" json:"number_of_trades"`
	// EquityCurve holds one account value per aligned row.
	EquityCurve []float64 `yaml:"equity_curve" json:"equity_curve"`
	// IndicatorValues holds the normalized indicator value per aligned row.
	IndicatorValues []float64 `yaml:"indicator_values" json:"indicator_values"`
	// Trades lists the completed round trips.
	Trades []Trade `yaml:"trades,omitempty" json:"trades,omitempty"`
	// CreatedAt is when this backtest run was executed.
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

// Validate checks that the result is complete enough to hand to a consumer.
func (r BacktestResult) Validate() error {
	if len(r.EquityCurve) == 0 {
		return errors.New(errors.ErrCodeResultIncomplete, "equity curve is empty")
	}

	if len(r.EquityCurve) != len(r.IndicatorValues) {
		return errors.Newf(errors.ErrCodeResultIncomplete,
			"equity curve has %d values but indicator has %d", len(r.EquityCurve), len(r.IndicatorValues))
	}

	metrics := []struct {
		name  string
		value float64
	}{
		{"cagr", r.Cagr},
		{"sharpe", r.Sharpe},
		{"max_drawdown", r.MaxDrawdown},
		{"win_rate", r.WinRate},
	}
	for _, metric := range metrics {
		if math.IsNaN(metric.value) || math.IsInf(metric.value, 0) {
			return errors.Newf(errors.ErrCodeResultIncomplete, "metric %s is not a finite number", metric.name)
		}
	}

	return nil
}

// ToRecord converts the result into the opaque key/value record handed to the
// persistence and API layers.
func (r BacktestResult) ToRecord() (map[string]any, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backtest result: %w", err)
	}

	record := make(map[string]any)
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal backtest result: %w", err)
	}

	return record, nil
}

// RequireKeys fails if any of keys is absent from record.
func RequireKeys(record map[string]any, keys ...string) error {
	for _, key := range keys {
		if _, ok := record[key]; !ok {
			return errors.Newf(errors.ErrCodeResultIncomplete, "missing key in result: %s", key)
		}
	}

	return nil
}

func WriteBacktestResult(path string, result BacktestResult) error {
	// Marshal the struct to YAML
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest result to YAML: %w", err)
	}

	// Write the YAML data to the file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest result to file: %w", err)
	}

	return nil
}
