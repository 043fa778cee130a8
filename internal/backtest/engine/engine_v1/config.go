package engine

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-threshold/pkg/errors"
	"github.com/rxtech-lab/argo-threshold/pkg/utils"
	"gopkg.in/yaml.v3"
)

const (
	DefaultInitialCapital     = 100000
	DefaultBuyThreshold       = 30
	DefaultSellThreshold      = 70
	DefaultRSIPeriod          = 14
	DefaultTradingDaysPerYear = 252
)

type BacktestEngineV1Config struct {
	InitialCapital     float64 `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,description=Account value of the first aligned row,minimum=0,default=100000" validate:"gt=0"`
	BuyThreshold       float64 `yaml:"buy_threshold" json:"buy_threshold" jsonschema:"title=Buy Threshold,description=Enter long when the normalized indicator drops below this value,default=30"`
	SellThreshold      float64 `yaml:"sell_threshold" json:"sell_threshold" jsonschema:"title=Sell Threshold,description=Exit when the normalized indicator rises above this value,default=70"`
	RSIPeriod          int     `yaml:"rsi_period" json:"rsi_period" jsonschema:"title=RSI Period,description=Lookback window of the RSI,minimum=1,default=14" validate:"min=1"`
	TradingDaysPerYear int     `yaml:"trading_days_per_year" json:"trading_days_per_year" jsonschema:"title=Trading Days Per Year,description=Periods used to annualize CAGR and Sharpe,minimum=1,default=252" validate:"min=1"`
}

// DefaultConfig returns a BacktestEngineV1Config with default values
func DefaultConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		InitialCapital:     DefaultInitialCapital,
		BuyThreshold:       DefaultBuyThreshold,
		SellThreshold:      DefaultSellThreshold,
		RSIPeriod:          DefaultRSIPeriod,
		TradingDaysPerYear: DefaultTradingDaysPerYear,
	}
}

// ParseConfig decodes YAML on top of the defaults and validates the result.
func ParseConfig(content string) (BacktestEngineV1Config, error) {
	config := DefaultConfig()

	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return BacktestEngineV1Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse engine config", err)
	}

	if err := config.Validate(); err != nil {
		return BacktestEngineV1Config{}, err
	}

	return config, nil
}

// Validate checks the configuration values.
func (c BacktestEngineV1Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid engine config", err)
	}

	return nil
}

// Thresholds returns the configured thresholds.
func (c BacktestEngineV1Config) Thresholds() Thresholds {
	return Thresholds{Buy: c.BuyThreshold, Sell: c.SellThreshold}
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	// Generate schema from BacktestEngineV1Config struct
	schema := utils.ConfigReflector().Reflect(c)

	// Set schema metadata
	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
