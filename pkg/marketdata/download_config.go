package marketdata

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-threshold/pkg/errors"
)

// BaseDownloadConfig contains common fields for all download configurations.
type BaseDownloadConfig struct {
	Ticker    string `json:"ticker" yaml:"ticker" jsonschema:"title=Ticker,description=The symbol to download daily bars for (e.g. SPY or BTCUSDT),required" validate:"required"`
	StartDate string `json:"startDate" yaml:"start_date" jsonschema:"title=Start Date,description=First calendar date (YYYY-MM-DD),format=date,required" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" yaml:"end_date" jsonschema:"title=End Date,description=Last calendar date (YYYY-MM-DD),format=date,required" validate:"required,datetime=2006-01-02"`
}

// PolygonDownloadConfig contains configuration for downloading from Polygon.io.
type PolygonDownloadConfig struct {
	BaseDownloadConfig

	ApiKey string `json:"apiKey" yaml:"api_key" jsonschema:"title=API Key,description=Polygon.io API key for authentication,required" validate:"required"`
}

// BinanceDownloadConfig contains configuration for downloading from Binance.
// Binance public market data API does not require authentication.
type BinanceDownloadConfig struct {
	BaseDownloadConfig
}

// Validate validates the BaseDownloadConfig fields.
func (c *BaseDownloadConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download config", err)
	}

	params, err := c.ToDownloadParams()
	if err != nil {
		return err
	}

	if params.StartDate.After(params.EndDate) {
		return errors.Newf(errors.ErrCodeInvalidDateRange, "startDate %s is after endDate %s", c.StartDate, c.EndDate)
	}

	return nil
}

// Validate validates the PolygonDownloadConfig.
func (c *PolygonDownloadConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download config", err)
	}

	return c.BaseDownloadConfig.Validate()
}

// Validate validates the BinanceDownloadConfig.
func (c *BinanceDownloadConfig) Validate() error {
	return c.BaseDownloadConfig.Validate()
}

// ToDownloadParams converts a BaseDownloadConfig to DownloadParams.
func (c *BaseDownloadConfig) ToDownloadParams() (DownloadParams, error) {
	startDate, err := time.Parse(time.DateOnly, c.StartDate)
	if err != nil {
		return DownloadParams{}, errors.Wrapf(errors.ErrCodeInvalidDate, err, "failed to parse startDate %q", c.StartDate)
	}

	endDate, err := time.Parse(time.DateOnly, c.EndDate)
	if err != nil {
		return DownloadParams{}, errors.Wrapf(errors.ErrCodeInvalidDate, err, "failed to parse endDate %q", c.EndDate)
	}

	return DownloadParams{
		Ticker:    c.Ticker,
		StartDate: startDate,
		EndDate:   endDate,
	}, nil
}

// ParsePolygonConfig parses JSON into a PolygonDownloadConfig.
func ParsePolygonConfig(jsonConfig string) (*PolygonDownloadConfig, error) {
	var config PolygonDownloadConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse JSON config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ParseBinanceConfig parses JSON into a BinanceDownloadConfig.
func ParseBinanceConfig(jsonConfig string) (*BinanceDownloadConfig, error) {
	var config BinanceDownloadConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse JSON config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
