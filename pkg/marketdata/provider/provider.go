package provider

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-threshold/internal/logger"
	"github.com/rxtech-lab/argo-threshold/internal/types"
	"github.com/rxtech-lab/argo-threshold/pkg/errors"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
	ProviderFile    ProviderType = "file"
)

// Provider supplies daily price series.
type Provider interface {
	// Fetch returns one bar per trading day between start and end (both inclusive),
	// ordered by time. Every bar carries a close price.
	// example:
	// Fetch(ctx, "AAPL", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC))
	Fetch(ctx context.Context, ticker string, start time.Time, end time.Time) ([]types.MarketData, error)
}

// Config holds the credentials and paths the providers need.
type Config struct {
	PolygonApiKey    string
	BinanceApiKey    string
	BinanceSecretKey string
	// DataPath is the parquet or CSV file read by the file provider.
	DataPath string
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(providerType ProviderType, config Config, log *logger.Logger) (Provider, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	switch providerType {
	case ProviderBinance:
		return NewBinanceClient(config.BinanceApiKey, config.BinanceSecretKey, log)
	case ProviderPolygon:
		return NewPolygonClient(config.PolygonApiKey, log)
	case ProviderFile:
		return NewFileProvider(config.DataPath, log)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}
