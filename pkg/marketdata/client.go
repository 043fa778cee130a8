package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-threshold/internal/logger"
	"github.com/rxtech-lab/argo-threshold/pkg/errors"
	"github.com/rxtech-lab/argo-threshold/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-threshold/pkg/marketdata/writer"
	"go.uber.org/zap"
)

// OnDownloadProgress is called after every written bar.
type OnDownloadProgress = func(current int, total int, message string)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType provider.ProviderType `validate:"required,oneof=polygon binance file"`
	DataPath     string                `validate:"required"`
	Provider     provider.Config
}

// DownloadParams holds the parameters for a market data download request.
type DownloadParams struct {
	Ticker    string    `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtefield=StartDate"`
}

// Client downloads daily bars from a provider and stores them as parquet files.
type Client struct {
	provider   provider.Provider
	dataPath   string
	validate   *validator.Validate
	onProgress OnDownloadProgress
	log        *logger.Logger
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress OnDownloadProgress, log *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, config.Provider, log)
	if err != nil {
		return nil, err
	}

	return NewClientWithProvider(marketProvider, config.DataPath, onProgress, log), nil
}

// NewClientWithProvider creates a client around an existing provider.
func NewClientWithProvider(marketProvider provider.Provider, dataPath string, onProgress OnDownloadProgress, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Client{
		provider:   marketProvider,
		dataPath:   dataPath,
		validate:   validator.New(),
		onProgress: onProgress,
		log:        log,
	}
}

// OutputFileName returns TICKER_START_END_1_day.parquet.
func OutputFileName(params DownloadParams) string {
	return fmt.Sprintf("%s_%s_%s_1_day.parquet",
		strings.ToUpper(params.Ticker),
		params.StartDate.Format(time.DateOnly),
		params.EndDate.Format(time.DateOnly))
}

// Download fetches the bars and writes them to the data path. It returns the parquet file path.
// The context can be used to cancel the fetch.
func (c *Client) Download(ctx context.Context, params DownloadParams) (path string, err error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	data, err := c.provider.Fetch(ctx, params.Ticker, params.StartDate, params.EndDate)
	if err != nil {
		if errors.IsCoded(err) {
			return "", err
		}

		return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s", params.Ticker)
	}

	if len(data) == 0 {
		return "", errors.Newf(errors.ErrCodeDataNotFound, "no bars for %s between %s and %s",
			params.Ticker, params.StartDate.Format(time.DateOnly), params.EndDate.Format(time.DateOnly))
	}

	// check if datapath exist. Otherwise, create it
	if err := os.MkdirAll(c.dataPath, 0755); err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create %s", c.dataPath)
	}

	marketWriter := writer.NewDuckDBWriter(filepath.Join(c.dataPath, OutputFileName(params)), c.log)
	if err := marketWriter.Initialize(); err != nil {
		return "", err
	}

	defer func() {
		if cerr := marketWriter.Close(); cerr != nil {
			if err == nil {
				err = cerr
			} else {
				c.log.Warn("Failed to close writer after another error", zap.Error(cerr))
			}
		}
	}()

	message := fmt.Sprintf("Downloading %s", params.Ticker)

	for i, bar := range data {
		if err := marketWriter.Write(bar); err != nil {
			return "", err
		}

		if c.onProgress != nil {
			c.onProgress(i+1, len(data), message)
		}
	}

	path, err = marketWriter.Finalize()
	if err != nil {
		return "", err
	}

	c.log.Info("Finished download",
		zap.String("ticker", params.Ticker),
		zap.Int("bars", len(data)),
		zap.String("path", path),
	)

	return path, nil
}
