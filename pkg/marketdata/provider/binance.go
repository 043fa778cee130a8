package provider

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-threshold/internal/logger"
	"github.com/rxtech-lab/argo-threshold/internal/types"
	"github.com/rxtech-lab/argo-threshold/pkg/errors"
	"go.uber.org/zap"
)

const (
	binanceDailyInterval = "1d"
	// binancePageSize is the default number of klines returned per request.
	binancePageSize = 500
)

// BinanceKlinesService is the subset of the binance klines service used by BinanceClient.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient is the subset of the binance client used by BinanceClient.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceAPIAdapter struct {
	client *binance.Client
}

func (a *binanceAPIAdapter) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesAdapter{service: a.client.NewKlinesService()}
}

type binanceKlinesAdapter struct {
	service *binance.KlinesService
}

func (a *binanceKlinesAdapter) Symbol(symbol string) BinanceKlinesService {
	a.service = a.service.Symbol(symbol)

	return a
}

func (a *binanceKlinesAdapter) Interval(interval string) BinanceKlinesService {
	a.service = a.service.Interval(interval)

	return a
}

func (a *binanceKlinesAdapter) StartTime(startTime int64) BinanceKlinesService {
	a.service = a.service.StartTime(startTime)

	return a
}

func (a *binanceKlinesAdapter) EndTime(endTime int64) BinanceKlinesService {
	a.service = a.service.EndTime(endTime)

	return a
}

func (a *binanceKlinesAdapter) Do(ctx context.Context) ([]*binance.Kline, error) {
	return a.service.Do(ctx)
}

type BinanceClient struct {
	apiClient BinanceAPIClient
	log       *logger.Logger
}

// NewBinanceClient creates a client for the public market data API. Keys may be empty.
func NewBinanceClient(apiKey string, secretKey string, log *logger.Logger) (Provider, error) {
	return NewBinanceClientWithAPI(&binanceAPIAdapter{client: binance.NewClient(apiKey, secretKey)}, log), nil
}

// NewBinanceClientWithAPI builds a client around an existing API implementation.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient, log *logger.Logger) *BinanceClient {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &BinanceClient{
		apiClient: apiClient,
		log:       log,
	}
}

// Fetch implements Provider with daily klines. The end date is inclusive.
func (c *BinanceClient) Fetch(ctx context.Context, ticker string, start time.Time, end time.Time) ([]types.MarketData, error) {
	// Binance API uses milliseconds for timestamps
	currentStartTime := start.UnixMilli()
	endTimeMillis := end.UnixMilli()

	data := make([]types.MarketData, 0)

	for {
		klines, err := c.apiClient.NewKlinesService().
			Symbol(ticker).
			Interval(binanceDailyInterval).
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines for %s from Binance", ticker)
		}

		bars, err := convertKlines(ticker, klines)
		if err != nil {
			return nil, err
		}

		data = append(data, bars...)

		// a short page is the last one
		if len(klines) < binancePageSize {
			break
		}

		// Use the close time of the last kline + 1ms to avoid duplicates
		currentStartTime = klines[len(klines)-1].CloseTime + 1
		if currentStartTime > endTimeMillis {
			break
		}
	}

	c.log.Debug("Fetched binance klines",
		zap.String("ticker", ticker),
		zap.Int("bars", len(data)),
	)

	return data, nil
}

// convertKlines converts Binance kline data to our internal MarketData format.
func convertKlines(ticker string, klines []*binance.Kline) ([]types.MarketData, error) {
	data := make([]types.MarketData, 0, len(klines))

	for _, k := range klines {
		closePrice, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMissingColumn, err, "kline at %d for %s has no usable close price", k.OpenTime, ticker)
		}

		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		volume, _ := strconv.ParseFloat(k.Volume, 64)

		data = append(data, types.MarketData{
			Id:     "",
			Symbol: ticker,
			Time:   time.UnixMilli(k.OpenTime).UTC(), // Using OpenTime as the timestamp for the bar
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}

	return data, nil
}
