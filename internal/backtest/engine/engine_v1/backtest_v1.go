package engine

import (
	"context"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-threshold/internal/backtest/engine"
	"github.com/rxtech-lab/argo-threshold/internal/indicator"
	"github.com/rxtech-lab/argo-threshold/internal/logger"
	"github.com/rxtech-lab/argo-threshold/internal/normalization"
	"github.com/rxtech-lab/argo-threshold/internal/series"
	"github.com/rxtech-lab/argo-threshold/internal/types"
	"github.com/rxtech-lab/argo-threshold/pkg/errors"
	"github.com/rxtech-lab/argo-threshold/pkg/marketdata/provider"
	"go.uber.org/zap"
)

type BacktestEngineV1 struct {
	config            BacktestEngineV1Config
	log               *logger.Logger
	indicatorRegistry indicator.IndicatorRegistry
	provider          provider.Provider
	validate          *validator.Validate
	now               func() time.Time
}

func NewBacktestEngineV1() engine.Engine {
	return &BacktestEngineV1{
		config:            DefaultConfig(),
		log:               nil,
		indicatorRegistry: indicator.NewDefaultRegistry(),
		provider:          nil,
		validate:          validator.New(),
		now:               time.Now,
	}
}

// SetLogger replaces the logger created by Initialize.
func (b *BacktestEngineV1) SetLogger(log *logger.Logger) {
	b.log = log
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	// parse the config
	parsed, err := ParseConfig(config)
	if err != nil {
		return err
	}

	b.config = parsed

	// initialize the logger
	if b.log == nil {
		var loggerError error

		b.log, loggerError = logger.NewLogger()
		if loggerError != nil {
			return loggerError
		}
	}

	b.log.Debug("Backtest engine initialized",
		zap.Float64("initial_capital", b.config.InitialCapital),
		zap.Float64("buy_threshold", b.config.BuyThreshold),
		zap.Float64("sell_threshold", b.config.SellThreshold),
		zap.Int("rsi_period", b.config.RSIPeriod),
	)

	return nil
}

// SetProvider implements engine.Engine.
func (b *BacktestEngineV1) SetProvider(provider provider.Provider) error {
	if provider == nil {
		return errors.New(errors.ErrCodeInvalidProvider, "provider cannot be nil")
	}

	b.provider = provider

	return nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to generate schema", err)
	}

	return schema, nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, params engine.RunParams, callbacks engine.LifecycleCallbacks) (result types.BacktestResult, err error) {
	if b.log == nil {
		b.log = logger.NewNopLogger()
	}

	runID := uuid.New().String()

	if callbacks.OnRunEnd != nil {
		defer func() {
			(*callbacks.OnRunEnd)(runID, err)
		}()
	}

	start, end, err := b.validateParams(params)
	if err != nil {
		return types.BacktestResult{}, err
	}

	kind, err := types.ParseIndicatorType(params.Indicator)
	if err != nil {
		return types.BacktestResult{}, err
	}

	if b.provider == nil {
		return types.BacktestResult{}, errors.New(errors.ErrCodeInvalidProvider, "no provider set")
	}

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(runID, params); err != nil {
			return types.BacktestResult{}, errors.Wrap(errors.ErrCodeUnknown, "OnRunStart callback failed", err)
		}
	}

	b.log.Debug("Running backtest",
		zap.String("run_id", runID),
		zap.String("ticker", params.Ticker),
		zap.String("indicator", string(kind)),
		zap.String("normalization", params.Normalization),
		zap.String("start_date", params.StartDate),
		zap.String("end_date", params.EndDate),
	)

	prices, err := b.provider.Fetch(ctx, params.Ticker, start, end)
	if err != nil {
		b.log.Error("Failed to fetch prices",
			zap.String("ticker", params.Ticker),
			zap.Error(err),
		)

		if errors.IsCoded(err) {
			return types.BacktestResult{}, err
		}

		return types.BacktestResult{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch prices for %s", params.Ticker)
	}

	if err := validatePrices(prices); err != nil {
		return types.BacktestResult{}, err
	}

	raw, err := indicator.Compute(b.indicatorRegistry, types.ClosePrices(prices), kind, b.config.RSIPeriod)
	if err != nil {
		return types.BacktestResult{}, err
	}

	method, ok := normalization.ParseMethod(params.Normalization)
	if !ok {
		b.log.Debug("Unknown normalization, using raw indicator values",
			zap.String("normalization", params.Normalization),
		)
	}

	frame, err := series.Align(prices, normalization.Normalize(raw, method))
	if err != nil {
		return types.BacktestResult{}, err
	}

	if len(frame) == 0 {
		return types.BacktestResult{}, errors.Wrap(errors.ErrCodeEmptySeries, "no row has a defined indicator value",
			errors.NewInsufficientDataErrorf(b.config.RSIPeriod+1, len(prices), params.Ticker,
				"%s needs more than %d rows", kind, b.config.RSIPeriod))
	}

	sim, err := Simulate(frame, b.config.InitialCapital, b.thresholds(params))
	if err != nil {
		return types.BacktestResult{}, err
	}

	metrics, err := CalculateMetrics(sim.EquityValues(), b.config.TradingDaysPerYear)
	if err != nil {
		return types.BacktestResult{}, err
	}

	result = AssembleResult(runID, params, kind, metrics, sim, frame, b.now())
	if err := result.Validate(); err != nil {
		return types.BacktestResult{}, err
	}

	b.log.Info("Backtest finished",
		zap.String("run_id", runID),
		zap.String("ticker", params.Ticker),
		zap.Int("rows", len(frame)),
		zap.Int("trades", result.NumberOfTrades),
		zap.Float64("cagr", result.Cagr),
		zap.Float64("sharpe", result.Sharpe),
	)

	return result, nil
}

func (b *BacktestEngineV1) validateParams(params engine.RunParams) (time.Time, time.Time, error) {
	if err := b.validate.Struct(params); err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid run parameters", err)
	}

	start, err := time.Parse(engine.DateLayout, params.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrapf(errors.ErrCodeInvalidDate, err, "invalid start date %q", params.StartDate)
	}

	end, err := time.Parse(engine.DateLayout, params.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrapf(errors.ErrCodeInvalidDate, err, "invalid end date %q", params.EndDate)
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, errors.Newf(errors.ErrCodeInvalidDateRange,
			"start date %s is after end date %s", params.StartDate, params.EndDate)
	}

	if err := checkThreshold("buy", params.BuyThreshold); err != nil {
		return time.Time{}, time.Time{}, err
	}

	if err := checkThreshold("sell", params.SellThreshold); err != nil {
		return time.Time{}, time.Time{}, err
	}

	return start, end, nil
}

func (b *BacktestEngineV1) thresholds(params engine.RunParams) Thresholds {
	th := b.config.Thresholds()

	if params.BuyThreshold.IsSome() {
		th.Buy = params.BuyThreshold.Unwrap()
	}

	if params.SellThreshold.IsSome() {
		th.Sell = params.SellThreshold.Unwrap()
	}

	return th
}

// validatePrices checks that rows are in strictly increasing time order with a usable close.
func validatePrices(prices []types.MarketData) error {
	for i, price := range prices {
		if math.IsNaN(price.Close) || math.IsInf(price.Close, 0) {
			return errors.Newf(errors.ErrCodeMissingColumn, "row %d of %s has no usable close price", i, price.Symbol)
		}

		if price.Close <= 0 {
			return errors.Newf(errors.ErrCodeInvalidPriceSeries, "row %d of %s has non-positive close %v", i, price.Symbol, price.Close)
		}

		if i > 0 && !price.Time.After(prices[i-1].Time) {
			return errors.Newf(errors.ErrCodeInvalidPriceSeries, "row %d of %s is not after the previous row", i, price.Symbol)
		}
	}

	return nil
}

func checkThreshold(name string, threshold optional.Option[float64]) error {
	value := threshold.TakeOr(0)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return errors.Newf(errors.ErrCodeInvalidThreshold, "%s threshold must be a finite number", name)
	}

	return nil
}
