package engine

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	engine_types "github.com/rxtech-lab/argo-threshold/internal/backtest/engine"
	"github.com/rxtech-lab/argo-threshold/internal/indicator"
	"github.com/rxtech-lab/argo-threshold/internal/logger"
	"github.com/rxtech-lab/argo-threshold/internal/types"
	"github.com/rxtech-lab/argo-threshold/mocks"
	"github.com/rxtech-lab/argo-threshold/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BacktestEngineV1TestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	provider *mocks.MockProvider
	engine   *BacktestEngineV1
	start    time.Time
}

func TestBacktestEngineV1Suite(t *testing.T) {
	suite.Run(t, new(BacktestEngineV1TestSuite))
}

func (suite *BacktestEngineV1TestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.provider = mocks.NewMockProvider(suite.ctrl)
	suite.start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	backtest, ok := NewBacktestEngineV1().(*BacktestEngineV1)
	suite.Require().True(ok)
	backtest.SetLogger(logger.NewNopLogger())
	suite.Require().NoError(backtest.Initialize(""))
	suite.Require().NoError(backtest.SetProvider(suite.provider))

	suite.engine = backtest
}

func (suite *BacktestEngineV1TestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *BacktestEngineV1TestSuite) params(normalization string) engine_types.RunParams {
	return engine_types.RunParams{
		Ticker:        "SPY",
		Indicator:     "RSI",
		Normalization: normalization,
		StartDate:     "2024-01-01",
		EndDate:       "2024-12-31",
	}
}

func (suite *BacktestEngineV1TestSuite) expectFetch(data []types.MarketData, err error) {
	suite.provider.EXPECT().
		Fetch(gomock.Any(), "SPY", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)).
		Return(data, err).
		Times(1)
}

func (suite *BacktestEngineV1TestSuite) TestConstantPriceStaysFlat() {
	suite.expectFetch(mocks.ConstantCloses("SPY", suite.start, 30, 100), nil)

	result, err := suite.engine.Run(context.Background(), suite.params("None"), engine_types.LifecycleCallbacks{})
	suite.Require().NoError(err)

	suite.Require().Len(result.EquityCurve, 30-indicator.DefaultRSIPeriod)
	suite.Len(result.IndicatorValues, len(result.EquityCurve))

	for _, equity := range result.EquityCurve {
		suite.Equal(100000.0, equity)
	}

	suite.Equal(0.0, result.Cagr)
	suite.Equal(0.0, result.Sharpe)
	suite.Equal(0.0, result.MaxDrawdown)
	suite.Equal(0.0, result.WinRate)
	suite.Equal(0, result.NumberOfTrades)
	suite.Equal(types.IndicatorTypeRSI, result.Indicator)
	suite.NotEmpty(result.ID)
}

func (suite *BacktestEngineV1TestSuite) TestUnknownNormalizationUsesRawIndicator() {
	data := mocks.NewDataGenerator(3).Generate(mocks.DefaultConfig())
	suite.expectFetch(data, nil)

	result, err := suite.engine.Run(context.Background(), suite.params("Foo"), engine_types.LifecycleCallbacks{})
	suite.Require().NoError(err)

	rsi := indicator.NewRSI()
	suite.Require().NoError(rsi.Config(indicator.DefaultRSIPeriod))
	raw, err := rsi.Compute(types.ClosePrices(data))
	suite.Require().NoError(err)

	suite.Equal(raw.Defined(), result.IndicatorValues)
	suite.Equal("Foo", result.Normalization)
}

func (suite *BacktestEngineV1TestSuite) TestTooFewRowsForRSI() {
	suite.expectFetch(mocks.FromCloses("SPY", suite.start, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}), nil)

	result, err := suite.engine.Run(context.Background(), suite.params("Z-Score"), engine_types.LifecycleCallbacks{})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeEmptySeries))
	suite.True(errors.IsComputationError(err))
	suite.True(errors.IsInsufficientDataError(err))
	suite.Empty(result.EquityCurve)
}

func (suite *BacktestEngineV1TestSuite) TestProperties() {
	normalizations := []string{"None", "Z-Score", "Min-Max", "Mean Scaling", "Rank Scaling"}

	for i, normalization := range normalizations {
		suite.Run(normalization, func() {
			suite.expectFetch(mocks.NewDataGenerator(int64(i)).Generate(mocks.DefaultConfig()), nil)

			params := suite.params(normalization)
			if normalization != "None" {
				params.BuyThreshold = optional.Some(0.2)
				params.SellThreshold = optional.Some(0.8)
			}

			result, err := suite.engine.Run(context.Background(), params, engine_types.LifecycleCallbacks{})
			suite.Require().NoError(err)

			suite.Require().NotEmpty(result.EquityCurve)
			suite.Equal(100000.0, result.EquityCurve[0])
			suite.Len(result.IndicatorValues, len(result.EquityCurve))
			suite.LessOrEqual(result.MaxDrawdown, 0.0)
			suite.GreaterOrEqual(result.WinRate, 0.0)
			suite.LessOrEqual(result.WinRate, 100.0)
			suite.Equal(len(result.Trades), result.NumberOfTrades)

			record, err := result.ToRecord()
			suite.Require().NoError(err)
			suite.NoError(types.RequireKeys(record, types.RequiredResultKeys...))
		})
	}
}

func (suite *BacktestEngineV1TestSuite) TestMissingClose() {
	data := mocks.ConstantCloses("SPY", suite.start, 30, 100)
	data[7].Close = nan()
	suite.expectFetch(data, nil)

	_, err := suite.engine.Run(context.Background(), suite.params("None"), engine_types.LifecycleCallbacks{})
	suite.Require().Error(err)
	suite.True(errors.IsMissingColumnError(err))
}

func (suite *BacktestEngineV1TestSuite) TestUnorderedPrices() {
	data := mocks.ConstantCloses("SPY", suite.start, 30, 100)
	data[3].Time = data[2].Time
	suite.expectFetch(data, nil)

	_, err := suite.engine.Run(context.Background(), suite.params("None"), engine_types.LifecycleCallbacks{})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPriceSeries))
}

func (suite *BacktestEngineV1TestSuite) TestUnsupportedIndicator() {
	params := suite.params("None")
	params.Indicator = "MACD"

	_, err := suite.engine.Run(context.Background(), params, engine_types.LifecycleCallbacks{})
	suite.Require().Error(err)
	suite.True(errors.IsUnsupportedIndicatorError(err))
}

func (suite *BacktestEngineV1TestSuite) TestInvalidParams() {
	tests := []struct {
		name   string
		modify func(p *engine_types.RunParams)
		code   errors.ErrorCode
	}{
		{name: "missing ticker", modify: func(p *engine_types.RunParams) { p.Ticker = "" }, code: errors.ErrCodeInvalidParameter},
		{name: "missing indicator", modify: func(p *engine_types.RunParams) { p.Indicator = "" }, code: errors.ErrCodeInvalidParameter},
		{name: "malformed start date", modify: func(p *engine_types.RunParams) { p.StartDate = "2024-13-01" }, code: errors.ErrCodeInvalidParameter},
		{name: "malformed end date", modify: func(p *engine_types.RunParams) { p.EndDate = "31/12/2024" }, code: errors.ErrCodeInvalidParameter},
		{name: "start after end", modify: func(p *engine_types.RunParams) { p.StartDate = "2025-01-01" }, code: errors.ErrCodeInvalidDateRange},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			params := suite.params("None")
			tt.modify(&params)

			_, err := suite.engine.Run(context.Background(), params, engine_types.LifecycleCallbacks{})
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, tt.code))
			suite.True(errors.IsInputValidationError(err))
		})
	}
}

func (suite *BacktestEngineV1TestSuite) TestFetchFailure() {
	suite.expectFetch(nil, fmt.Errorf("connection refused"))

	_, err := suite.engine.Run(context.Background(), suite.params("None"), engine_types.LifecycleCallbacks{})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
}

func (suite *BacktestEngineV1TestSuite) TestCodedFetchFailureIsKept() {
	suite.expectFetch(nil, errors.New(errors.ErrCodeMissingColumn, "no close column"))

	_, err := suite.engine.Run(context.Background(), suite.params("None"), engine_types.LifecycleCallbacks{})
	suite.Require().Error(err)
	suite.True(errors.IsMissingColumnError(err))
}

func (suite *BacktestEngineV1TestSuite) TestIndicatorFailure() {
	registry := mocks.NewMockIndicatorRegistry(suite.ctrl)
	registry.EXPECT().GetIndicator(types.IndicatorTypeRSI).
		Return(nil, errors.New(errors.ErrCodeIndicatorCalculation, "boom")).
		Times(1)
	suite.engine.indicatorRegistry = registry

	suite.expectFetch(mocks.ConstantCloses("SPY", suite.start, 30, 100), nil)

	_, err := suite.engine.Run(context.Background(), suite.params("None"), engine_types.LifecycleCallbacks{})
	suite.Require().Error(err)
	suite.True(errors.IsComputationError(err))
}

func (suite *BacktestEngineV1TestSuite) TestCallbacks() {
	suite.expectFetch(mocks.ConstantCloses("SPY", suite.start, 30, 100), nil)

	var startedID, endedID string

	var endErr error

	onStart := engine_types.OnRunStartCallback(func(runID string, params engine_types.RunParams) error {
		startedID = runID

		return nil
	})
	onEnd := engine_types.OnRunEndCallback(func(runID string, err error) {
		endedID = runID
		endErr = err
	})

	result, err := suite.engine.Run(context.Background(), suite.params("None"), engine_types.LifecycleCallbacks{
		OnRunStart: &onStart,
		OnRunEnd:   &onEnd,
	})
	suite.Require().NoError(err)
	suite.Equal(result.ID, startedID)
	suite.Equal(result.ID, endedID)
	suite.NoError(endErr)
}

func (suite *BacktestEngineV1TestSuite) TestOnRunStartAborts() {
	var endErr error

	onStart := engine_types.OnRunStartCallback(func(string, engine_types.RunParams) error {
		return fmt.Errorf("stop")
	})
	onEnd := engine_types.OnRunEndCallback(func(_ string, err error) {
		endErr = err
	})

	_, err := suite.engine.Run(context.Background(), suite.params("None"), engine_types.LifecycleCallbacks{
		OnRunStart: &onStart,
		OnRunEnd:   &onEnd,
	})
	suite.Require().Error(err)
	suite.Equal(err, endErr)
}

func (suite *BacktestEngineV1TestSuite) TestRunWithoutProvider() {
	backtest := NewBacktestEngineV1()

	_, err := backtest.Run(context.Background(), suite.params("None"), engine_types.LifecycleCallbacks{})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
	suite.Error(backtest.SetProvider(nil))
}

func (suite *BacktestEngineV1TestSuite) TestInitializeInvalidConfig() {
	backtest := NewBacktestEngineV1()

	err := backtest.Initialize("initial_capital: -5")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *BacktestEngineV1TestSuite) TestGetConfigSchema() {
	schema, err := suite.engine.GetConfigSchema()
	suite.Require().NoError(err)
	suite.Contains(schema, "initial_capital")
	suite.Contains(schema, "sell_threshold")
}

func (suite *BacktestEngineV1TestSuite) TestNonFiniteThresholds() {
	tests := []struct {
		name    string
		buy     float64
		sell    float64
		wantMsg string
	}{
		{name: "both invalid reports buy", buy: nan(), sell: math.Inf(1), wantMsg: "buy threshold"},
		{name: "sell invalid", buy: 30, sell: math.Inf(-1), wantMsg: "sell threshold"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			params := suite.params("None")
			params.BuyThreshold = optional.Some(tc.buy)
			params.SellThreshold = optional.Some(tc.sell)

			for range 5 {
				_, err := suite.engine.Run(context.Background(), params, engine_types.LifecycleCallbacks{})
				suite.Require().Error(err)
				suite.True(errors.HasCode(err, errors.ErrCodeInvalidThreshold))
				suite.Contains(err.Error(), tc.wantMsg)
			}
		})
	}
}
