package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeUnsupportedIndicator, "indicator %s is not supported", "MACD")
	suite.Equal(ErrCodeUnsupportedIndicator, err.Code)
	suite.Equal("indicator MACD is not supported", err.Message)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("connection refused")
	err := Wrapf(ErrCodeMarketDataFetchFailed, cause, "failed to fetch %s", "AAPL")
	suite.Equal(ErrCodeMarketDataFetchFailed, err.Code)
	suite.Equal("failed to fetch AAPL", err.Message)
	suite.Equal(cause, err.Cause)
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestErrorString() {
	suite.Equal("[100] invalid parameter", New(ErrCodeInvalidParameter, "invalid parameter").Error())

	err := Wrap(ErrCodeDataNotFound, "data not found", errors.New("underlying error"))
	suite.Equal("[200] data not found: underlying error", err.Error())
}

func (suite *ErrorTestSuite) TestGetCode() {
	suite.Equal(ErrCodeInvalidParameter, GetCode(New(ErrCodeInvalidParameter, "x")))
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("standard error")))

	// the outermost code wins
	inner := New(ErrCodeMissingColumn, "no close column")
	outer := Wrap(ErrCodeMarketDataFetchFailed, "fetch failed", inner)
	suite.Equal(ErrCodeMarketDataFetchFailed, GetCode(outer))

	// fmt wrapping keeps the code reachable
	wrapped := fmt.Errorf("engine: %w", inner)
	suite.Equal(ErrCodeMissingColumn, GetCode(wrapped))
	suite.True(IsCoded(wrapped))
	suite.False(IsCoded(errors.New("plain")))
}

func (suite *ErrorTestSuite) TestKinds() {
	testCases := []struct {
		name        string
		err         error
		validation  bool
		unsupported bool
		missing     bool
		computation bool
	}{
		{name: "invalid date", err: New(ErrCodeInvalidDate, "bad date"), validation: true},
		{name: "bad price series", err: New(ErrCodeInvalidPriceSeries, "dup"), validation: true},
		{name: "unsupported indicator", err: New(ErrCodeUnsupportedIndicator, "macd"), unsupported: true},
		{name: "missing column", err: New(ErrCodeMissingColumn, "close"), missing: true},
		{name: "empty series", err: New(ErrCodeEmptySeries, "empty"), computation: true},
		{name: "indicator calculation", err: New(ErrCodeIndicatorCalculation, "nan"), computation: true},
		{name: "metrics", err: New(ErrCodeMetricsFailed, "inf"), computation: true},
		{name: "plain", err: errors.New("plain")},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.Equal(tc.validation, IsInputValidationError(tc.err))
			suite.Equal(tc.unsupported, IsUnsupportedIndicatorError(tc.err))
			suite.Equal(tc.missing, IsMissingColumnError(tc.err))
			suite.Equal(tc.computation, IsComputationError(tc.err))
		})
	}
}

func (suite *ErrorTestSuite) TestAsError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")

	var coded *Error
	suite.True(As(err, &coded))
	suite.Equal(ErrCodeInvalidParameter, coded.Code)
	suite.True(Is(Wrap(ErrCodeQueryFailed, "q", err), err))
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataErrorf(15, 10, "SPY", "need %d rows, got %d", 15, 10)
	suite.Equal(15, err.Required)
	suite.Equal(10, err.Actual)
	suite.Equal("SPY", err.Symbol)
	suite.Equal("need 15 rows, got 10", err.Error())

	suite.True(IsInsufficientDataError(Wrap(ErrCodeEmptySeries, "empty", err)))
	suite.False(IsInsufficientDataError(errors.New("standard error")))
	suite.False(IsInsufficientDataError(nil))
	suite.True(IsInsufficientDataError(NewInsufficientDataError(1, 0, "", "empty")))
}
