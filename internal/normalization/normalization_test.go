package normalization

import (
	"math"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-threshold/internal/series"
	"github.com/stretchr/testify/suite"
)

type NormalizationTestSuite struct {
	suite.Suite
}

func TestNormalizationSuite(t *testing.T) {
	suite.Run(t, new(NormalizationTestSuite))
}

func withLeadingGap(values ...float64) series.Series {
	return append(series.Undefined(2), series.FromValues(values)...)
}

func (suite *NormalizationTestSuite) TestParseMethod() {
	testCases := []struct {
		name   string
		method Method
		ok     bool
	}{
		{name: "Z-score", method: MethodZScore, ok: true},
		{name: "zscore", method: MethodZScore, ok: true},
		{name: "Min-Max", method: MethodMinMax, ok: true},
		{name: "min_max", method: MethodMinMax, ok: true},
		{name: "Mean Scaling", method: MethodMeanScaling, ok: true},
		{name: "Rank Scaling", method: MethodRankScaling, ok: true},
		{name: " RANK_SCALING ", method: MethodRankScaling, ok: true},
		{name: "None", method: MethodNone, ok: true},
		{name: "Log Scaling", method: MethodNone, ok: false},
		{name: "", method: MethodNone, ok: false},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			method, ok := ParseMethod(tc.name)
			suite.Equal(tc.method, method)
			suite.Equal(tc.ok, ok)
		})
	}
}

func (suite *NormalizationTestSuite) TestLabelsRoundTrip() {
	for _, m := range AllMethods {
		parsed, ok := ParseMethod(m.Label())
		suite.True(ok, m)
		suite.Equal(m, parsed)
	}
}

func (suite *NormalizationTestSuite) TestZScore() {
	out := Normalize(withLeadingGap(1, 2, 3), MethodZScore)
	suite.Require().Len(out, 5)
	suite.True(out[0].IsNone())
	suite.True(out[1].IsNone())

	// mean 2, sample std 1
	suite.InDelta(-1.0, out[2].Unwrap(), 1e-12)
	suite.InDelta(0.0, out[3].Unwrap(), 1e-12)
	suite.InDelta(1.0, out[4].Unwrap(), 1e-12)
}

func (suite *NormalizationTestSuite) TestMinMax() {
	out := Normalize(withLeadingGap(10, 20, 30, 15), MethodMinMax)
	suite.Equal([]float64{0, 0.5, 1, 0.25}, out.Defined())
	suite.True(out[0].IsNone())
}

func (suite *NormalizationTestSuite) TestMeanScaling() {
	out := Normalize(series.FromValues([]float64{1, 2, 3}), MethodMeanScaling)
	suite.InDelta(0.5, out[0].Unwrap(), 1e-12)
	suite.InDelta(1.0, out[1].Unwrap(), 1e-12)
	suite.InDelta(1.5, out[2].Unwrap(), 1e-12)
}

func (suite *NormalizationTestSuite) TestRankScalingTies() {
	in := series.Series{
		optional.None[float64](),
		optional.Some(30.0),
		optional.Some(10.0),
		optional.Some(30.0),
		optional.Some(20.0),
	}

	out := Normalize(in, MethodRankScaling)
	suite.True(out[0].IsNone())
	// ranks: 10 -> 1, 20 -> 2, 30 -> (3+4)/2
	suite.InDelta(3.5/4, out[1].Unwrap(), 1e-12)
	suite.InDelta(1.0/4, out[2].Unwrap(), 1e-12)
	suite.InDelta(3.5/4, out[3].Unwrap(), 1e-12)
	suite.InDelta(2.0/4, out[4].Unwrap(), 1e-12)

	for _, v := range out.Defined() {
		suite.Greater(v, 0.0)
		suite.LessOrEqual(v, 1.0)
	}
}

func (suite *NormalizationTestSuite) TestDegenerateScalesAreUndefined() {
	constant := withLeadingGap(0.1, 0.1, 0.1, 0.1)
	zeros := series.FromValues([]float64{0, 0, 0})
	balanced := series.FromValues([]float64{-1, 1})

	testCases := []struct {
		name   string
		in     series.Series
		method Method
	}{
		{name: "zero deviation", in: constant, method: MethodZScore},
		{name: "single value deviation", in: series.FromValues([]float64{5}), method: MethodZScore},
		{name: "zero range", in: constant, method: MethodMinMax},
		{name: "zero mean", in: zeros, method: MethodMeanScaling},
		{name: "balanced mean", in: balanced, method: MethodMeanScaling},
		{name: "all undefined rank", in: series.Undefined(4), method: MethodRankScaling},
		{name: "all undefined zscore", in: series.Undefined(4), method: MethodZScore},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			out := Normalize(tc.in, tc.method)
			suite.Len(out, len(tc.in))
			suite.True(out.IsUndefined())
		})
	}
}

func (suite *NormalizationTestSuite) TestNonePassthrough() {
	in := withLeadingGap(42, 17.5, 63)

	for _, m := range []Method{MethodNone, Method("unknown")} {
		out := Normalize(in, m)
		suite.Equal(in, out)

		out[2] = optional.Some(math.Pi)
		suite.Equal(42.0, in[2].Unwrap(), "passthrough must copy")
	}
}
