// Package normalization rescales an indicator series onto a comparable scale.
//
// Statistics are taken over the defined entries only. When a method's scale is
// degenerate (zero deviation, zero range, zero mean) every entry of the result is
// undefined. This is a data condition, not an error.
package normalization

import (
	"math"
	"sort"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-threshold/internal/series"
)

// Method selects how a series is rescaled.
type Method string

const (
	MethodNone        Method = "none"
	MethodZScore      Method = "z_score"
	MethodMinMax      Method = "min_max"
	MethodMeanScaling Method = "mean_scaling"
	MethodRankScaling Method = "rank_scaling"
)

// AllMethods lists the methods in display order.
var AllMethods = []Method{MethodZScore, MethodMinMax, MethodMeanScaling, MethodRankScaling, MethodNone}

var methodAliases = map[string]Method{
	"z-score":      MethodZScore,
	"zscore":       MethodZScore,
	"z_score":      MethodZScore,
	"min-max":      MethodMinMax,
	"minmax":       MethodMinMax,
	"min_max":      MethodMinMax,
	"mean scaling": MethodMeanScaling,
	"mean_scaling": MethodMeanScaling,
	"rank scaling": MethodRankScaling,
	"rank_scaling": MethodRankScaling,
	"none":         MethodNone,
}

// ParseMethod maps a display label ("Z-score", "Min-Max", "Mean Scaling", "Rank Scaling")
// or its snake case form to a Method. Unrecognized names map to MethodNone and ok is false;
// callers pass the raw indicator through in that case.
func ParseMethod(name string) (method Method, ok bool) {
	method, ok = methodAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return MethodNone, false
	}

	return method, true
}

// Label returns the display label of the method.
func (m Method) Label() string {
	switch m {
	case MethodZScore:
		return "Z-score"
	case MethodMinMax:
		return "Min-Max"
	case MethodMeanScaling:
		return "Mean Scaling"
	case MethodRankScaling:
		return "Rank Scaling"
	case MethodNone:
		return "None"
	default:
		return string(m)
	}
}

// Normalize rescales s with method m. The result has the same length as s and
// undefined inputs stay undefined.
func Normalize(s series.Series, m Method) series.Series {
	switch m {
	case MethodZScore:
		return zScore(s)
	case MethodMinMax:
		return minMax(s)
	case MethodMeanScaling:
		return meanScaling(s)
	case MethodRankScaling:
		return rankScaling(s)
	case MethodNone:
		return s.Clone()
	default:
		return s.Clone()
	}
}

func zScore(s series.Series) series.Series {
	values := s.Defined()

	mean, ok := series.Mean(values)
	if !ok || series.AllEqual(values) {
		return series.Undefined(len(s))
	}

	std, ok := series.SampleStdDev(values)
	if !ok || std == 0 {
		return series.Undefined(len(s))
	}

	return s.Map(func(x float64) float64 { return (x - mean) / std })
}

func minMax(s series.Series) series.Series {
	values := s.Defined()
	if len(values) == 0 {
		return series.Undefined(len(s))
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if hi == lo {
		return series.Undefined(len(s))
	}

	return s.Map(func(x float64) float64 { return (x - lo) / (hi - lo) })
}

func meanScaling(s series.Series) series.Series {
	mean, ok := series.Mean(s.Defined())
	if !ok || mean == 0 {
		return series.Undefined(len(s))
	}

	return s.Map(func(x float64) float64 { return x / mean })
}

// rankScaling assigns each defined value its percentile rank. Ties share the
// average of the ranks they span.
func rankScaling(s series.Series) series.Series {
	type entry struct {
		index int
		value float64
	}

	entries := make([]entry, 0, len(s))
	for i, v := range s {
		if v.IsSome() {
			entries = append(entries, entry{index: i, value: v.Unwrap()})
		}
	}

	out := series.Undefined(len(s))
	if len(entries) == 0 {
		return out
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].value < entries[j].value })

	count := float64(len(entries))

	for start := 0; start < len(entries); {
		end := start
		for end+1 < len(entries) && entries[end+1].value == entries[start].value {
			end++
		}

		// ranks are 1-based: positions start..end hold ranks start+1..end+1
		avgRank := float64(start+end+2) / 2

		for k := start; k <= end; k++ {
			out[entries[k].index] = optional.Some(avgRank / count)
		}

		start = end + 1
	}

	return out
}
