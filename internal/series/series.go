// Package series holds indicator values whose entries may be undefined.
//
// An undefined entry is optional.None. Undefined entries are never coerced to
// zero: statistics skip them and alignment drops the rows that carry them.
package series

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/samber/lo"
)

// Series is a sequence of optional values aligned 1:1 with a price series.
type Series []optional.Option[float64]

// Undefined returns a series of n undefined entries.
func Undefined(n int) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = optional.None[float64]()
	}

	return s
}

// FromValues returns a fully defined series. NaN values become undefined.
func FromValues(values []float64) Series {
	return lo.Map(values, func(v float64, _ int) optional.Option[float64] {
		return Value(v)
	})
}

// Value wraps v, mapping NaN and infinities to an undefined entry.
func Value(v float64) optional.Option[float64] {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return optional.None[float64]()
	}

	return optional.Some(v)
}

// Defined returns the defined values in order.
func (s Series) Defined() []float64 {
	values := make([]float64, 0, len(s))
	for _, v := range s {
		if v.IsSome() {
			values = append(values, v.Unwrap())
		}
	}

	return values
}

// DefinedCount returns the number of defined entries.
func (s Series) DefinedCount() int {
	return lo.CountBy(s, func(v optional.Option[float64]) bool { return v.IsSome() })
}

// IsUndefined reports whether no entry carries a value.
func (s Series) IsUndefined() bool {
	return s.DefinedCount() == 0
}

// Map applies fn to every defined entry. Results that are not finite become undefined.
func (s Series) Map(fn func(float64) float64) Series {
	return lo.Map(s, func(v optional.Option[float64], _ int) optional.Option[float64] {
		if v.IsNone() {
			return v
		}

		return Value(fn(v.Unwrap()))
	})
}

// Clone returns a copy of s.
func (s Series) Clone() Series {
	out := make(Series, len(s))
	copy(out, s)

	return out
}
