package series

import "math"

// Mean returns the arithmetic mean. ok is false for an empty slice.
func Mean(values []float64) (mean float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values)), true
}

// SampleStdDev returns the n-1 standard deviation. ok is false for fewer than two values.
func SampleStdDev(values []float64) (std float64, ok bool) {
	if len(values) < 2 {
		return 0, false
	}

	mean, _ := Mean(values)

	sumSquares := 0.0
	for _, v := range values {
		sumSquares += (v - mean) * (v - mean)
	}

	return math.Sqrt(sumSquares / float64(len(values)-1)), true
}

// AllEqual reports whether every value equals the first one.
func AllEqual(values []float64) bool {
	for _, v := range values {
		if v != values[0] {
			return false
		}
	}

	return true
}
