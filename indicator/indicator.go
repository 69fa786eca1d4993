// Package indicator implements pure technical indicators over price series.
//
// Every function returns a series aligned 1:1 with its input. Indices where an
// indicator is undefined (warm-up windows, degenerate denominators) hold NaN.
package indicator

import (
	"math"

	"github.com/shopspring/decimal"
)

// null is the undefined indicator value.
var null = math.NaN()

// IsNull checks whether the provided indicator value is undefined.
func IsNull(v float64) bool {
	return math.IsNaN(v)
}

// Last returns the final value of the provided series and whether it is defined.
func Last(series []float64) (float64, bool) {
	if len(series) == 0 {
		return null, false
	}

	v := series[len(series)-1]
	return v, !IsNull(v)
}

// LastOrNull returns the final value of the provided series, or NaN for an empty series.
func LastOrNull(series []float64) float64 {
	v, _ := Last(series)
	return v
}

// nulls returns a series of the provided length filled with undefined values.
func nulls(n int) []float64 {
	series := make([]float64, n)
	for idx := range series {
		series[idx] = null
	}

	return series
}

// Round rounds the provided value half away from zero to the given number of
// decimal places. Undefined and infinite values are returned as NaN.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null
	}

	rounded, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return rounded
}

// highest returns the maximum of the provided values.
func highest(data []float64) float64 {
	hi := math.Inf(-1)
	for idx := range data {
		if data[idx] > hi {
			hi = data[idx]
		}
	}

	return hi
}

// lowest returns the minimum of the provided values.
func lowest(data []float64) float64 {
	lo := math.Inf(1)
	for idx := range data {
		if data[idx] < lo {
			lo = data[idx]
		}
	}

	return lo
}
