package indicator

import (
	talib "github.com/markcheno/go-talib"
)

// RSI calculates the relative strength index of the provided data using Wilder's
// average gain and loss recurrence. A window without losses reads 100, including
// a window without any price change.
func RSI(data []float64, period int) []float64 {
	if period < 2 || len(data) <= period {
		return nulls(len(data))
	}

	rsi := warmup(talib.Rsi(data, period), period)

	// talib reads a series that has never moved as 0.
	for idx := 1; idx < len(data); idx++ {
		if data[idx] != data[idx-1] {
			break
		}
		if idx >= period {
			rsi[idx] = 100
		}
	}

	return rsi
}
