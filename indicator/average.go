package indicator

import (
	talib "github.com/markcheno/go-talib"
)

// warmup marks the leading values of a talib output, which are zero filled, as
// undefined.
func warmup(series []float64, lookback int) []float64 {
	for idx := 0; idx < lookback && idx < len(series); idx++ {
		series[idx] = null
	}

	return series
}

// SMA calculates the simple moving average of the provided data.
func SMA(data []float64, period int) []float64 {
	if period <= 0 || len(data) < period {
		return nulls(len(data))
	}

	return warmup(talib.Sma(data, period), period-1)
}

// EMA calculates the exponential moving average of the provided data. The average
// is seeded with the simple average of the first window.
func EMA(data []float64, period int) []float64 {
	if period <= 0 || len(data) < period {
		return nulls(len(data))
	}

	return warmup(talib.Ema(data, period), period-1)
}
