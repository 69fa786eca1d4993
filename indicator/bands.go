package indicator

import (
	talib "github.com/markcheno/go-talib"
)

// Bands represents a volatility envelope around a moving average.
type Bands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
	// Bandwidth is the band width as a percentage of the middle line. Only populated
	// for bollinger bands.
	Bandwidth []float64
}

// BollingerBands calculates bollinger bands using the population standard deviation
// of each window.
func BollingerBands(data []float64, period int, mult float64) Bands {
	if period < 2 || len(data) < period {
		return Bands{
			Upper:     nulls(len(data)),
			Middle:    nulls(len(data)),
			Lower:     nulls(len(data)),
			Bandwidth: nulls(len(data)),
		}
	}

	upper, middle, lower := talib.BBands(data, period, mult, mult, talib.SMA)
	bands := Bands{
		Upper:     warmup(upper, period-1),
		Middle:    warmup(middle, period-1),
		Lower:     warmup(lower, period-1),
		Bandwidth: nulls(len(data)),
	}

	for idx := period - 1; idx < len(data); idx++ {
		bands.Bandwidth[idx] = 0
		if middle[idx] > 0 {
			bands.Bandwidth[idx] = ((upper[idx] - lower[idx]) / middle[idx]) * 100
		}
	}

	return bands
}

// KeltnerChannels calculates keltner channels around an exponential average of
// closes, offset by a multiple of the exponentially averaged true range.
func KeltnerChannels(highs []float64, lows []float64, closes []float64, period int, mult float64) Bands {
	ema := EMA(closes, period)
	atr := ATR(highs, lows, closes, period)

	bands := Bands{
		Upper:  nulls(len(closes)),
		Middle: ema,
		Lower:  nulls(len(closes)),
	}

	for idx := range closes {
		if IsNull(ema[idx]) || IsNull(atr[idx]) {
			continue
		}

		bands.Upper[idx] = ema[idx] + mult*atr[idx]
		bands.Lower[idx] = ema[idx] - mult*atr[idx]
	}

	return bands
}

// Squeeze checks whether the bollinger bands sit entirely inside the keltner channels.
func Squeeze(bb Bands, kc Bands) bool {
	bbUpper, ok := Last(bb.Upper)
	if !ok {
		return false
	}
	bbLower, ok := Last(bb.Lower)
	if !ok {
		return false
	}
	kcUpper, ok := Last(kc.Upper)
	if !ok {
		return false
	}
	kcLower, ok := Last(kc.Lower)
	if !ok {
		return false
	}

	return bbLower > kcLower && bbUpper < kcUpper
}
