package indicator

import "github.com/dnldd/chimera/shared"

// OBV calculates on-balance volume. Unchanged closes leave the balance as is.
func OBV(closes []float64, volumes []float64) []float64 {
	if len(closes) == 0 {
		return []float64{}
	}

	obv := make([]float64, len(closes))
	for idx := 1; idx < len(closes); idx++ {
		switch {
		case closes[idx] > closes[idx-1]:
			obv[idx] = obv[idx-1] + volumes[idx]
		case closes[idx] < closes[idx-1]:
			obv[idx] = obv[idx-1] - volumes[idx]
		default:
			obv[idx] = obv[idx-1]
		}
	}

	return obv
}

// CVD calculates the cumulative volume delta of the provided candles, signing each
// candle's volume by its close-to-close change. At least two candles are required.
func CVD(candles []shared.Candlestick) (float64, bool) {
	if len(candles) < 2 {
		return null, false
	}

	var cvd float64
	for idx := 1; idx < len(candles); idx++ {
		change := candles[idx].Close - candles[idx-1].Close
		switch {
		case change > 0:
			cvd += candles[idx].Volume
		case change < 0:
			cvd -= candles[idx].Volume
		}
	}

	return Round(cvd, 2), true
}

// typicalPriceVWAP calculates the volume weighted typical price of the provided window.
func typicalPriceVWAP(window []shared.Candlestick) (float64, bool) {
	var tpv, volume float64
	for idx := range window {
		typicalPrice := (window[idx].High + window[idx].Low + window[idx].Close) / 3
		tpv += typicalPrice * window[idx].Volume
		volume += window[idx].Volume
	}
	if volume <= 0 {
		return null, false
	}

	return tpv / volume, true
}

// VWAP calculates a rolling volume weighted average price over the provided period.
// Windows without volume are undefined.
func VWAP(candles []shared.Candlestick, period int) []float64 {
	vwap := nulls(len(candles))
	if period <= 0 {
		return vwap
	}

	for idx := period - 1; idx < len(candles); idx++ {
		if v, ok := typicalPriceVWAP(candles[idx-period+1 : idx+1]); ok {
			vwap[idx] = v
		}
	}

	return vwap
}

// VWAPDeviationRatio calculates the percentage deviation of each close from its
// rolling VWAP.
func VWAPDeviationRatio(candles []shared.Candlestick, period int) []float64 {
	vdr := nulls(len(candles))
	if period <= 0 {
		return vdr
	}

	for idx := period - 1; idx < len(candles); idx++ {
		v, ok := typicalPriceVWAP(candles[idx-period+1 : idx+1])
		if !ok || v <= 0 {
			continue
		}
		vdr[idx] = (candles[idx].Close/v - 1) * 100
	}

	return vdr
}
