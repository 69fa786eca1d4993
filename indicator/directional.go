package indicator

import "math"

// TrueRange calculates the true range of each candle. The first candle has no prior
// close and uses its high-low range.
func TrueRange(highs []float64, lows []float64, closes []float64) []float64 {
	if len(highs) == 0 {
		return []float64{}
	}

	tr := make([]float64, len(highs))
	tr[0] = highs[0] - lows[0]
	for idx := 1; idx < len(highs); idx++ {
		tr[idx] = math.Max(highs[idx]-lows[idx],
			math.Max(math.Abs(highs[idx]-closes[idx-1]), math.Abs(lows[idx]-closes[idx-1])))
	}

	return tr
}

// ATR calculates the average true range as an exponential average of true range.
func ATR(highs []float64, lows []float64, closes []float64, period int) []float64 {
	return EMA(TrueRange(highs, lows, closes), period)
}

// directionalMovement calculates the positive and negative directional movement.
func directionalMovement(highs []float64, lows []float64) ([]float64, []float64) {
	plus := make([]float64, len(highs))
	minus := make([]float64, len(highs))
	for idx := 1; idx < len(highs); idx++ {
		up := highs[idx] - highs[idx-1]
		down := lows[idx-1] - lows[idx]
		if up > down && up > 0 {
			plus[idx] = up
		}
		if down > up && down > 0 {
			minus[idx] = down
		}
	}

	return plus, minus
}

// wilderSmoothing applies Wilder's running sum smoothing. The seed at period-1 is the
// window average; subsequent values follow s = s - s/period + x.
func wilderSmoothing(data []float64, period int) []float64 {
	smoothed := make([]float64, len(data))
	if len(data) < period {
		return smoothed
	}

	var sum float64
	for idx := 0; idx < period; idx++ {
		sum += data[idx]
	}
	smoothed[period-1] = sum / float64(period)

	for idx := period; idx < len(data); idx++ {
		smoothed[idx] = smoothed[idx-1] - (smoothed[idx-1] / float64(period)) + data[idx]
	}

	return smoothed
}

// DirectionalIndex represents the average directional index with its directional
// indicators.
type DirectionalIndex struct {
	ADX     []float64
	PlusDI  []float64
	MinusDI []float64
}

// ADX calculates the average directional index. Series no longer than twice the
// period are entirely undefined.
func ADX(highs []float64, lows []float64, closes []float64, period int) DirectionalIndex {
	n := len(highs)
	di := DirectionalIndex{
		ADX:     nulls(n),
		PlusDI:  nulls(n),
		MinusDI: nulls(n),
	}
	if period <= 0 || n <= period*2 {
		return di
	}

	dmPlus, dmMinus := directionalMovement(highs, lows)
	tr := TrueRange(highs, lows, closes)

	smoothedPlus := wilderSmoothing(dmPlus, period)
	smoothedMinus := wilderSmoothing(dmMinus, period)
	smoothedTR := wilderSmoothing(tr, period)

	dx := nulls(n)
	for idx := period - 1; idx < n; idx++ {
		var pdi, mdi float64
		if smoothedTR[idx] != 0 {
			pdi = (smoothedPlus[idx] / smoothedTR[idx]) * 100
			mdi = (smoothedMinus[idx] / smoothedTR[idx]) * 100
		}
		di.PlusDI[idx] = pdi
		di.MinusDI[idx] = mdi

		dx[idx] = 0
		if pdi+mdi != 0 {
			dx[idx] = (math.Abs(pdi-mdi) / (pdi + mdi)) * 100
		}
	}

	// The first average spans dx[period-1 .. 2*period-3] and is placed at 2*period-2.
	var sum float64
	for idx := period - 1; idx < period*2-2; idx++ {
		sum += dx[idx]
	}
	di.ADX[period*2-2] = sum / float64(period)

	for idx := period*2 - 1; idx < n; idx++ {
		di.ADX[idx] = (di.ADX[idx-1]*float64(period-1) + dx[idx]) / float64(period)
	}

	return di
}
