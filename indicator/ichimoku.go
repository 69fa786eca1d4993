package indicator

// Cloud represents the ichimoku kinko hyo lines.
type Cloud struct {
	Tenkan  []float64
	Kijun   []float64
	SenkouA []float64
	SenkouB []float64
}

// midpoint returns the mid price of the window ending at idx, or NaN when the window
// is not yet full.
func midpoint(highs []float64, lows []float64, idx int, period int) float64 {
	if idx < period-1 {
		return null
	}

	return (highest(highs[idx-period+1:idx+1]) + lowest(lows[idx-period+1:idx+1])) / 2
}

// Ichimoku calculates the ichimoku cloud. The senkou lines are projected forward by
// the kijun period and truncated to the input length, so the value at each index is
// the cloud projected from kijun candles earlier.
func Ichimoku(highs []float64, lows []float64, tenkanPeriod int, kijunPeriod int, senkouBPeriod int) Cloud {
	n := len(highs)
	cloud := Cloud{
		Tenkan:  nulls(n),
		Kijun:   nulls(n),
		SenkouA: nulls(n),
		SenkouB: nulls(n),
	}

	senkouA := nulls(n)
	senkouB := nulls(n)
	for idx := 0; idx < n; idx++ {
		cloud.Tenkan[idx] = midpoint(highs, lows, idx, tenkanPeriod)
		cloud.Kijun[idx] = midpoint(highs, lows, idx, kijunPeriod)
		if !IsNull(cloud.Tenkan[idx]) && !IsNull(cloud.Kijun[idx]) {
			senkouA[idx] = (cloud.Tenkan[idx] + cloud.Kijun[idx]) / 2
		}
		senkouB[idx] = midpoint(highs, lows, idx, senkouBPeriod)
	}

	for idx := kijunPeriod; idx < n; idx++ {
		cloud.SenkouA[idx] = senkouA[idx-kijunPeriod]
		cloud.SenkouB[idx] = senkouB[idx-kijunPeriod]
	}

	return cloud
}

// CloudTrend returns 1 when the close is above the cloud, -1 when it is not, and 0
// when any ichimoku line is undefined at the last index.
func CloudTrend(cloud Cloud, close float64) float64 {
	for _, line := range [][]float64{cloud.Tenkan, cloud.Kijun, cloud.SenkouA, cloud.SenkouB} {
		if _, ok := Last(line); !ok {
			return 0
		}
	}

	if close > max(LastOrNull(cloud.SenkouA), LastOrNull(cloud.SenkouB)) {
		return 1
	}

	return -1
}
