package indicator

import "fmt"

// NoDivergence labels windows without a qualifying divergence.
const NoDivergence = "No significant divergence detected"

// pivot represents a local extreme within a window.
type pivot struct {
	index int
	value float64
}

// findPivots locates strict local highs or lows in the provided data.
func findPivots(data []float64, highs bool) []pivot {
	var pivots []pivot
	for idx := 1; idx < len(data)-1; idx++ {
		v, prev, next := data[idx], data[idx-1], data[idx+1]
		if IsNull(v) || IsNull(prev) || IsNull(next) {
			continue
		}
		if highs && v > prev && v > next {
			pivots = append(pivots, pivot{index: idx, value: v})
		}
		if !highs && v < prev && v < next {
			pivots = append(pivots, pivot{index: idx, value: v})
		}
	}

	return pivots
}

// Divergence compares the last two price pivots against the last two indicator
// pivots within the lookback window, reporting regular or hidden divergence.
func Divergence(closes []float64, series []float64, name string, lookback int) string {
	if lookback <= 0 || len(closes) < lookback || len(series) < lookback {
		return NotApplicable
	}

	prices := closes[len(closes)-lookback:]
	values := series[len(series)-lookback:]

	priceHighs := findPivots(prices, true)
	valueHighs := findPivots(values, true)
	if len(priceHighs) >= 2 && len(valueHighs) >= 2 {
		lastPrice, prevPrice := priceHighs[len(priceHighs)-1], priceHighs[len(priceHighs)-2]
		lastValue, prevValue := valueHighs[len(valueHighs)-1], valueHighs[len(valueHighs)-2]

		switch {
		case lastPrice.value > prevPrice.value && lastValue.value < prevValue.value:
			return fmt.Sprintf("Regular Bearish Divergence on %s", name)
		case lastPrice.value < prevPrice.value && lastValue.value > prevValue.value:
			return fmt.Sprintf("Hidden Bearish Divergence on %s", name)
		}
	}

	priceLows := findPivots(prices, false)
	valueLows := findPivots(values, false)
	if len(priceLows) >= 2 && len(valueLows) >= 2 {
		lastPrice, prevPrice := priceLows[len(priceLows)-1], priceLows[len(priceLows)-2]
		lastValue, prevValue := valueLows[len(valueLows)-1], valueLows[len(valueLows)-2]

		switch {
		case lastPrice.value < prevPrice.value && lastValue.value > prevValue.value:
			return fmt.Sprintf("Regular Bullish Divergence on %s", name)
		case lastPrice.value > prevPrice.value && lastValue.value < prevValue.value:
			return fmt.Sprintf("Hidden Bullish Divergence on %s", name)
		}
	}

	return NoDivergence
}
