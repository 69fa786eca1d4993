package indicator

// HistoricalVolatilityRank ranks the most recent positive ATR reading against the
// trailing lookback window of positive readings, as the percentage of readings below
// it. Fewer than lookback readings leaves the rank undefined.
func HistoricalVolatilityRank(atr []float64, lookback int) (float64, bool) {
	history := make([]float64, 0, len(atr))
	for _, v := range atr {
		if !IsNull(v) && v > 0 {
			history = append(history, v)
		}
	}
	if lookback <= 0 || len(history) < lookback {
		return null, false
	}

	recent := history[len(history)-lookback:]
	current := recent[len(recent)-1]

	var lower int
	for _, v := range recent {
		if v < current {
			lower++
		}
	}

	rank := (float64(lower) / float64(len(recent))) * 100
	return Round(rank, 0), true
}

// VolatilityRankInterpretation describes the provided volatility rank.
func VolatilityRankInterpretation(rank float64) string {
	switch {
	case IsNull(rank):
		return "Insufficient data"
	case rank > 90:
		return "Extreme Volatility (Exhaustion Risk)"
	case rank > 70:
		return "High Volatility"
	case rank < 10:
		return "Extreme Low Volatility (Squeeze Potential)"
	case rank < 30:
		return "Low Volatility"
	default:
		return "Medium Volatility"
	}
}
