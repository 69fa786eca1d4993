package indicator

import (
	"math"
	"slices"

	"github.com/dnldd/chimera/shared"
)

const (
	// regimeHistoryLength is the number of recent bandwidth readings ranked by the
	// regime filter.
	regimeHistoryLength = 50
	// regimeMinHistory is the bandwidth history size required to rank a squeeze.
	regimeMinHistory = 10
	// regimeSqueezeQuantile is the bandwidth percentile at or below which bands are
	// considered squeezed.
	regimeSqueezeQuantile = 0.2
)

// Regime represents the categorical market regime assigned by the regime filter.
type Regime string

const (
	VolatilitySqueeze      Regime = "Volatility Squeeze"
	StrongBullishTrend     Regime = "Strong Bullish Trend"
	StrongBearishTrend     Regime = "Strong Bearish Trend"
	DevelopingBullishTrend Regime = "Developing Bullish Trend"
	DevelopingBearishTrend Regime = "Developing Bearish Trend"
	StableRange            Regime = "Stable Range"
	ChoppyRange            Regime = "Choppy Range"
	IndeterminateRegime    Regime = "Indeterminate"
)

// FractalEfficiencyRatio calculates the net close displacement over the close path
// length of each window. Flat windows are undefined.
func FractalEfficiencyRatio(candles []shared.Candlestick, period int) []float64 {
	fer := nulls(len(candles))
	if period <= 0 {
		return fer
	}

	for idx := period; idx < len(candles); idx++ {
		displacement := math.Abs(candles[idx].Close - candles[idx-period].Close)
		var path float64
		for j := idx - period + 1; j <= idx; j++ {
			path += math.Abs(candles[j].Close - candles[j-1].Close)
		}
		if path > 0 {
			fer[idx] = displacement / path
		}
	}

	return fer
}

// MomentumFlowIndex scales the RSI's distance from its midline by trend strength.
func MomentumFlowIndex(rsi []float64, adx []float64) []float64 {
	mfi := nulls(len(rsi))
	for idx := range rsi {
		if idx >= len(adx) || IsNull(rsi[idx]) || IsNull(adx[idx]) {
			continue
		}
		mfi[idx] = (rsi[idx] - 50) * (adx[idx] / 50)
	}

	return mfi
}

// VolatilityPotentialEnergy combines inverse-normalized bandwidth with
// inverse-normalized trend strength. Narrow bands in a trendless market read high.
// Bandwidth is normalized against the extremes of the provided history.
func VolatilityPotentialEnergy(bbw []float64, adx []float64) []float64 {
	vpe := nulls(len(bbw))

	minBBW, maxBBW := math.Inf(1), math.Inf(-1)
	var valid int
	for _, v := range bbw {
		if IsNull(v) {
			continue
		}
		valid++
		minBBW = math.Min(minBBW, v)
		maxBBW = math.Max(maxBBW, v)
	}
	if valid == 0 {
		return vpe
	}

	for idx := range bbw {
		if idx >= len(adx) || IsNull(bbw[idx]) || IsNull(adx[idx]) {
			continue
		}

		var normBBW float64
		if maxBBW > minBBW {
			normBBW = 1 - ((bbw[idx] - minBBW) / (maxBBW - minBBW))
		}

		var normADX float64
		if adx[idx] < 25 {
			normADX = (25 - adx[idx]) / 25
		}

		vpe[idx] = normBBW * normADX * 100
	}

	return vpe
}

// RegimeFilter classifies the market regime by scoring trend, range, squeeze and
// chop evidence from ADX, the bandwidth percentile and the fractal efficiency ratio.
// Any undefined input yields an indeterminate regime.
func RegimeFilter(adx float64, bbw float64, fer float64, ema50 float64, ema200 float64, bbwHistory []float64) Regime {
	if IsNull(adx) || IsNull(bbw) || IsNull(fer) || IsNull(ema50) || IsNull(ema200) {
		return IndeterminateRegime
	}

	var trend, rng, squeeze, chop float64

	switch {
	case adx > 25:
		trend += 2
	case adx < 20:
		rng += 2
	default:
		chop += 1
	}

	history := make([]float64, 0, len(bbwHistory))
	for _, v := range bbwHistory {
		if !IsNull(v) {
			history = append(history, v)
		}
	}
	if len(history) > regimeHistoryLength {
		history = history[len(history)-regimeHistoryLength:]
	}
	if len(history) > regimeMinHistory {
		sorted := slices.Clone(history)
		slices.Sort(sorted)
		quintile := sorted[int(math.Floor(float64(len(sorted))*regimeSqueezeQuantile))]
		if bbw <= quintile {
			squeeze += 3
			rng += 1
		}
	}

	switch {
	case fer > 0.6:
		trend += 2
	case fer < 0.4:
		chop += 2
	default:
		rng += 1
		chop += 0.5
	}

	if squeeze >= 3 {
		return VolatilitySqueeze
	}

	dominant := math.Max(trend, math.Max(rng, chop))
	bullish := ema50 > ema200

	switch {
	case dominant == trend && dominant > 1:
		strong := adx > 35 && fer > 0.5
		switch {
		case strong && bullish:
			return StrongBullishTrend
		case strong:
			return StrongBearishTrend
		case bullish:
			return DevelopingBullishTrend
		default:
			return DevelopingBearishTrend
		}
	case dominant == rng && dominant > 1:
		return StableRange
	case dominant == chop && dominant > 1:
		return ChoppyRange
	default:
		return IndeterminateRegime
	}
}
