package market

import (
	"math"
	"strings"

	"github.com/dnldd/chimera/indicator"
)

// BaseRegime represents the coarse market regime selecting the score weighting.
type BaseRegime string

const (
	Trending      BaseRegime = "Trending"
	Ranging       BaseRegime = "Ranging"
	WeakTrendChop BaseRegime = "Weak Trend / Chop"
)

// scoreWeights represents the weighting of each normalized structural signal.
type scoreWeights struct {
	emaTrend      float64
	ichimokuTrend float64
	profilePos    float64
	rsi           float64
	vdr           float64
	relativePerf  float64
}

// weightingMatrix is the adaptive weighting applied per base regime.
var weightingMatrix = map[BaseRegime]scoreWeights{
	Trending: {
		emaTrend: 0.25, ichimokuTrend: 0.25, profilePos: 0.20,
		rsi: 0.15, vdr: 0.10, relativePerf: 0.05,
	},
	Ranging: {
		emaTrend: 0.05, ichimokuTrend: 0.05, profilePos: 0.15,
		rsi: 0.40, vdr: 0.30, relativePerf: 0.05,
	},
	WeakTrendChop: {
		emaTrend: 0.15, ichimokuTrend: 0.15, profilePos: 0.20,
		rsi: 0.25, vdr: 0.20, relativePerf: 0.05,
	},
}

// BaseRegimeOf maps the provided regime label to its base regime.
func BaseRegimeOf(regime indicator.Regime) BaseRegime {
	label := string(regime)
	switch {
	case strings.Contains(label, "Squeeze"), strings.Contains(label, "Range"):
		return Ranging
	case strings.Contains(label, "Trend"):
		return Trending
	default:
		return WeakTrendChop
	}
}

// ScoreInputs represents the structural readings feeding the quantitative score.
type ScoreInputs struct {
	// Bullish reports whether the EMA50 is above the EMA200.
	Bullish bool
	// IchimokuTrend is 1 above the cloud, -1 below it and 0 when undefined.
	IchimokuTrend float64
	// ProfilePosition is the volume profile price position label.
	ProfilePosition string
	RSI             float64
	VDR             float64
	// RelativePerformance is the reference asset relative performance label.
	RelativePerformance string
}

// QuantitativeScore weighs the normalized structural readings by the regime's
// weighting, clamped to [-1, 1] and rounded to three places.
func QuantitativeScore(in ScoreInputs, regime indicator.Regime) float64 {
	weights := weightingMatrix[BaseRegimeOf(regime)]

	emaTrend := -1.0
	if in.Bullish {
		emaTrend = 1
	}

	var profilePos float64
	switch {
	case strings.Contains(in.ProfilePosition, "Above"):
		profilePos = 1
	case strings.Contains(in.ProfilePosition, "Below"):
		profilePos = -1
	}

	var rsi float64
	if !indicator.IsNull(in.RSI) {
		rsi = (in.RSI - 50) / 50
	}

	var vdr float64
	if !indicator.IsNull(in.VDR) {
		vdr = math.Max(-1, math.Min(1, in.VDR/2.5))
	}

	var relativePerf float64
	switch {
	case strings.Contains(in.RelativePerformance, "Outperforming"):
		relativePerf = 0.5
	case strings.Contains(in.RelativePerformance, "Underperforming"):
		relativePerf = -0.5
	}

	score := emaTrend*weights.emaTrend +
		in.IchimokuTrend*weights.ichimokuTrend +
		profilePos*weights.profilePos +
		rsi*weights.rsi +
		vdr*weights.vdr +
		relativePerf*weights.relativePerf

	return indicator.Round(math.Max(-1, math.Min(1, score)), 3)
}

// ScoreInterpretation describes the provided quantitative score.
func ScoreInterpretation(score float64) string {
	switch {
	case indicator.IsNull(score):
		return indicator.NotApplicable
	case score > 0.5:
		return "Strong Bullish"
	case score > 0.1:
		return "Bullish"
	case score < -0.5:
		return "Strong Bearish"
	case score < -0.1:
		return "Bearish"
	default:
		return "Neutral"
	}
}
