package market

import (
	"encoding/json"

	"github.com/dnldd/chimera/indicator"
	"github.com/dnldd/chimera/shared"
)

// Snapshot represents the indicator readings of a candle, derived only from the
// candle and those preceding it. Undefined numeric readings are NaN.
type Snapshot struct {
	EMA50   float64
	EMA200  float64
	RSI14   float64
	ADX14   float64
	BBWidth float64
	VPE     float64
	ATR20   float64
	FER     float64
	VDR     float64
	MFIV    float64
	HVRank  float64
	OBV     float64
	CVD     float64

	// Correlation is the returns correlation against the reference asset.
	Correlation     float64
	StructuralScore float64
	CompositeScore  float64

	Regime              indicator.Regime
	HVNStatus           string
	RelativePerformance string
	SqueezeStatus       string
	CorrelationLabel    string
	Divergence          string
}

// MarshalJSON encodes the snapshot, writing undefined readings as null.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	nullable := shared.Nullable

	return json.Marshal(map[string]any{
		"ema50":                     nullable(s.EMA50),
		"ema200":                    nullable(s.EMA200),
		"rsi14":                     nullable(s.RSI14),
		"adx14":                     nullable(s.ADX14),
		"bbwPct":                    nullable(s.BBWidth),
		"vpe":                       nullable(s.VPE),
		"atr20":                     nullable(s.ATR20),
		"fer":                       nullable(s.FER),
		"vdr":                       nullable(s.VDR),
		"mfiV":                      nullable(s.MFIV),
		"hvRank":                    nullable(s.HVRank),
		"obv":                       nullable(s.OBV),
		"cvd":                       nullable(s.CVD),
		"correlation":               nullable(s.Correlation),
		"structuralScore":           nullable(s.StructuralScore),
		"compositeScore":            nullable(s.CompositeScore),
		"crfRegime":                 s.Regime,
		"hvnMigrationStatus":        s.HVNStatus,
		"relativePerformance":       s.RelativePerformance,
		"squeezeStatus":             s.SqueezeStatus,
		"correlationInterpretation": s.CorrelationLabel,
		"rsiDivergence":             s.Divergence,
	})
}

// EnrichedCandle represents a candlestick with its point-in-time indicator
// snapshot. Candles within the warm-up period have no snapshot.
type EnrichedCandle struct {
	shared.Candlestick
	Indicators *Snapshot `json:"indicators"`
}

// number wraps a numeric reading, reporting undefined readings as absent.
func number(v float64) (shared.Value, bool) {
	if indicator.IsNull(v) {
		return shared.Value{}, false
	}

	return shared.NumberValue(v), true
}

// text wraps a categorical reading.
func text(s string) (shared.Value, bool) {
	return shared.TextValue(s), true
}

// Value returns the reading addressed by the provided indicator kind and parameter.
// Unknown parameters and undefined readings report false.
func (s *Snapshot) Value(kind shared.IndicatorKind, parameter string) (shared.Value, bool) {
	if s == nil {
		return shared.Value{}, false
	}

	switch kind {
	case shared.QuantitativeScore:
		switch parameter {
		case "composite_score":
			return number(s.CompositeScore)
		case "structural_score":
			return number(s.StructuralScore)
		}

	case shared.CRF:
		return text(string(s.Regime))

	case shared.VPE:
		return number(s.VPE)

	case shared.Volatility:
		switch parameter {
		case "bollinger_band_width_pct":
			return number(s.BBWidth)
		case "historical_volatility_rank":
			return number(s.HVRank)
		case "keltner_channels_squeeze":
			return text(s.SqueezeStatus)
		}

	case shared.ReferenceCorrelation:
		switch parameter {
		case "coefficient":
			return number(s.Correlation)
		case "interpretation":
			return text(s.CorrelationLabel)
		default:
			return text(s.RelativePerformance)
		}

	case shared.HVNMigration:
		if parameter == "status" {
			return text(s.HVNStatus)
		}

	case shared.Chimera:
		switch parameter {
		case "fer":
			return number(s.FER)
		case "vdr":
			return number(s.VDR)
		case "mfi_v":
			return number(s.MFIV)
		}

	case shared.Momentum:
		switch parameter {
		case "rsi":
			return number(s.RSI14)
		case "adx":
			return number(s.ADX14)
		case "ema50":
			return number(s.EMA50)
		case "ema200":
			return number(s.EMA200)
		case "rsi_divergence":
			return text(s.Divergence)
		}

	case shared.VolumeFlow:
		switch parameter {
		case "obv":
			return number(s.OBV)
		case "cvd":
			return number(s.CVD)
		}
	}

	return shared.Value{}, false
}
