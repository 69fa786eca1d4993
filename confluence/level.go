package confluence

import (
	"fmt"

	"github.com/dnldd/chimera/indicator"
	"github.com/dnldd/chimera/priceaction"
	"github.com/dnldd/chimera/shared"
)

// LevelType represents the origin of a price level.
type LevelType string

const (
	SwingLow  LevelType = "swing_low"
	SwingHigh LevelType = "swing_high"
	POC       LevelType = "poc"
	VAH       LevelType = "vah"
	VAL       LevelType = "val"
	PP        LevelType = "pp"
	R1        LevelType = "r1"
	R2        LevelType = "r2"
	R3        LevelType = "r3"
	S1        LevelType = "s1"
	S2        LevelType = "s2"
	S3        LevelType = "s3"
	VWAP      LevelType = "vwap"
	ATR1      LevelType = "atr1"
	ATR2      LevelType = "atr2"
	ATR3      LevelType = "atr3"
	EMA50     LevelType = "ema50"
	EMA200    LevelType = "ema200"
	BBUpper   LevelType = "bb_upper"
	BBLower   LevelType = "bb_lower"
	Tenkan    LevelType = "tenkan"
	Kijun     LevelType = "kijun"
	SenkouA   LevelType = "senkou_a"
	SenkouB   LevelType = "senkou_b"
)

// Weight returns the significance weighting of the level type.
func (t LevelType) Weight() float64 {
	switch t {
	case POC:
		return 1.0
	case PP, SwingLow, SwingHigh:
		return 0.9
	case EMA200:
		return 0.8
	case VAH, VAL, R3, S3, ATR3:
		return 0.7
	case Kijun, SenkouB:
		return 0.6
	case R2, S2, ATR2, EMA50, VWAP:
		return 0.5
	case BBUpper, BBLower, R1, S1, ATR1:
		return 0.4
	case Tenkan, SenkouA:
		return 0.3
	default:
		return 0.1
	}
}

// Level represents a scored price level extracted from a key-level report.
type Level struct {
	Price       float64
	Kind        LevelType
	Timeframe   shared.Timeframe
	Score       float64
	Description string
}

// levelExtractor accumulates defined levels of a single report.
type levelExtractor struct {
	timeframe shared.Timeframe
	levels    []Level
}

// add records the level if its price is defined.
func (e *levelExtractor) add(price float64, kind LevelType, description string) {
	if indicator.IsNull(price) {
		return
	}

	e.levels = append(e.levels, Level{
		Price:       price,
		Kind:        kind,
		Timeframe:   e.timeframe,
		Score:       e.timeframe.Weight() * kind.Weight(),
		Description: description,
	})
}

// ExtractLevels lists the defined levels of the provided report with their scores.
// Pivots are only taken from the daily timeframe.
func ExtractLevels(report *priceaction.Report) []Level {
	tf := report.Timeframe
	label := tf.String()
	levels := report.Levels
	e := &levelExtractor{timeframe: tf}

	e.add(levels.PriceAction.Support, SwingLow, fmt.Sprintf("Swing Low (%s)", label))
	e.add(levels.PriceAction.Resistance, SwingHigh, fmt.Sprintf("Swing High (%s)", label))

	e.add(levels.VolumeProfile.POC, POC, fmt.Sprintf("POC (%s)", label))
	e.add(levels.VolumeProfile.VAH, VAH, fmt.Sprintf("VAH (%s)", label))
	e.add(levels.VolumeProfile.VAL, VAL, fmt.Sprintf("VAL (%s)", label))

	if tf == shared.OneDay && levels.Pivots.Valid {
		pivots := levels.Pivots
		e.add(pivots.PP, PP, "Pivot Point (Daily)")
		e.add(pivots.R1, R1, "Pivot R1 (Daily)")
		e.add(pivots.R2, R2, "Pivot R2 (Daily)")
		e.add(pivots.R3, R3, "Pivot R3 (Daily)")
		e.add(pivots.S1, S1, "Pivot S1 (Daily)")
		e.add(pivots.S2, S2, "Pivot S2 (Daily)")
		e.add(pivots.S3, S3, "Pivot S3 (Daily)")
	}

	proj := levels.Projection
	e.add(proj.VWAP, VWAP, fmt.Sprintf("VWAP (%s)", label))
	e.add(proj.R1, ATR1, fmt.Sprintf("VWAP+ATR R1 (%s)", label))
	e.add(proj.R2, ATR2, fmt.Sprintf("VWAP+ATR R2 (%s)", label))
	e.add(proj.R3, ATR3, fmt.Sprintf("VWAP+ATR R3 (%s)", label))
	e.add(proj.S1, ATR1, fmt.Sprintf("VWAP-ATR S1 (%s)", label))
	e.add(proj.S2, ATR2, fmt.Sprintf("VWAP-ATR S2 (%s)", label))
	e.add(proj.S3, ATR3, fmt.Sprintf("VWAP-ATR S3 (%s)", label))

	e.add(levels.Trend.EMA50, EMA50, fmt.Sprintf("EMA 50 (%s)", label))
	e.add(levels.Trend.EMA200, EMA200, fmt.Sprintf("EMA 200 (%s)", label))
	e.add(levels.Trend.BBUpper, BBUpper, fmt.Sprintf("BB Upper (%s)", label))
	e.add(levels.Trend.BBLower, BBLower, fmt.Sprintf("BB Lower (%s)", label))

	cloud := report.Ichimoku
	e.add(cloud.Tenkan, Tenkan, fmt.Sprintf("Tenkan Sen (%s)", label))
	e.add(cloud.Kijun, Kijun, fmt.Sprintf("Kijun Sen (%s)", label))
	e.add(cloud.SenkouA, SenkouA, fmt.Sprintf("Senkou A (%s)", label))
	e.add(cloud.SenkouB, SenkouB, fmt.Sprintf("Senkou B (%s)", label))

	return e.levels
}
