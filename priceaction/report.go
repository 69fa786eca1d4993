package priceaction

import (
	"fmt"
	"math"
	"time"

	"github.com/dnldd/chimera/indicator"
	"github.com/dnldd/chimera/shared"
)

const (
	// MinReportCandles is the minimum history required to rebuild a key-level report,
	// set by the ichimoku senkou span b period.
	MinReportCandles = 52
	// swingPeriod is the lookback of the price action swing levels.
	swingPeriod = 20
	// projectionPeriod is the period of the vwap anchor and atr used for projections.
	projectionPeriod = 20
	// bandPeriod is the bollinger band period.
	bandPeriod = 20
	// bandMultiplier is the bollinger band standard deviation multiplier.
	bandMultiplier = 2
	// tenkanPeriod is the ichimoku conversion line period.
	tenkanPeriod = 9
	// kijunPeriod is the ichimoku base line period.
	kijunPeriod = 26
	// senkouBPeriod is the ichimoku leading span b period.
	senkouBPeriod = 52
)

// DayOHLC represents a completed daily session used to derive pivots.
type DayOHLC struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
	Date  time.Time
}

// PriceActionLevels represents the swing extremes of the recent window.
type PriceActionLevels struct {
	Support    float64
	Resistance float64
}

// VolumeLevels represents the volume profile levels.
type VolumeLevels struct {
	POC float64
	VAH float64
	VAL float64
}

// PivotLevels represents fibonacci pivots of the previous daily session.
type PivotLevels struct {
	indicator.Pivots
	// Valid reports whether a previous session was available.
	Valid bool
}

// ProjectionLevels represents vwap anchored atr projections.
type ProjectionLevels struct {
	VWAP float64
	R1   float64
	R2   float64
	R3   float64
	S1   float64
	S2   float64
	S3   float64
}

// TrendLevels represents the trend following moving averages and bands.
type TrendLevels struct {
	EMA50   float64
	EMA200  float64
	BBUpper float64
	BBLower float64
}

// IchimokuLevels represents the ichimoku lines at the report's last candle.
type IchimokuLevels struct {
	Tenkan  float64
	Kijun   float64
	SenkouA float64
	SenkouB float64
}

// KeyLevels represents the price levels of a key-level report. Undefined levels
// are NaN.
type KeyLevels struct {
	PriceAction   PriceActionLevels
	VolumeProfile VolumeLevels
	Pivots        PivotLevels
	Projection    ProjectionLevels
	Trend         TrendLevels
}

// Report represents the key-level report of a single timeframe.
type Report struct {
	Timeframe shared.Timeframe
	Candles   []shared.Candlestick
	Levels    KeyLevels
	Ichimoku  IchimokuLevels
}

// LastClose returns the close of the report's final candle.
func (r *Report) LastClose() float64 {
	if len(r.Candles) == 0 {
		return math.NaN()
	}

	return r.Candles[len(r.Candles)-1].Close
}

// NewPivotLevels derives pivot levels from the provided session.
func NewPivotLevels(day *DayOHLC) PivotLevels {
	if day == nil {
		return PivotLevels{Pivots: indicator.Pivots{
			PP: math.NaN(), R1: math.NaN(), R2: math.NaN(), R3: math.NaN(),
			S1: math.NaN(), S2: math.NaN(), S3: math.NaN(),
		}}
	}

	return PivotLevels{
		Pivots: indicator.FibonacciPivots(day.High, day.Low, day.Close),
		Valid:  true,
	}
}

// NewReport builds the key-level report of the provided timeframe from its full
// candle series. The previous day's session, when provided, supplies the pivots.
func NewReport(timeframe shared.Timeframe, candles []shared.Candlestick, prevDay *DayOHLC) (*Report, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("no candles provided for %s report", timeframe.String())
	}
	err := shared.ValidateSeries(candles)
	if err != nil {
		return nil, fmt.Errorf("validating %s candles: %w", timeframe.String(), err)
	}

	levels, cloud := buildLevels(candles)
	levels.Pivots = NewPivotLevels(prevDay)

	return &Report{
		Timeframe: timeframe,
		Candles:   candles,
		Levels:    levels,
		Ichimoku:  cloud,
	}, nil
}

// ReportAt rebuilds the report as it would have been generated at the provided
// time, using only candles dated at or before it. Reports with fewer than
// MinReportCandles candles available at that time are not rebuilt. Pivots are
// carried over from the base report.
func ReportAt(base *Report, at time.Time) (*Report, bool) {
	return reportThrough(base, shared.IndexAt(base.Candles, at))
}

// CompletedReportAt rebuilds the report using only candles that had closed by the
// provided time.
func CompletedReportAt(base *Report, at time.Time) (*Report, bool) {
	cutoff := at.Add(-base.Timeframe.Duration())
	return reportThrough(base, shared.IndexAt(base.Candles, cutoff))
}

// reportThrough rebuilds the report from the base report's candles up to and
// including the provided index.
func reportThrough(base *Report, idx int) (*Report, bool) {
	if idx+1 < MinReportCandles {
		return nil, false
	}

	candles := base.Candles[: idx+1 : idx+1]
	levels, cloud := buildLevels(candles)
	levels.Pivots = base.Levels.Pivots

	return &Report{
		Timeframe: base.Timeframe,
		Candles:   candles,
		Levels:    levels,
		Ichimoku:  cloud,
	}, true
}

// buildLevels computes every non-pivot level from the provided candles.
func buildLevels(candles []shared.Candlestick) (KeyLevels, IchimokuLevels) {
	closes := shared.Closes(candles)
	highs := shared.Highs(candles)
	lows := shared.Lows(candles)

	var levels KeyLevels

	swing := candles[max(0, len(candles)-swingPeriod):]
	levels.PriceAction = PriceActionLevels{
		Support:    math.Inf(1),
		Resistance: math.Inf(-1),
	}
	for idx := range swing {
		levels.PriceAction.Support = math.Min(levels.PriceAction.Support, swing[idx].Low)
		levels.PriceAction.Resistance = math.Max(levels.PriceAction.Resistance, swing[idx].High)
	}

	profile := indicator.VolumeProfile(candles, indicator.DefaultProfileBins)
	levels.VolumeProfile = VolumeLevels{POC: profile.POC, VAH: profile.VAH, VAL: profile.VAL}

	vwap := indicator.LastOrNull(indicator.VWAP(candles, projectionPeriod))
	atr := indicator.LastOrNull(indicator.ATR(highs, lows, closes, projectionPeriod))
	levels.Projection = projectLevels(vwap, atr)

	bands := indicator.BollingerBands(closes, bandPeriod, bandMultiplier)
	levels.Trend = TrendLevels{
		EMA50:   indicator.LastOrNull(indicator.EMA(closes, 50)),
		EMA200:  indicator.LastOrNull(indicator.EMA(closes, 200)),
		BBUpper: indicator.LastOrNull(bands.Upper),
		BBLower: indicator.LastOrNull(bands.Lower),
	}

	cloud := indicator.Ichimoku(highs, lows, tenkanPeriod, kijunPeriod, senkouBPeriod)
	ichimoku := IchimokuLevels{
		Tenkan:  indicator.LastOrNull(cloud.Tenkan),
		Kijun:   indicator.LastOrNull(cloud.Kijun),
		SenkouA: indicator.LastOrNull(cloud.SenkouA),
		SenkouB: indicator.LastOrNull(cloud.SenkouB),
	}

	return levels, ichimoku
}

// projectLevels projects resistances and supports at atr multiples from the vwap
// anchor. Supports are floored at zero.
func projectLevels(vwap float64, atr float64) ProjectionLevels {
	projection := ProjectionLevels{
		VWAP: vwap,
		R1:   math.NaN(), R2: math.NaN(), R3: math.NaN(),
		S1: math.NaN(), S2: math.NaN(), S3: math.NaN(),
	}
	if indicator.IsNull(vwap) || indicator.IsNull(atr) {
		return projection
	}

	projection.R1 = vwap + atr
	projection.R2 = vwap + 2*atr
	projection.R3 = vwap + 3*atr
	projection.S1 = math.Max(0, vwap-atr)
	projection.S2 = math.Max(0, vwap-2*atr)
	projection.S3 = math.Max(0, vwap-3*atr)

	return projection
}
