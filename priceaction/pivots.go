package priceaction

import (
	"time"

	"github.com/dnldd/chimera/shared"
)

// PreviousDay returns the last daily session that completed before the UTC day
// containing the provided time.
func PreviousDay(daily []shared.Candlestick, at time.Time) (*DayOHLC, bool) {
	at = at.UTC()
	dayStart := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)

	idx := shared.IndexAt(daily, dayStart.Add(-shared.OneDay.Duration()))
	if idx < 0 {
		return nil, false
	}

	candle := daily[idx]
	return &DayOHLC{
		Open:  candle.Open,
		High:  candle.High,
		Low:   candle.Low,
		Close: candle.Close,
		Date:  candle.Date,
	}, true
}

// RollPivots replaces the report's pivots with those of the session preceding the
// provided time's day. The report is left unchanged when no such session exists.
func RollPivots(report *Report, daily []shared.Candlestick, at time.Time) {
	day, ok := PreviousDay(daily, at)
	if !ok {
		return
	}

	report.Levels.Pivots = NewPivotLevels(day)
}
