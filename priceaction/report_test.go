package priceaction

import (
	"math"
	"testing"
	"time"

	"github.com/dnldd/chimera/shared"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/peterldowns/testy/assert"
)

// generateCandles creates a deterministic oscillating candle series.
func generateCandles(count int, timeframe shared.Timeframe, start time.Time) []shared.Candlestick {
	candles := make([]shared.Candlestick, count)
	prev := 100.0
	for idx := range candles {
		close := 100 + 10*math.Sin(float64(idx)/10) + float64(idx)*0.05
		candles[idx] = shared.Candlestick{
			Open:   prev,
			High:   math.Max(prev, close) + 1 + float64(idx%3)*0.5,
			Low:    math.Min(prev, close) - 1 - float64(idx%2)*0.5,
			Close:  close,
			Volume: 100 + float64((idx*37)%50),
			Date:   start.Add(timeframe.Duration() * time.Duration(idx)),
		}
		prev = close
	}

	return candles
}

func TestNewReport(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Ensure reports cannot be created without candles.
	_, err := NewReport(shared.OneHour, nil, nil)
	assert.Error(t, err)

	// Ensure reports cannot be created from unordered candles.
	candles := generateCandles(60, shared.OneHour, start)
	candles[10], candles[11] = candles[11], candles[10]
	_, err = NewReport(shared.OneHour, candles, nil)
	assert.Error(t, err)

	// Ensure a valid report can be created.
	candles = generateCandles(250, shared.OneHour, start)
	report, err := NewReport(shared.OneHour, candles, &DayOHLC{High: 110, Low: 90, Close: 100})
	assert.NoError(t, err)
	assert.True(t, report.Levels.Pivots.Valid)
	assert.Equal(t, report.Levels.Pivots.PP, float64(100))
	assert.False(t, math.IsNaN(report.Levels.Trend.EMA200))
	assert.False(t, math.IsNaN(report.Levels.VolumeProfile.POC))
	assert.False(t, math.IsNaN(report.Ichimoku.SenkouB))
	assert.True(t, report.Levels.PriceAction.Support < report.Levels.PriceAction.Resistance)
	assert.True(t, report.Levels.Projection.S1 < report.Levels.Projection.VWAP)
	assert.True(t, report.Levels.Projection.R1 > report.Levels.Projection.VWAP)

	// Ensure a report without a previous session has no pivots.
	report, err = NewReport(shared.OneHour, candles, nil)
	assert.NoError(t, err)
	assert.False(t, report.Levels.Pivots.Valid)
	assert.True(t, math.IsNaN(report.Levels.Pivots.PP))
}

func TestReportAt(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := generateCandles(120, shared.OneHour, start)
	base, err := NewReport(shared.OneHour, candles, &DayOHLC{High: 110, Low: 90, Close: 100})
	assert.NoError(t, err)

	tests := []struct {
		name     string
		at       time.Time
		ok       bool
		wantSize int
	}{
		{
			name: "before the series",
			at:   start.Add(-time.Hour),
			ok:   false,
		},
		{
			name: "insufficient history",
			at:   candles[50].Date,
			ok:   false,
		},
		{
			name:     "minimum history",
			at:       candles[51].Date,
			ok:       true,
			wantSize: 52,
		},
		{
			name:     "between candles",
			at:       candles[80].Date.Add(time.Minute * 30),
			ok:       true,
			wantSize: 81,
		},
		{
			name:     "after the series",
			at:       candles[119].Date.Add(time.Hour * 24),
			ok:       true,
			wantSize: 120,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			report, ok := ReportAt(base, test.at)
			assert.Equal(t, ok, test.ok)
			if !test.ok {
				return
			}

			assert.Equal(t, len(report.Candles), test.wantSize)
			if diff := cmp.Diff(base.Levels.Pivots, report.Levels.Pivots, cmpopts.EquateNaNs()); diff != "" {
				t.Errorf("pivots not carried over (-want +got):\n%s", diff)
			}

			// Ensure the rebuilt report matches one built from the truncated series,
			// undefined levels included.
			truncated, err := NewReport(shared.OneHour, candles[:test.wantSize], nil)
			assert.NoError(t, err)
			truncated.Levels.Pivots = base.Levels.Pivots
			if diff := cmp.Diff(truncated.Levels, report.Levels, cmpopts.EquateNaNs()); diff != "" {
				t.Errorf("unexpected levels (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(truncated.Ichimoku, report.Ichimoku, cmpopts.EquateNaNs()); diff != "" {
				t.Errorf("unexpected ichimoku levels (-want +got):\n%s", diff)
			}
		})
	}

	// Ensure only closed candles are used when requested.
	report, ok := CompletedReportAt(base, candles[80].Date.Add(time.Minute*30))
	assert.True(t, ok)
	assert.Equal(t, len(report.Candles), 80)
}

func TestPreviousDay(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	daily := generateCandles(5, shared.OneDay, start)

	// Ensure there is no previous session on the first day.
	_, ok := PreviousDay(daily, start.Add(time.Hour*5))
	assert.False(t, ok)

	// Ensure the previous completed session is selected.
	day, ok := PreviousDay(daily, start.Add(time.Hour*24*2+time.Hour*3))
	assert.True(t, ok)
	assert.Equal(t, day.Date, daily[1].Date)
	assert.Equal(t, day.Close, daily[1].Close)

	// Ensure pivots roll with the session.
	base, err := NewReport(shared.OneDay, daily, nil)
	assert.NoError(t, err)
	RollPivots(base, daily, start.Add(time.Hour*24*3))
	assert.True(t, base.Levels.Pivots.Valid)
	want := NewPivotLevels(&DayOHLC{High: daily[2].High, Low: daily[2].Low, Close: daily[2].Close})
	assert.Equal(t, base.Levels.Pivots, want)
}
