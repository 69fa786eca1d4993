package confluence

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/dnldd/chimera/priceaction"
	"github.com/dnldd/chimera/shared"
	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
)

// generateCandles creates a deterministic oscillating candle series.
func generateCandles(count int, timeframe shared.Timeframe) []shared.Candlestick {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]shared.Candlestick, count)
	prev := 100.0
	for idx := range candles {
		close := 100 + 10*math.Sin(float64(idx)/10)
		candles[idx] = shared.Candlestick{
			Open:   prev,
			High:   math.Max(prev, close) + 1,
			Low:    math.Min(prev, close) - 1,
			Close:  close,
			Volume: 100 + float64((idx*37)%50),
			Date:   start.Add(timeframe.Duration() * time.Duration(idx)),
		}
		prev = close
	}

	return candles
}

func TestLevelWeights(t *testing.T) {
	tests := []struct {
		kind LevelType
		want float64
	}{
		{POC, 1.0},
		{PP, 0.9},
		{SwingHigh, 0.9},
		{EMA200, 0.8},
		{ATR3, 0.7},
		{SenkouB, 0.6},
		{VWAP, 0.5},
		{BBLower, 0.4},
		{Tenkan, 0.3},
		{LevelType("unknown"), 0.1},
	}

	for _, test := range tests {
		t.Run(string(test.kind), func(t *testing.T) {
			assert.Equal(t, test.kind.Weight(), test.want)
		})
	}
}

func TestExtractLevels(t *testing.T) {
	prevDay := &priceaction.DayOHLC{High: 110, Low: 90, Close: 100}

	// Ensure pivots are extracted from the daily timeframe.
	daily, err := priceaction.NewReport(shared.OneDay, generateCandles(60, shared.OneDay), prevDay)
	assert.NoError(t, err)
	levels := ExtractLevels(daily)
	var pivot *Level
	for idx := range levels {
		if levels[idx].Kind == PP {
			pivot = &levels[idx]
		}
		assert.False(t, math.IsNaN(levels[idx].Price))
	}
	assert.NotNil(t, pivot)
	assert.Equal(t, pivot.Description, "Pivot Point (Daily)")
	assert.Equal(t, pivot.Price, float64(100))
	assert.Equal(t, pivot.Score, shared.OneDay.Weight()*PP.Weight())

	// Ensure pivots are not extracted from intraday timeframes and undefined levels
	// are skipped.
	hourly, err := priceaction.NewReport(shared.OneHour, generateCandles(60, shared.OneHour), prevDay)
	assert.NoError(t, err)
	levels = ExtractLevels(hourly)
	for idx := range levels {
		assert.False(t, strings.HasPrefix(levels[idx].Description, "Pivot"))
		assert.True(t, levels[idx].Kind != EMA200)
	}
	assert.True(t, len(levels) > 0)
	assert.Equal(t, levels[0].Description, "Swing Low (60)")
}

func TestClusterLevels(t *testing.T) {
	level := func(price float64, kind LevelType, description string) Level {
		return Level{
			Price:       price,
			Kind:        kind,
			Timeframe:   shared.OneHour,
			Score:       shared.OneHour.Weight() * kind.Weight(),
			Description: description,
		}
	}

	tests := []struct {
		name            string
		levels          []Level
		lastStableClose float64
		want            []Zone
	}{
		{
			name:   "no levels",
			levels: nil,
			want:   nil,
		},
		{
			name: "singletons are discarded",
			levels: []Level{
				level(150, POC, "POC (60)"),
				level(105, VWAP, "VWAP (60)"),
				level(100.3, EMA50, "EMA 50 (60)"),
				level(100, SwingLow, "Swing Low (60)"),
			},
			lastStableClose: 120,
			want: []Zone{
				{
					Low:     100,
					High:    100.3,
					Score:   0.7,
					Reasons: []string{"EMA 50 (60)", "Swing Low (60)"},
					Kind:    shared.SupportZone,
				},
			},
		},
		{
			name: "chained clusters span beyond the threshold",
			levels: []Level{
				level(100, POC, "POC (60)"),
				level(100.4, VAH, "VAH (60)"),
				level(100.8, R1, "R1 (60)"),
				level(200, Tenkan, "Tenkan Sen (60)"),
				level(200.5, SenkouA, "Senkou A (60)"),
			},
			lastStableClose: 100.1,
			want: []Zone{
				{
					Low:     100,
					High:    100.8,
					Score:   1.05,
					Reasons: []string{"POC (60)", "R1 (60)", "VAH (60)"},
					Kind:    shared.ResistanceZone,
				},
				{
					Low:     200,
					High:    200.5,
					Score:   0.3,
					Reasons: []string{"Senkou A (60)", "Tenkan Sen (60)"},
					Kind:    shared.ResistanceZone,
				},
			},
		},
		{
			name: "non positive prices do not cluster",
			levels: []Level{
				level(0, ATR3, "VWAP-ATR S3 (60)"),
				level(0, ATR2, "VWAP-ATR S2 (60)"),
			},
			lastStableClose: 10,
			want:            nil,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := clusterLevels(test.levels, test.lastStableClose)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Fatalf("unexpected zones (-want +got):\n%s", diff)
			}
		})
	}
}

func TestZoneKindStability(t *testing.T) {
	report, err := priceaction.NewReport(shared.OneHour, generateCandles(120, shared.OneHour), nil)
	assert.NoError(t, err)

	// Ensure zone types only depend on the last stable close.
	first := FindZones([]*priceaction.Report{report}, report.LastClose())
	second := FindZones([]*priceaction.Report{report}, report.LastClose())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("zones changed between identical runs (-first +second):\n%s", diff)
	}

	for idx := range first {
		zone := first[idx]
		assert.True(t, zone.Low <= zone.High)
		assert.True(t, len(zone.Reasons) >= 2)
		if zone.Mid() > report.LastClose() {
			assert.Equal(t, zone.Kind, shared.ResistanceZone)
		} else {
			assert.Equal(t, zone.Kind, shared.SupportZone)
		}
		if idx > 0 {
			assert.True(t, first[idx-1].Score >= zone.Score)
		}
	}

	zone := Zone{Low: 10, High: 12}
	assert.True(t, zone.Contains(10))
	assert.True(t, zone.Contains(12))
	assert.False(t, zone.Contains(12.01))
	assert.Equal(t, zone.Mid(), float64(11))
}
