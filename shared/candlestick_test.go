package shared

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
)

func TestValidateSeries(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := []Candlestick{
		{Date: start},
		{Date: start.Add(time.Hour)},
		{Date: start.Add(time.Hour * 2)},
	}

	// Ensure ascending series are accepted.
	assert.NoError(t, ValidateSeries(candles))

	// Ensure duplicates are rejected.
	assert.Error(t, ValidateSeries([]Candlestick{candles[0], candles[1], candles[1]}))

	// Ensure descending series are rejected.
	assert.Error(t, ValidateSeries([]Candlestick{candles[2], candles[1]}))

	// Ensure lookups return the last candle at or before the provided time.
	assert.Equal(t, IndexAt(candles, start.Add(-time.Minute)), -1)
	assert.Equal(t, IndexAt(candles, start.Add(time.Minute*90)), 1)
	assert.Equal(t, IndexAt(candles, start.Add(time.Hour*5)), 2)
}

func TestIndexAt(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]Candlestick, 500)
	for idx := range candles {
		candles[idx] = Candlestick{Date: start.Add(time.Hour * time.Duration(idx))}
	}

	tests := []struct {
		name   string
		series []Candlestick
		at     time.Time
		want   int
	}{
		{name: "empty series", series: nil, at: start, want: -1},
		{name: "before the first candle", series: candles, at: start.Add(-time.Second), want: -1},
		{name: "at the first candle", series: candles, at: start, want: 0},
		{name: "exactly at a candle", series: candles, at: start.Add(time.Hour * 317), want: 317},
		{name: "between candles", series: candles, at: start.Add(time.Hour*317 + time.Minute*59), want: 317},
		{name: "at the last candle", series: candles, at: start.Add(time.Hour * 499), want: 499},
		{name: "after the last candle", series: candles, at: start.Add(time.Hour * 1000), want: 499},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, IndexAt(test.series, test.at), test.want)
		})
	}
}
