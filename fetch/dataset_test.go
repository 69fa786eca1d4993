package fetch

import (
	"testing"
	"time"

	"github.com/dnldd/chimera/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/tidwall/gjson"
)

func TestLoadDataset(t *testing.T) {
	// Ensure a missing file errors.
	_, err := LoadDataset("../testdata/missing.json")
	assert.Error(t, err)

	// Ensure the dataset fixture can be loaded.
	ds, err := LoadDataset("../testdata/dataset.json")
	assert.NoError(t, err)
	assert.Equal(t, ds.Symbol, "ETHUSDT")
	assert.Equal(t, ds.Primary, shared.OneHour)
	assert.Equal(t, ds.Timeframes(), []shared.Timeframe{shared.OneHour, shared.FourHour, shared.OneDay})

	// Ensure newest-first kline rows are reversed into an ascending series.
	candles := ds.Candles()
	assert.Equal(t, len(candles), 260)
	assert.Equal(t, candles[0].Date, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, shared.ValidateSeries(candles))
	assert.Equal(t, candles[0].Open, 100.0)
	assert.Equal(t, candles[0].Volume, 400.0)

	// Ensure object candles keyed by date and timestamp are parsed.
	assert.Equal(t, len(ds.Series[shared.FourHour]), 80)
	assert.Equal(t, len(ds.Daily()), 20)
	assert.Equal(t, ds.Daily()[0].Date, time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, len(ds.Reference), 260)
	assert.Equal(t, ds.Reference[0].Date, candles[0].Date)

	// Ensure the previous day quad is parsed.
	assert.NotNil(t, ds.PrevDay)
	assert.Equal(t, ds.PrevDay.High, 110.0)
	assert.Equal(t, ds.PrevDay.Low, 90.0)
	assert.Equal(t, ds.PrevDay.Close, 100.0)

	// Ensure reports are built for every timeframe with enough history.
	primary, reports, err := ds.Reports()
	assert.NoError(t, err)
	assert.Equal(t, primary.Timeframe, shared.OneHour)
	assert.Equal(t, len(reports), 2)
	assert.Equal(t, reports[1].Timeframe, shared.FourHour)
	assert.True(t, primary.Levels.Pivots.Valid)
}

func TestParseDataset(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name:    "unknown primary timeframe",
			doc:     `{"primary":"2h","timeframes":{"60":[]}}`,
			wantErr: true,
		},
		{
			name:    "missing primary series",
			doc:     `{"primary":"60","timeframes":{"240":[]}}`,
			wantErr: true,
		},
		{
			name:    "unknown series timeframe",
			doc:     `{"primary":"60","timeframes":{"60":[],"3":[]}}`,
			wantErr: true,
		},
		{
			name: "duplicate dates",
			doc: `{"primary":"60","timeframes":{"60":[
				{"timestamp":1735689600000,"open":1,"high":2,"low":0.5,"close":1.5,"volume":10},
				{"timestamp":1735689600000,"open":1,"high":2,"low":0.5,"close":1.5,"volume":10}]}}`,
			wantErr: true,
		},
		{
			name: "unordered dates",
			doc: `{"primary":"60","timeframes":{"60":[
				{"timestamp":1735689600000,"open":1,"high":2,"low":0.5,"close":1.5,"volume":10},
				{"timestamp":1735696800000,"open":1,"high":2,"low":0.5,"close":1.5,"volume":10},
				{"timestamp":1735693200000,"open":1,"high":2,"low":0.5,"close":1.5,"volume":10}]}}`,
			wantErr: true,
		},
		{
			name:    "short kline row",
			doc:     `{"primary":"60","timeframes":{"60":[["1735689600000","1","2","0.5"]]}}`,
			wantErr: true,
		},
		{
			name:    "malformed kline price",
			doc:     `{"primary":"60","timeframes":{"60":[["1735689600000","x","2","0.5","1","10","10"]]}}`,
			wantErr: true,
		},
		{
			name:    "candle without a date",
			doc:     `{"primary":"60","timeframes":{"60":[{"open":1,"high":2,"low":0.5,"close":1.5}]}}`,
			wantErr: true,
		},
		{
			name:    "malformed previous day",
			doc:     `{"primary":"60","timeframes":{"60":[]},"prevDay":[1,2,3]}`,
			wantErr: true,
		},
		{
			name: "default primary with previous day object",
			doc: `{"timeframes":{"60":[
				{"date":"2025-01-01 00:00:00","open":1,"high":2,"low":0.5,"close":1.5,"volume":10}]},
				"prevDay":{"open":1,"high":2,"low":0.5,"close":1.5,"date":"2024-12-31"}}`,
			wantErr: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := gjson.Parse(test.doc)
			ds, err := ParseDataset(&b)
			if test.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, ds.Primary, shared.OneHour)
			assert.Equal(t, len(ds.Candles()), 1)
		})
	}
}

func TestParseCandlesticks(t *testing.T) {
	rows := gjson.Parse(`[
		["1735693200000","101","103","100","102","20","2040"],
		["1735689600000","100","102","99","101","10","1010"]]`).Array()

	// Ensure kline rows are parsed and reversed.
	candles, err := ParseCandlesticks(rows)
	assert.NoError(t, err)
	assert.Equal(t, len(candles), 2)
	assert.Equal(t, candles[0].Date, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, candles[0].Close, 101.0)
	assert.Equal(t, candles[1].High, 103.0)
	assert.Equal(t, candles[1].Volume, 20.0)

	// Ensure an empty series is accepted.
	candles, err = ParseCandlesticks(nil)
	assert.NoError(t, err)
	assert.Equal(t, len(candles), 0)

	// Ensure scalar entries are rejected.
	_, err = ParseCandlesticks(gjson.Parse(`[1, 2]`).Array())
	assert.Error(t, err)
}
