package fetch

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strconv"
	"time"

	"github.com/dnldd/chimera/priceaction"
	"github.com/dnldd/chimera/shared"
	"github.com/tidwall/gjson"
)

// Dataset represents the historical candle series backing a backtest.
type Dataset struct {
	// Symbol is the traded asset.
	Symbol string
	// Primary is the traded timeframe.
	Primary shared.Timeframe
	// Series are the ascending candle series keyed by timeframe.
	Series map[shared.Timeframe][]shared.Candlestick
	// Reference is the optional reference asset series of the primary timeframe.
	Reference []shared.Candlestick
	// PrevDay is the optional previous daily session used for pivots.
	PrevDay *priceaction.DayOHLC
}

// loadDatasetFile loads the dataset document at the provided file path.
func loadDatasetFile(filepath string) (*gjson.Result, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading dataset from file with path '%s': %v", filepath, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("dataset at path '%s' is not valid json", filepath)
	}

	b := gjson.ParseBytes(data)
	return &b, nil
}

// LoadDataset loads and validates the dataset at the provided file path.
func LoadDataset(filepath string) (*Dataset, error) {
	b, err := loadDatasetFile(filepath)
	if err != nil {
		return nil, err
	}

	return ParseDataset(b)
}

// ParseDataset parses a dataset document.
func ParseDataset(b *gjson.Result) (*Dataset, error) {
	ds := &Dataset{
		Symbol:  b.Get("symbol").String(),
		Primary: shared.OneHour,
		Series:  make(map[shared.Timeframe][]shared.Candlestick),
	}

	if primary := b.Get("primary"); primary.Exists() {
		tf, err := shared.ParseTimeframe(primary.String())
		if err != nil {
			return nil, fmt.Errorf("parsing primary timeframe: %w", err)
		}
		ds.Primary = tf
	}

	var err error
	b.Get("timeframes").ForEach(func(key, value gjson.Result) bool {
		var tf shared.Timeframe
		tf, err = shared.ParseTimeframe(key.String())
		if err != nil {
			err = fmt.Errorf("parsing series timeframe: %w", err)
			return false
		}

		var candles []shared.Candlestick
		candles, err = ParseCandlesticks(value.Array())
		if err != nil {
			err = fmt.Errorf("parsing %s series: %w", tf.String(), err)
			return false
		}

		ds.Series[tf] = candles
		return true
	})
	if err != nil {
		return nil, err
	}

	if _, ok := ds.Series[ds.Primary]; !ok {
		return nil, fmt.Errorf("no %s series found for the primary timeframe", ds.Primary.String())
	}

	if ref := b.Get("reference"); ref.Exists() {
		ds.Reference, err = ParseCandlesticks(ref.Array())
		if err != nil {
			return nil, fmt.Errorf("parsing reference series: %w", err)
		}
	}

	if prev := b.Get("prevDay"); prev.Exists() {
		ds.PrevDay, err = parseDayOHLC(prev)
		if err != nil {
			return nil, err
		}
	}

	return ds, nil
}

// ParseCandlesticks parses candlesticks from the provided json data. Bybit kline
// rows arrive newest first and are reversed, the resulting series must be ascending.
func ParseCandlesticks(data []gjson.Result) ([]shared.Candlestick, error) {
	candles := make([]shared.Candlestick, 0, len(data))
	for idx := range data {
		var candle shared.Candlestick
		var err error

		switch {
		case data[idx].IsArray():
			candle, err = parseKlineRow(data[idx].Array())
		case data[idx].IsObject():
			candle, err = parseCandleObject(data[idx])
		default:
			err = fmt.Errorf("unexpected candlestick format")
		}
		if err != nil {
			return nil, fmt.Errorf("candlestick %d: %w", idx, err)
		}

		candles = append(candles, candle)
	}

	if len(candles) > 1 && candles[0].Date.After(candles[len(candles)-1].Date) {
		slices.Reverse(candles)
	}

	err := shared.ValidateSeries(candles)
	if err != nil {
		return nil, err
	}

	return candles, nil
}

// parseKlineRow parses a kline row of the form
// [startMs, open, high, low, close, volume, turnover].
func parseKlineRow(row []gjson.Result) (shared.Candlestick, error) {
	if len(row) < 6 {
		return shared.Candlestick{}, fmt.Errorf("expected at least 6 kline fields, got %d", len(row))
	}

	ms, err := strconv.ParseInt(row[0].String(), 10, 64)
	if err != nil {
		return shared.Candlestick{}, fmt.Errorf("parsing kline start time: %w", err)
	}

	values := make([]float64, 5)
	for idx := range values {
		values[idx], err = strconv.ParseFloat(row[idx+1].String(), 64)
		if err != nil {
			return shared.Candlestick{}, fmt.Errorf("parsing kline field %d: %w", idx+1, err)
		}
	}

	return shared.Candlestick{
		Date:   time.UnixMilli(ms).UTC(),
		Open:   values[0],
		High:   values[1],
		Low:    values[2],
		Close:  values[3],
		Volume: values[4],
	}, nil
}

// parseCandleObject parses a candlestick object keyed by timestamp or date.
func parseCandleObject(res gjson.Result) (shared.Candlestick, error) {
	candle := shared.Candlestick{
		Open:   res.Get("open").Float(),
		High:   res.Get("high").Float(),
		Low:    res.Get("low").Float(),
		Close:  res.Get("close").Float(),
		Volume: res.Get("volume").Float(),
	}

	dt, err := parseDate(res)
	if err != nil {
		return shared.Candlestick{}, err
	}
	candle.Date = dt

	return candle, nil
}

// parseDate parses the candle time from a millisecond timestamp or a date string.
func parseDate(res gjson.Result) (time.Time, error) {
	if ts := res.Get("timestamp"); ts.Exists() {
		ms, err := strconv.ParseInt(ts.String(), 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing candlestick timestamp: %w", err)
		}
		return time.UnixMilli(ms).UTC(), nil
	}

	date := res.Get("date")
	if !date.Exists() {
		return time.Time{}, fmt.Errorf("candlestick has no timestamp or date")
	}

	for _, layout := range []string{time.RFC3339, shared.DateLayout, time.DateOnly} {
		dt, err := time.Parse(layout, date.String())
		if err == nil {
			return dt.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("parsing candlestick date %q", date.String())
}

// parseDayOHLC parses the previous day session, either as an object or as an
// [open, high, low, close] quad.
func parseDayOHLC(res gjson.Result) (*priceaction.DayOHLC, error) {
	if res.IsArray() {
		quad := res.Array()
		if len(quad) != 4 {
			return nil, fmt.Errorf("expected a previous day quad, got %d fields", len(quad))
		}
		return &priceaction.DayOHLC{
			Open:  quad[0].Float(),
			High:  quad[1].Float(),
			Low:   quad[2].Float(),
			Close: quad[3].Float(),
		}, nil
	}

	day := &priceaction.DayOHLC{
		Open:  res.Get("open").Float(),
		High:  res.Get("high").Float(),
		Low:   res.Get("low").Float(),
		Close: res.Get("close").Float(),
	}
	if res.Get("timestamp").Exists() || res.Get("date").Exists() {
		dt, err := parseDate(res)
		if err != nil {
			return nil, fmt.Errorf("parsing previous day: %w", err)
		}
		day.Date = dt
	}

	return day, nil
}

// Timeframes returns the dataset's timeframes in ascending order.
func (ds *Dataset) Timeframes() []shared.Timeframe {
	tfs := make([]shared.Timeframe, 0, len(ds.Series))
	for tf := range ds.Series {
		tfs = append(tfs, tf)
	}
	sort.Slice(tfs, func(i, j int) bool { return tfs[i] < tfs[j] })

	return tfs
}

// Candles returns the primary candle series.
func (ds *Dataset) Candles() []shared.Candlestick {
	return ds.Series[ds.Primary]
}

// Daily returns the daily series, or nil if the dataset has none.
func (ds *Dataset) Daily() []shared.Candlestick {
	return ds.Series[shared.OneDay]
}

// Reports builds the full historical report of every timeframe with at least
// priceaction.MinReportCandles candles. The primary report is always built.
func (ds *Dataset) Reports() (*priceaction.Report, []*priceaction.Report, error) {
	var primary *priceaction.Report
	reports := make([]*priceaction.Report, 0, len(ds.Series))

	for _, tf := range ds.Timeframes() {
		candles := ds.Series[tf]
		if tf != ds.Primary && len(candles) < priceaction.MinReportCandles {
			continue
		}

		report, err := priceaction.NewReport(tf, candles, ds.PrevDay)
		if err != nil {
			return nil, nil, err
		}
		if tf == ds.Primary {
			primary = report
		}

		reports = append(reports, report)
	}

	if primary == nil {
		return nil, nil, fmt.Errorf("no %s series found for the primary timeframe", ds.Primary.String())
	}

	return primary, reports, nil
}
