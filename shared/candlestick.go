package shared

import (
	"fmt"
	"sort"
	"time"
)

// Candlestick represents a unit candlestick for a market.
type Candlestick struct {
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
	Date   time.Time `json:"date"`
}

// ValidateSeries asserts the provided candlesticks are ordered ascending by date
// with no duplicate dates.
func ValidateSeries(candles []Candlestick) error {
	for idx := 1; idx < len(candles); idx++ {
		prev := candles[idx-1].Date
		current := candles[idx].Date
		switch {
		case current.Equal(prev):
			return fmt.Errorf("duplicate candlestick date at index %d: %s", idx, current.UTC().Format(DateLayout))
		case current.Before(prev):
			return fmt.Errorf("candlestick at index %d (%s) precedes index %d (%s)", idx,
				current.UTC().Format(DateLayout), idx-1, prev.UTC().Format(DateLayout))
		}
	}

	return nil
}

// Closes returns the close prices of the provided candlesticks.
func Closes(candles []Candlestick) []float64 {
	data := make([]float64, len(candles))
	for idx := range candles {
		data[idx] = candles[idx].Close
	}

	return data
}

// Highs returns the high prices of the provided candlesticks.
func Highs(candles []Candlestick) []float64 {
	data := make([]float64, len(candles))
	for idx := range candles {
		data[idx] = candles[idx].High
	}

	return data
}

// Lows returns the low prices of the provided candlesticks.
func Lows(candles []Candlestick) []float64 {
	data := make([]float64, len(candles))
	for idx := range candles {
		data[idx] = candles[idx].Low
	}

	return data
}

// Volumes returns the volumes of the provided candlesticks.
func Volumes(candles []Candlestick) []float64 {
	data := make([]float64, len(candles))
	for idx := range candles {
		data[idx] = candles[idx].Volume
	}

	return data
}

// IndexAt returns the index of the last candlestick dated at or before the provided
// time, or -1 if every candlestick is later. The candlesticks must be ascending.
func IndexAt(candles []Candlestick, at time.Time) int {
	return sort.Search(len(candles), func(idx int) bool {
		return candles[idx].Date.After(at)
	}) - 1
}
