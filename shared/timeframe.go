package shared

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the format layout for parsing dates.
	DateLayout = "2006-01-02 15:04:05"
)

// Timeframe represents the market data time period.
type Timeframe int

const (
	FiveMinute Timeframe = iota
	FifteenMinute
	ThirtyMinute
	OneHour
	FourHour
	OneDay
	OneWeek
)

// String stringifies the provided timeframe using exchange interval labels.
func (t Timeframe) String() string {
	switch t {
	case FiveMinute:
		return "5"
	case FifteenMinute:
		return "15"
	case ThirtyMinute:
		return "30"
	case OneHour:
		return "60"
	case FourHour:
		return "240"
	case OneDay:
		return "D"
	case OneWeek:
		return "W"
	default:
		return "unknown"
	}
}

// ParseTimeframe parses the provided exchange interval label.
func ParseTimeframe(s string) (Timeframe, error) {
	switch s {
	case "5":
		return FiveMinute, nil
	case "15":
		return FifteenMinute, nil
	case "30":
		return ThirtyMinute, nil
	case "60":
		return OneHour, nil
	case "240":
		return FourHour, nil
	case "D":
		return OneDay, nil
	case "W":
		return OneWeek, nil
	default:
		return 0, fmt.Errorf("unknown timeframe provided: %q", s)
	}
}

// Weight returns the significance weighting of levels derived from the timeframe.
// Higher timeframes carry more weight.
func (t Timeframe) Weight() float64 {
	switch t {
	case OneWeek:
		return 1.0
	case OneDay:
		return 0.9
	case FourHour:
		return 0.7
	case OneHour:
		return 0.5
	case ThirtyMinute:
		return 0.3
	case FifteenMinute:
		return 0.2
	default:
		return 0.1
	}
}

// Duration returns the time period covered by a single candlestick of the timeframe.
func (t Timeframe) Duration() time.Duration {
	switch t {
	case FiveMinute:
		return time.Minute * 5
	case FifteenMinute:
		return time.Minute * 15
	case ThirtyMinute:
		return time.Minute * 30
	case OneHour:
		return time.Hour
	case FourHour:
		return time.Hour * 4
	case OneDay:
		return time.Hour * 24
	case OneWeek:
		return time.Hour * 24 * 7
	default:
		return 0
	}
}
