package shared

import (
	"math"
	"strconv"
)

// ValueKind represents the type held by a value.
type ValueKind int

const (
	NumberKind ValueKind = iota
	TextKind
)

// Value represents an indicator reading or a filter threshold, either numeric or a
// categorical label.
type Value struct {
	Kind   ValueKind
	Number float64
	Text   string
}

// NumberValue initializes a numeric value.
func NumberValue(v float64) Value {
	return Value{Kind: NumberKind, Number: v}
}

// TextValue initializes a categorical value.
func TextValue(s string) Value {
	return Value{Kind: TextKind, Text: s}
}

// Float returns the numeric form of the value. Text values are parsed, labels that
// are not numbers report false.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case NumberKind:
		if math.IsNaN(v.Number) {
			return 0, false
		}
		return v.Number, true
	default:
		f, err := strconv.ParseFloat(v.Text, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
}

// String stringifies the value for textual comparisons.
func (v Value) String() string {
	switch v.Kind {
	case NumberKind:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	default:
		return v.Text
	}
}

// MarshalJSON encodes the value as a bare number or string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case NumberKind:
		if math.IsNaN(v.Number) || math.IsInf(v.Number, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.Number, 'f', -1, 64)), nil
	default:
		return []byte(strconv.Quote(v.Text)), nil
	}
}

// Nullable returns nil for undefined readings, otherwise a pointer to the reading.
// It is used to encode NaN and infinite values as json null.
func Nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return &v
}
