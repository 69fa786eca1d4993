package shared

import (
	"errors"
	"fmt"
)

// SizingKind represents how the quote size of a position is derived.
type SizingKind int

const (
	PercentageOfEquity SizingKind = iota
	FixedAmount
)

// String stringifies the provided sizing kind.
func (k SizingKind) String() string {
	switch k {
	case PercentageOfEquity:
		return "percentage_of_equity"
	case FixedAmount:
		return "fixed_amount"
	default:
		return "unknown"
	}
}

// MarshalText encodes the sizing kind as its label.
func (k SizingKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseSizingKind parses the provided position sizing type.
func ParseSizingKind(s string) (SizingKind, error) {
	switch s {
	case "percentage_of_equity":
		return PercentageOfEquity, nil
	case "fixed_amount":
		return FixedAmount, nil
	default:
		return 0, fmt.Errorf("unknown position sizing type provided: %q", s)
	}
}

// PositionSizing represents the position sizing configuration.
type PositionSizing struct {
	Kind  SizingKind `json:"type"`
	Value float64    `json:"value"`
}

// BacktestSettings represents the account and execution settings of a backtest.
type BacktestSettings struct {
	// InitialCapital is the starting equity in quote currency.
	InitialCapital float64 `json:"initialCapital"`
	// Sizing is the position sizing rule.
	Sizing PositionSizing `json:"positionSizing"`
	// MakerFeePercent is the fee charged on resting (take-profit) fills.
	MakerFeePercent float64 `json:"makerPercent"`
	// TakerFeePercent is the fee charged on market fills.
	TakerFeePercent float64 `json:"takerPercent"`
	// SlippagePercent is the flat adverse price adjustment applied to market fills.
	SlippagePercent float64 `json:"slippagePercent"`
}

// Validate asserts the settings are sane.
func (s *BacktestSettings) Validate() error {
	var errs error

	if s.InitialCapital <= 0 {
		errs = errors.Join(errs, fmt.Errorf("initial capital must be greater than zero"))
	}
	if s.Sizing.Value <= 0 {
		errs = errors.Join(errs, fmt.Errorf("position sizing value must be greater than zero"))
	}
	if s.Sizing.Kind == PercentageOfEquity && s.Sizing.Value > 100 {
		errs = errors.Join(errs, fmt.Errorf("position sizing percentage cannot exceed 100"))
	}
	if s.MakerFeePercent < 0 {
		errs = errors.Join(errs, fmt.Errorf("maker fee cannot be negative"))
	}
	if s.TakerFeePercent < 0 {
		errs = errors.Join(errs, fmt.Errorf("taker fee cannot be negative"))
	}
	if s.SlippagePercent < 0 {
		errs = errors.Join(errs, fmt.Errorf("slippage cannot be negative"))
	}

	return errs
}
