package position

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/dnldd/chimera/shared"
)

// ExitReason represents why a position was closed.
type ExitReason int

const (
	StopLossHit ExitReason = iota
	TakeProfitHit
	EndOfData
)

// String stringifies the provided exit reason.
func (r ExitReason) String() string {
	switch r {
	case StopLossHit:
		return "stop_loss"
	case TakeProfitHit:
		return "take_profit"
	case EndOfData:
		return "end_of_data"
	default:
		return "unknown"
	}
}

// MarshalText encodes the exit reason as its label.
func (r ExitReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Position represents an open position. Stop-loss and take-profit are NaN when
// not set.
type Position struct {
	ID         string
	Direction  shared.Direction
	EntryPrice float64
	EntryDate  time.Time
	// Size is the position size in units of the asset.
	Size       float64
	StopLoss   float64
	TakeProfit float64
	// EntryFee is the fee paid on entry, realized when the position closes.
	EntryFee float64
}

// Trade represents a closed position.
type Trade struct {
	ID            string           `json:"id"`
	Direction     shared.Direction `json:"side"`
	EntryDate     time.Time        `json:"entryDate"`
	EntryPrice    float64          `json:"entryPrice"`
	ExitDate      time.Time        `json:"exitDate"`
	ExitPrice     float64          `json:"exitPrice"`
	Size          float64          `json:"size"`
	Profit        float64          `json:"profit"`
	ProfitPercent float64          `json:"profitPct"`
	Fees          float64          `json:"fees"`
	ExitReason    ExitReason       `json:"exitReason"`
}

// MarshalJSON encodes the position, writing unset exit levels as null.
func (p *Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"id":         p.ID,
		"side":       p.Direction,
		"entryPrice": p.EntryPrice,
		"entryDate":  p.EntryDate,
		"size":       p.Size,
		"stopLoss":   shared.Nullable(p.StopLoss),
		"takeProfit": shared.Nullable(p.TakeProfit),
		"entryFee":   p.EntryFee,
	})
}

// CheckExit determines whether the candle's range reaches the position's stop-loss
// or take-profit. The stop-loss is checked first, so a candle reaching both exits
// at the stop-loss.
func (p *Position) CheckExit(candle *shared.Candlestick) (float64, ExitReason, bool) {
	hasStop := !math.IsNaN(p.StopLoss)
	hasTarget := !math.IsNaN(p.TakeProfit)

	switch p.Direction {
	case shared.Long:
		if hasStop && candle.Low <= p.StopLoss {
			return p.StopLoss, StopLossHit, true
		}
		if hasTarget && candle.High >= p.TakeProfit {
			return p.TakeProfit, TakeProfitHit, true
		}
	case shared.Short:
		if hasStop && candle.High >= p.StopLoss {
			return p.StopLoss, StopLossHit, true
		}
		if hasTarget && candle.Low <= p.TakeProfit {
			return p.TakeProfit, TakeProfitHit, true
		}
	}

	return 0, 0, false
}

// Close closes the position at the provided price. The exit fee and the entry fee
// are deducted from the realized profit.
func (p *Position) Close(price float64, date time.Time, reason ExitReason, exitFee float64) (Trade, error) {
	var gross float64
	switch p.Direction {
	case shared.Long:
		gross = (price - p.EntryPrice) * p.Size
	case shared.Short:
		gross = (p.EntryPrice - price) * p.Size
	default:
		return Trade{}, fmt.Errorf("unknown direction for position: %s", p.Direction.String())
	}

	fees := p.EntryFee + exitFee
	profit := gross - fees

	var profitPct float64
	if value := p.EntryPrice * p.Size; value > 0 {
		profitPct = (profit / value) * 100
	}

	return Trade{
		ID:            p.ID,
		Direction:     p.Direction,
		EntryDate:     p.EntryDate,
		EntryPrice:    p.EntryPrice,
		ExitDate:      date,
		ExitPrice:     price,
		Size:          p.Size,
		Profit:        profit,
		ProfitPercent: profitPct,
		Fees:          fees,
		ExitReason:    reason,
	}, nil
}
