package position

import (
	"math"
	"testing"
	"time"

	"github.com/dnldd/chimera/shared"
	"github.com/peterldowns/testy/assert"
)

func TestCheckExit(t *testing.T) {
	long := &Position{Direction: shared.Long, EntryPrice: 100, Size: 2, StopLoss: 95, TakeProfit: 110}
	short := &Position{Direction: shared.Short, EntryPrice: 100, Size: 2, StopLoss: 105, TakeProfit: 90}
	bare := &Position{Direction: shared.Long, EntryPrice: 100, Size: 2, StopLoss: math.NaN(), TakeProfit: math.NaN()}

	tests := []struct {
		name     string
		position *Position
		candle   shared.Candlestick
		price    float64
		reason   ExitReason
		hit      bool
	}{
		{
			name:     "long inside range",
			position: long,
			candle:   shared.Candlestick{High: 109, Low: 96},
			hit:      false,
		},
		{
			name:     "long stop-loss",
			position: long,
			candle:   shared.Candlestick{High: 96, Low: 94},
			price:    95,
			reason:   StopLossHit,
			hit:      true,
		},
		{
			name:     "long take-profit",
			position: long,
			candle:   shared.Candlestick{High: 110, Low: 99},
			price:    110,
			reason:   TakeProfitHit,
			hit:      true,
		},
		{
			name:     "long both exits resolve to the stop-loss",
			position: long,
			candle:   shared.Candlestick{High: 111, Low: 94},
			price:    95,
			reason:   StopLossHit,
			hit:      true,
		},
		{
			name:     "short stop-loss",
			position: short,
			candle:   shared.Candlestick{High: 106, Low: 99},
			price:    105,
			reason:   StopLossHit,
			hit:      true,
		},
		{
			name:     "short take-profit",
			position: short,
			candle:   shared.Candlestick{High: 101, Low: 89},
			price:    90,
			reason:   TakeProfitHit,
			hit:      true,
		},
		{
			name:     "position without exits",
			position: bare,
			candle:   shared.Candlestick{High: 200, Low: 1},
			hit:      false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			price, reason, hit := test.position.CheckExit(&test.candle)
			assert.Equal(t, hit, test.hit)
			if !test.hit {
				return
			}
			assert.Equal(t, price, test.price)
			assert.Equal(t, reason, test.reason)
		})
	}
}

func TestClose(t *testing.T) {
	date := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	// Ensure a long stop-out realizes the stop distance.
	long := &Position{ID: "trade-1", Direction: shared.Long, EntryPrice: 100, Size: 2}
	trade, err := long.Close(95, date, StopLossHit, 0)
	assert.NoError(t, err)
	assert.Equal(t, trade.Profit, float64(-10))
	assert.Equal(t, trade.ProfitPercent, float64(-5))
	assert.Equal(t, trade.ExitDate, date)
	assert.Equal(t, trade.ExitReason, StopLossHit)

	// Ensure short profits are mirrored and fees are deducted.
	short := &Position{ID: "trade-2", Direction: shared.Short, EntryPrice: 100, Size: 2, EntryFee: 0.5}
	trade, err = short.Close(90, date, TakeProfitHit, 0.5)
	assert.NoError(t, err)
	assert.Equal(t, trade.Profit, float64(19))
	assert.Equal(t, trade.Fees, float64(1))
	assert.Equal(t, trade.ProfitPercent, 9.5)

	// Ensure unknown directions cannot be closed.
	unknown := &Position{Direction: shared.Direction(7), EntryPrice: 100, Size: 1}
	_, err = unknown.Close(90, date, EndOfData, 0)
	assert.Error(t, err)
}
