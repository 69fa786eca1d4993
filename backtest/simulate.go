package backtest

import (
	"context"
	"fmt"

	"github.com/dnldd/chimera/confluence"
	"github.com/dnldd/chimera/engine"
	"github.com/dnldd/chimera/market"
	"github.com/dnldd/chimera/position"
)

// simulate walks the enriched candles past the warm-up period. Each candle first
// resolves the open position, then evaluates an entry if flat. Entries are not
// taken on the last candle since they could never be resolved.
func (b *Backtester) simulate(ctx context.Context, candles []market.EnrichedCandle, zones [][]confluence.Zone) ([]position.Trade, []float64, error) {
	strategyEngine, err := engine.NewEngine(&engine.EngineConfig{
		Strategy: b.cfg.Strategy,
		Logger:   b.cfg.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating engine: %w", err)
	}

	var riskLog func(name string, data any)
	if b.cfg.LoggingEnabled {
		riskLog = b.cfg.Log
	}
	mgr, err := position.NewManager(&position.ManagerConfig{
		Settings: b.cfg.Settings,
		Log:      riskLog,
		Logger:   b.cfg.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating position manager: %w", err)
	}

	total := len(candles) - MinCandles
	lastIdx := len(candles) - 1
	for idx := MinCandles; idx < len(candles); idx++ {
		candle := &candles[idx]
		last := idx == lastIdx

		_, err := mgr.Step(&candle.Candlestick, last)
		if err != nil {
			return nil, nil, err
		}

		if mgr.State() == position.Flat && !last {
			direction, ok := strategyEngine.Evaluate(candle, zones[idx])
			if ok {
				atr := candle.Indicators.ATR20
				side := b.cfg.Strategy.Side(direction)
				mgr.Open(direction, &candle.Candlestick, atr, &side.Risk, zones[idx])
			}
		}
		zones[idx] = nil

		mgr.RecordEquity()

		if idx%simulationYieldEvery == 0 {
			b.progress.phase(progressSimulate, progressDone, float64(idx-MinCandles)/float64(total))
			err := b.yield(ctx)
			if err != nil {
				return nil, nil, err
			}
		}
	}

	return mgr.Trades(), mgr.EquityCurve(), nil
}
