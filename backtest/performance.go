package backtest

import (
	"encoding/json"
	"math"

	"github.com/dnldd/chimera/indicator"
	"github.com/dnldd/chimera/position"
)

// Results represents the performance summary of a backtest.
type Results struct {
	NetProfit    float64
	NetProfitPct float64
	// ProfitFactor is the gross profit over the gross loss. It is nil without
	// trades and positive infinity without losses.
	ProfitFactor   *float64
	WinRate        float64
	MaxDrawdown    float64
	MaxDrawdownPct float64
	TotalTrades    int
	// AvgWin and AvgLoss are nil when there are no winning or losing trades. AvgLoss
	// is also nil when every losing trade broke even.
	AvgWin      *float64
	AvgLoss     *float64
	TradeLog    []position.Trade
	EquityCurve []float64
}

// MarshalJSON encodes the results, writing an unbounded profit factor as the
// string "Infinity".
func (r *Results) MarshalJSON() ([]byte, error) {
	var profitFactor any
	switch {
	case r.ProfitFactor == nil:
	case math.IsInf(*r.ProfitFactor, 1):
		profitFactor = "Infinity"
	default:
		profitFactor = *r.ProfitFactor
	}

	return json.Marshal(struct {
		NetProfit      float64          `json:"netProfit"`
		NetProfitPct   float64          `json:"netProfitPct"`
		ProfitFactor   any              `json:"profitFactor"`
		WinRate        float64          `json:"winRate"`
		MaxDrawdown    float64          `json:"maxDrawdown"`
		MaxDrawdownPct float64          `json:"maxDrawdownPct"`
		TotalTrades    int              `json:"totalTrades"`
		AvgWin         *float64         `json:"avgWin"`
		AvgLoss        *float64         `json:"avgLoss"`
		TradeLog       []position.Trade `json:"tradeLog"`
		EquityCurve    []float64        `json:"equityCurve"`
	}{
		NetProfit:      r.NetProfit,
		NetProfitPct:   r.NetProfitPct,
		ProfitFactor:   profitFactor,
		WinRate:        r.WinRate,
		MaxDrawdown:    r.MaxDrawdown,
		MaxDrawdownPct: r.MaxDrawdownPct,
		TotalTrades:    r.TotalTrades,
		AvgWin:         r.AvgWin,
		AvgLoss:        r.AvgLoss,
		TradeLog:       r.TradeLog,
		EquityCurve:    r.EquityCurve,
	})
}

// round2 rounds the provided value to two decimal places.
func round2(v float64) float64 {
	return indicator.Round(v, 2)
}

// Aggregate summarizes the provided trades and equity curve. Trades with a
// positive profit are wins, every other trade is a loss.
func Aggregate(trades []position.Trade, equityCurve []float64, initialCapital float64) *Results {
	results := &Results{
		TradeLog:    trades,
		EquityCurve: equityCurve,
		TotalTrades: len(trades),
	}
	if len(trades) == 0 {
		return results
	}

	var wins, losses int
	var grossProfit, grossLoss float64
	for idx := range trades {
		if trades[idx].Profit > 0 {
			wins++
			grossProfit += trades[idx].Profit
			continue
		}
		losses++
		grossLoss += trades[idx].Profit
	}
	grossLoss = math.Abs(grossLoss)

	results.WinRate = round2(float64(wins) / float64(len(trades)) * 100)

	if wins > 0 {
		avgWin := round2(grossProfit / float64(wins))
		results.AvgWin = &avgWin
	}
	// Break-even trades count as losses but do not define an average loss alone.
	if losses > 0 && grossLoss > 0 {
		avgLoss := round2(grossLoss / float64(losses))
		results.AvgLoss = &avgLoss
	}

	profitFactor := math.Inf(1)
	if grossLoss > 0 {
		profitFactor = round2(grossProfit / grossLoss)
	}
	results.ProfitFactor = &profitFactor

	final := initialCapital
	if len(equityCurve) > 0 {
		final = equityCurve[len(equityCurve)-1]
	}
	netProfit := final - initialCapital
	results.NetProfit = round2(netProfit)
	results.NetProfitPct = round2(netProfit / initialCapital * 100)

	peak := math.Inf(-1)
	var maxDrawdown float64
	for _, equity := range equityCurve {
		peak = math.Max(peak, equity)
		maxDrawdown = math.Max(maxDrawdown, peak-equity)
	}
	results.MaxDrawdown = round2(maxDrawdown)
	if peak > initialCapital {
		results.MaxDrawdownPct = round2(maxDrawdown / peak * 100)
	}

	return results
}
