package backtest

import (
	"github.com/dnldd/chimera/confluence"
	"github.com/dnldd/chimera/priceaction"
	"github.com/dnldd/chimera/shared"
)

// ReplayerConfig represents the confluence replayer configuration.
type ReplayerConfig struct {
	// Reports are the full historical reports of every timeframe.
	Reports []*priceaction.Report
	// Daily is the optional daily series used to roll pivots per session.
	Daily []shared.Candlestick
	// Timeframe is the timeframe of the replayed candles.
	Timeframe shared.Timeframe
	// CompletedOnly restricts reports to candles closed by the replayed candle's close.
	CompletedOnly bool
}

// Replayer reconstructs the confluence zones that were knowable at a past candle.
type Replayer struct {
	cfg *ReplayerConfig
}

// NewReplayer initializes a confluence replayer.
func NewReplayer(cfg *ReplayerConfig) *Replayer {
	return &Replayer{cfg: cfg}
}

// ReportsAt rebuilds every report as of the provided candle. Timeframes with too
// little history at that time are excluded.
func (r *Replayer) ReportsAt(candle *shared.Candlestick) []*priceaction.Report {
	reports := make([]*priceaction.Report, 0, len(r.cfg.Reports))
	closeTime := candle.Date.Add(r.cfg.Timeframe.Duration())

	for idx := range r.cfg.Reports {
		var report *priceaction.Report
		var ok bool
		if r.cfg.CompletedOnly {
			report, ok = priceaction.CompletedReportAt(r.cfg.Reports[idx], closeTime)
		} else {
			report, ok = priceaction.ReportAt(r.cfg.Reports[idx], candle.Date)
		}
		if !ok {
			continue
		}

		if len(r.cfg.Daily) > 0 {
			priceaction.RollPivots(report, r.cfg.Daily, candle.Date)
		}

		reports = append(reports, report)
	}

	return reports
}

// ZonesAt returns the confluence zones as of the provided candle, typed against
// its close.
func (r *Replayer) ZonesAt(candle *shared.Candlestick) []confluence.Zone {
	return confluence.FindZones(r.ReportsAt(candle), candle.Close)
}
