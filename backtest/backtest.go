package backtest

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/dnldd/chimera/confluence"
	"github.com/dnldd/chimera/market"
	"github.com/dnldd/chimera/priceaction"
	"github.com/dnldd/chimera/shared"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

const (
	// MinCandles is the minimum number of primary candles required to backtest.
	MinCandles = market.DefaultWarmup
	// confluenceYieldEvery is the number of candles replayed between yield points.
	confluenceYieldEvery = 20
	// simulationYieldEvery is the number of candles simulated between yield points.
	simulationYieldEvery = 50
	// zoneSampleSize is the number of trailing zone sets logged after the replay.
	zoneSampleSize = 5
)

var (
	// ErrInsufficientData is returned when too few candles are provided.
	ErrInsufficientData = errors.New("not enough kline data to run a backtest")
	// ErrCancelled is returned when a backtest is cancelled before completion.
	ErrCancelled = errors.New("backtest cancelled")
)

// BacktesterConfig represents the backtester configuration.
type BacktesterConfig struct {
	// Strategy is the strategy under test.
	Strategy *shared.StrategyConfig
	// Settings represents the account and execution settings.
	Settings *shared.BacktestSettings
	// Primary is the full historical report of the traded timeframe.
	Primary *priceaction.Report
	// Reports are the full historical reports used for confluence, across timeframes.
	Reports []*priceaction.Report
	// Reference is the optional reference asset series aligned with the primary candles.
	Reference []shared.Candlestick
	// Daily is the optional daily series used to roll pivots per session.
	Daily []shared.Candlestick
	// CompletedOnly restricts replayed reports to closed candles.
	CompletedOnly bool
	// Progress reports the completion percentage. It is optional.
	Progress func(pct float64)
	// LoggingEnabled toggles the emission of log artifacts.
	LoggingEnabled bool
	// Log records the provided log artifact.
	Log func(name string, data any)
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *BacktesterConfig) Validate() error {
	var errs error

	if cfg.Strategy == nil {
		errs = errors.Join(errs, fmt.Errorf("strategy cannot be nil"))
	}
	if cfg.Settings == nil {
		errs = errors.Join(errs, fmt.Errorf("settings cannot be nil"))
	}
	if cfg.Primary == nil {
		errs = errors.Join(errs, fmt.Errorf("primary report cannot be nil"))
	}
	if cfg.LoggingEnabled && cfg.Log == nil {
		errs = errors.Join(errs, fmt.Errorf("log function cannot be nil when logging is enabled"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Backtester replays a strategy over historical data without lookahead.
type Backtester struct {
	cfg       *BacktesterConfig
	progress  *progressTracker
	cancelled *atomic.Bool
}

// NewBacktester initializes a new backtester.
func NewBacktester(cfg *BacktesterConfig) (*Backtester, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating backtester config: %w", err)
	}

	return &Backtester{
		cfg:       cfg,
		progress:  newProgressTracker(cfg.Progress),
		cancelled: atomic.NewBool(false),
	}, nil
}

// Cancel signals the backtest to stop at its next yield point. It is safe to
// call from any goroutine. A cancellation requested before Run applies to the
// next run and is cleared once that run returns.
func (b *Backtester) Cancel() {
	b.cancelled.Store(true)
}

// Progress returns the last reported completion percentage.
func (b *Backtester) Progress() float64 {
	return b.progress.current()
}

// log records the provided artifact if logging is enabled.
func (b *Backtester) log(name string, data any) {
	if b.cfg.LoggingEnabled {
		b.cfg.Log(name, data)
	}
}

// yield suspends the run briefly and reports whether it should stop.
func (b *Backtester) yield(ctx context.Context) error {
	runtime.Gosched()

	if b.cancelled.Load() {
		return ErrCancelled
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	default:
		return nil
	}
}

// zoneSample represents the confluence zones replayed at a candle.
type zoneSample struct {
	Date  time.Time         `json:"date"`
	Zones []confluence.Zone `json:"zones"`
}

// replayZones reconstructs the confluence zones of every simulated candle.
func (b *Backtester) replayZones(ctx context.Context, candles []shared.Candlestick) ([][]confluence.Zone, error) {
	replayer := NewReplayer(&ReplayerConfig{
		Reports:       b.cfg.Reports,
		Daily:         b.cfg.Daily,
		Timeframe:     b.cfg.Primary.Timeframe,
		CompletedOnly: b.cfg.CompletedOnly,
	})

	total := len(candles) - MinCandles
	zones := make([][]confluence.Zone, len(candles))
	for idx := MinCandles; idx < len(candles); idx++ {
		zones[idx] = replayer.ZonesAt(&candles[idx])

		if idx%confluenceYieldEvery == 0 {
			b.progress.phase(progressConfluence, progressSimulate, float64(idx-MinCandles)/float64(total))
			err := b.yield(ctx)
			if err != nil {
				return nil, err
			}
		}
	}

	if b.cfg.LoggingEnabled {
		sample := make([]zoneSample, 0, zoneSampleSize)
		for idx := max(MinCandles, len(candles)-zoneSampleSize); idx < len(candles); idx++ {
			sample = append(sample, zoneSample{Date: candles[idx].Date, Zones: zones[idx]})
		}
		b.log("historical_confluence_zones_sample", sample)
	}

	return zones, nil
}

// Run executes the backtest: candles are enriched, confluence zones are replayed,
// trades are simulated and the performance is aggregated. A backtester can be run
// repeatedly, each run reports progress from the start.
func (b *Backtester) Run(ctx context.Context) (*Results, error) {
	b.progress.reset()
	defer b.cancelled.Store(false)

	candles := b.cfg.Primary.Candles
	if len(candles) < MinCandles {
		return nil, fmt.Errorf("%w: %d candles provided, %d required",
			ErrInsufficientData, len(candles), MinCandles)
	}

	b.progress.set(progressStarted)
	b.log("backtest_settings", b.cfg.Settings)
	b.log("raw_kline_data", candles)
	err := b.yield(ctx)
	if err != nil {
		return nil, err
	}

	b.progress.set(progressEnrich)
	b.log("backtest_phase", "enriching candles with point-in-time indicators")
	b.cfg.Logger.Info().Msgf("enriching %d candles", len(candles))

	enricher, err := market.NewEnricher(&market.EnricherConfig{
		Candles:    candles,
		Reference:  b.cfg.Reference,
		Warmup:     MinCandles,
		YieldEvery: market.DefaultYieldEvery,
		Progress: func(fraction float64) {
			b.progress.phase(progressEnrich, progressConfluence, fraction)
		},
		Yield:  func() error { return b.yield(ctx) },
		Logger: b.cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating enricher: %w", err)
	}
	enriched, err := enricher.Enrich()
	if err != nil {
		return nil, err
	}
	b.log("enriched_kline_data_with_indicators", enriched[MinCandles:])

	b.progress.set(progressConfluence)
	b.log("backtest_phase", "replaying historical confluence zones")
	b.cfg.Logger.Info().Msgf("replaying confluence across %d reports", len(b.cfg.Reports))

	zones, err := b.replayZones(ctx, candles)
	if err != nil {
		return nil, err
	}

	b.progress.set(progressSimulate)
	b.log("backtest_phase", "simulating trades")

	trades, equityCurve, err := b.simulate(ctx, enriched, zones)
	if err != nil {
		return nil, err
	}

	results := Aggregate(trades, equityCurve, b.cfg.Settings.InitialCapital)
	b.progress.set(progressDone)

	b.cfg.Logger.Info().Msgf("backtest complete: %d trades, net profit %.2f (%.2f%%)",
		results.TotalTrades, results.NetProfit, results.NetProfitPct)

	return results, nil
}
