package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/chimera/backtest"
	"github.com/dnldd/chimera/fetch"
	"github.com/dnldd/chimera/shared"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	// progressLogStep is the minimum progress advance between progress log entries.
	progressLogStep = 10
)

// BacktestConfig represents the configuration struct for the backtest service.
type BacktestConfig struct {
	// DataFilepath is the filepath to the historical dataset.
	DataFilepath string
	// StrategyFilepath is the filepath to the strategy document.
	StrategyFilepath string
	// Settings represents the account and execution settings.
	Settings *shared.BacktestSettings
	// CompletedOnly restricts replayed higher timeframe reports to closed candles.
	CompletedOnly bool
	// Logging toggles the emission of log artifacts.
	Logging bool
	// LogDir is the directory log artifacts are written to. Artifacts are dumped
	// to the debug log when it is not set.
	LogDir string
	// ResultFilepath is the optional filepath the results are written to.
	ResultFilepath string
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Validate asserts the config sane inputs.
func (cfg *BacktestConfig) Validate() error {
	var errs error

	if cfg.DataFilepath == "" {
		errs = errors.Join(errs, fmt.Errorf("data filepath cannot be an empty string"))
	}
	if cfg.StrategyFilepath == "" {
		errs = errors.Join(errs, fmt.Errorf("strategy filepath cannot be an empty string"))
	}
	if cfg.Settings == nil {
		errs = errors.Join(errs, fmt.Errorf("settings cannot be nil"))
	} else {
		err := cfg.Settings.Validate()
		if err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if cfg.Cancel == nil {
		errs = errors.Join(errs, fmt.Errorf("context cancellation function cannot be nil"))
	}

	return errs
}

// Backtest represents a single backtest run of a strategy over a dataset.
type Backtest struct {
	cfg          *BacktestConfig
	runID        string
	dataset      *fetch.Dataset
	strategy     *shared.StrategyConfig
	backtester   *backtest.Backtester
	lastProgress float64
	logger       *zerolog.Logger
}

// loadStrategy loads the strategy document at the provided file path.
func loadStrategy(path string) (*shared.StrategyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading strategy from file with path '%s': %v", path, err)
	}

	return shared.ParseStrategyConfig(data)
}

// NewBacktest initializes a new backtest service.
func NewBacktest(cfg *BacktestConfig) (*Backtest, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating backtest config: %w", err)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	runID := uuid.NewString()
	logger := log.With().Str("service", "chimera").Str("run", runID).Logger()

	dataset, err := fetch.LoadDataset(cfg.DataFilepath)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %v", err)
	}

	strategy, err := loadStrategy(cfg.StrategyFilepath)
	if err != nil {
		return nil, fmt.Errorf("loading strategy: %v", err)
	}

	if strategy.Symbol != "" && dataset.Symbol != "" && strategy.Symbol != dataset.Symbol {
		logger.Warn().Msgf("strategy symbol %s does not match dataset symbol %s",
			strategy.Symbol, dataset.Symbol)
	}
	if _, ok := dataset.Series[strategy.Timeframe]; ok {
		dataset.Primary = strategy.Timeframe
	} else {
		logger.Warn().Msgf("dataset has no %s series, backtesting the %s series instead",
			strategy.Timeframe.String(), dataset.Primary.String())
	}

	reference := dataset.Reference
	if len(reference) > 0 && len(reference) != len(dataset.Candles()) {
		logger.Warn().Msgf("reference series has %d candles, expected %d; reference indicators disabled",
			len(reference), len(dataset.Candles()))
		reference = nil
	}

	primary, reports, err := dataset.Reports()
	if err != nil {
		return nil, fmt.Errorf("building reports: %v", err)
	}

	if cfg.Logging && cfg.LogDir != "" {
		err := os.MkdirAll(cfg.LogDir, 0o755)
		if err != nil {
			return nil, fmt.Errorf("creating log directory: %v", err)
		}
	}

	svc := &Backtest{
		cfg:      cfg,
		runID:    runID,
		dataset:  dataset,
		strategy: strategy,
		logger:   &logger,
	}

	backtesterLogger := logger.With().Str("component", "backtester").Logger()
	svc.backtester, err = backtest.NewBacktester(&backtest.BacktesterConfig{
		Strategy:       strategy,
		Settings:       cfg.Settings,
		Primary:        primary,
		Reports:        reports,
		Reference:      reference,
		Daily:          dataset.Daily(),
		CompletedOnly:  cfg.CompletedOnly,
		Progress:       svc.reportProgress,
		LoggingEnabled: cfg.Logging,
		Log:            svc.writeArtifact,
		Logger:         &backtesterLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating backtester: %v", err)
	}

	return svc, nil
}

// RunID returns the unique identifier of the run.
func (s *Backtest) RunID() string {
	return s.runID
}

// Cancel stops the backtest at its next yield point.
func (s *Backtest) Cancel() {
	s.backtester.Cancel()
}

// reportProgress logs progress in steps of progressLogStep percent.
func (s *Backtest) reportProgress(pct float64) {
	if pct < s.lastProgress+progressLogStep && pct < 100 {
		return
	}

	s.lastProgress = pct
	s.logger.Info().Msgf("backtest progress: %.0f%%", pct)
}

// artifactPath returns the file path of the named log artifact.
func (s *Backtest) artifactPath(name string) string {
	return filepath.Join(s.cfg.LogDir, fmt.Sprintf("%s_%s.json", s.runID, name))
}

// writeArtifact records the named log artifact.
func (s *Backtest) writeArtifact(name string, data any) {
	if s.cfg.LogDir == "" {
		s.logger.Debug().Msgf("%s: %s", name, spew.Sdump(data))
		return
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		s.logger.Error().Err(err).Msgf("encoding %s artifact", name)
		s.logger.Debug().Msgf("%s: %s", name, spew.Sdump(data))
		return
	}

	err = os.WriteFile(s.artifactPath(name), b, 0o644)
	if err != nil {
		s.logger.Error().Err(err).Msgf("writing %s artifact", name)
	}
}

// writeResults writes the provided results to the configured result filepath.
func (s *Backtest) writeResults(results *backtest.Results) error {
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}

	err = os.WriteFile(s.cfg.ResultFilepath, b, 0o644)
	if err != nil {
		return fmt.Errorf("writing results to file with path '%s': %w", s.cfg.ResultFilepath, err)
	}

	return nil
}

// Run executes the backtest and reports its results.
func (s *Backtest) Run(ctx context.Context) (*backtest.Results, error) {
	defer s.cfg.Cancel()

	s.logger.Info().Msgf("backtesting %q on %s %s (%d candles)", s.strategy.Name,
		s.dataset.Symbol, s.dataset.Primary.String(), len(s.dataset.Candles()))

	results, err := s.backtester.Run(ctx)
	if err != nil {
		if errors.Is(err, backtest.ErrCancelled) {
			s.logger.Warn().Msg("backtest cancelled")
		} else {
			s.logger.Error().Err(err).Msg("backtest failed")
		}
		return nil, err
	}

	s.logger.Info().
		Int("trades", results.TotalTrades).
		Float64("netProfit", results.NetProfit).
		Float64("netProfitPct", results.NetProfitPct).
		Float64("winRate", results.WinRate).
		Float64("maxDrawdownPct", results.MaxDrawdownPct).
		Msg("backtest complete")

	if s.cfg.ResultFilepath != "" {
		err := s.writeResults(results)
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
