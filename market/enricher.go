package market

import (
	"errors"
	"fmt"
	"math"

	"github.com/dnldd/chimera/indicator"
	"github.com/dnldd/chimera/shared"
	"github.com/rs/zerolog"
)

const (
	// DefaultWarmup is the number of leading candles left without indicator snapshots.
	DefaultWarmup = 200
	// DefaultYieldEvery is the number of candles enriched between yield points.
	DefaultYieldEvery = 20

	emaFastPeriod      = 50
	emaSlowPeriod      = 200
	rsiPeriod          = 14
	adxPeriod          = 14
	bandPeriod         = 20
	bandMultiplier     = 2
	atrPeriod          = 20
	ferPeriod          = 14
	vdrPeriod          = 14
	hvRankLookback     = 100
	hvnWindow          = 200
	relativePerfWindow = 20
	relativePerfDiff   = 1
	correlationWindow  = 20
	divergenceLookback = 20
	tenkanPeriod       = 9
	kijunPeriod        = 26
	senkouBPeriod      = 52

	squeezeDetected = "SQUEEZE_DETECTED"
	noSqueeze       = "No Squeeze"
)

// EnrichAt derives the indicator snapshot of the candle at the provided index using
// only the candles up to and including it. The reference series is only considered
// when it is aligned with the candles.
func EnrichAt(candles []shared.Candlestick, reference []shared.Candlestick, i int) *Snapshot {
	prefix := candles[: i+1 : i+1]
	closes := shared.Closes(prefix)
	highs := shared.Highs(prefix)
	lows := shared.Lows(prefix)
	volumes := shared.Volumes(prefix)

	rsi := indicator.RSI(closes, rsiPeriod)
	adx := indicator.ADX(highs, lows, closes, adxPeriod).ADX
	bb := indicator.BollingerBands(closes, bandPeriod, bandMultiplier)
	kc := indicator.KeltnerChannels(highs, lows, closes, bandPeriod, bandMultiplier)
	atr := indicator.ATR(highs, lows, closes, atrPeriod)

	s := &Snapshot{
		EMA50:   indicator.LastOrNull(indicator.EMA(closes, emaFastPeriod)),
		EMA200:  indicator.LastOrNull(indicator.EMA(closes, emaSlowPeriod)),
		RSI14:   indicator.LastOrNull(rsi),
		ADX14:   indicator.LastOrNull(adx),
		BBWidth: indicator.LastOrNull(bb.Bandwidth),
		VPE:     indicator.LastOrNull(indicator.VolatilityPotentialEnergy(bb.Bandwidth, adx)),
		ATR20:   indicator.LastOrNull(atr),
		FER:     indicator.LastOrNull(indicator.FractalEfficiencyRatio(prefix, ferPeriod)),
		VDR:     indicator.LastOrNull(indicator.VWAPDeviationRatio(prefix, vdrPeriod)),
		MFIV:    indicator.LastOrNull(indicator.MomentumFlowIndex(rsi, adx)),
		OBV:     indicator.LastOrNull(indicator.OBV(closes, volumes)),
	}

	s.HVRank = math.NaN()
	if rank, ok := indicator.HistoricalVolatilityRank(atr, hvRankLookback); ok {
		s.HVRank = rank
	}

	s.CVD = math.NaN()
	if cvd, ok := indicator.CVD(prefix); ok {
		s.CVD = cvd
	}

	s.HVNStatus = indicator.Indeterminate
	if len(prefix) >= hvnWindow {
		window := prefix[len(prefix)-hvnWindow:]
		first := indicator.VolumeProfile(window[:hvnWindow/2], indicator.DefaultProfileBins)
		second := indicator.VolumeProfile(window[hvnWindow/2:], indicator.DefaultProfileBins)
		s.HVNStatus = indicator.HVNMigration(first.POC, second.POC)
	}

	s.RelativePerformance = indicator.NotApplicable
	s.Correlation = math.NaN()
	s.CorrelationLabel = indicator.NotApplicable
	if len(reference) == len(candles) {
		refCloses := shared.Closes(reference[:i+1])
		s.RelativePerformance = indicator.RelativePerformance(closes, refCloses,
			relativePerfWindow, relativePerfDiff)

		if len(closes) > correlationWindow {
			returns := indicator.Returns(closes[len(closes)-correlationWindow-1:])
			refReturns := indicator.Returns(refCloses[len(refCloses)-correlationWindow-1:])
			if coefficient, ok := indicator.PearsonCorrelation(returns, refReturns); ok {
				s.Correlation = coefficient
				s.CorrelationLabel = indicator.CorrelationInterpretation(coefficient)
			}
		}
	}

	s.SqueezeStatus = noSqueeze
	if indicator.Squeeze(bb, kc) {
		s.SqueezeStatus = squeezeDetected
	}

	s.Divergence = indicator.Divergence(closes, rsi, "RSI", divergenceLookback)

	s.Regime = indicator.RegimeFilter(s.ADX14, s.BBWidth, s.FER, s.EMA50, s.EMA200, bb.Bandwidth)

	cloud := indicator.Ichimoku(highs, lows, tenkanPeriod, kijunPeriod, senkouBPeriod)
	profile := indicator.VolumeProfile(prefix, indicator.DefaultProfileBins)
	s.StructuralScore = QuantitativeScore(ScoreInputs{
		Bullish:             s.EMA50 > s.EMA200,
		IchimokuTrend:       indicator.CloudTrend(cloud, closes[len(closes)-1]),
		ProfilePosition:     profile.Position,
		RSI:                 s.RSI14,
		VDR:                 s.VDR,
		RelativePerformance: s.RelativePerformance,
	}, s.Regime)
	s.CompositeScore = s.StructuralScore

	return s
}

// EnricherConfig represents the chronological enricher configuration.
type EnricherConfig struct {
	// Candles is the primary candle series to enrich.
	Candles []shared.Candlestick
	// Reference is the optional reference asset series aligned with the candles.
	Reference []shared.Candlestick
	// Warmup is the number of leading candles left without snapshots.
	Warmup int
	// YieldEvery is the number of candles enriched between yield points.
	YieldEvery int
	// Progress reports the fraction of candles enriched, in [0, 1].
	Progress func(fraction float64)
	// Yield is called at every yield point. A returned error stops enrichment.
	Yield func() error
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *EnricherConfig) Validate() error {
	var errs error

	if len(cfg.Candles) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no candles provided for enrichment"))
	}
	if cfg.Warmup < 0 {
		errs = errors.Join(errs, fmt.Errorf("warmup cannot be negative"))
	}
	if cfg.YieldEvery <= 0 {
		errs = errors.Join(errs, fmt.Errorf("yield interval must be greater than zero"))
	}
	if cfg.Progress == nil {
		errs = errors.Join(errs, fmt.Errorf("progress function cannot be nil"))
	}
	if cfg.Yield == nil {
		errs = errors.Join(errs, fmt.Errorf("yield function cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Enricher attaches point-in-time indicator snapshots to a candle series.
type Enricher struct {
	cfg *EnricherConfig
}

// NewEnricher initializes a new chronological enricher.
func NewEnricher(cfg *EnricherConfig) (*Enricher, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating enricher config: %w", err)
	}

	return &Enricher{cfg: cfg}, nil
}

// Enrich derives the snapshot of every candle past the warm-up period, each from its
// own prefix of the series.
func (e *Enricher) Enrich() ([]EnrichedCandle, error) {
	candles := e.cfg.Candles
	if len(e.cfg.Reference) > 0 && len(e.cfg.Reference) != len(candles) {
		e.cfg.Logger.Info().Msgf("reference series has %d candles against %d, "+
			"reference readings will be unavailable", len(e.cfg.Reference), len(candles))
	}

	enriched := make([]EnrichedCandle, len(candles))
	for idx := range candles {
		enriched[idx].Candlestick = candles[idx]
		if idx < e.cfg.Warmup {
			continue
		}

		enriched[idx].Indicators = EnrichAt(candles, e.cfg.Reference, idx)

		if idx%e.cfg.YieldEvery == 0 {
			e.cfg.Progress(float64(idx) / float64(len(candles)))
			err := e.cfg.Yield()
			if err != nil {
				return nil, err
			}
		}
	}

	e.cfg.Logger.Debug().Msgf("enriched %d of %d candles",
		max(0, len(candles)-e.cfg.Warmup), len(candles))

	return enriched, nil
}
