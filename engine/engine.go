package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dnldd/chimera/confluence"
	"github.com/dnldd/chimera/market"
	"github.com/dnldd/chimera/shared"
	"github.com/rs/zerolog"
)

// CheckLocationalCondition determines whether the candle's entry side extreme sits
// inside a qualifying zone. The low is checked against support zones for longs and
// the high against resistance zones for shorts. A disabled condition always holds.
func CheckLocationalCondition(direction shared.Direction, candle *market.EnrichedCandle, cond *shared.LocationalCondition, zones []confluence.Zone) bool {
	if !cond.Enabled {
		return true
	}

	price := candle.Low
	required := shared.SupportZone
	if direction == shared.Short {
		price = candle.High
		required = shared.ResistanceZone
	}

	for idx := range zones {
		zone := &zones[idx]
		if zone.Kind == required && zone.Score >= cond.MinScore && zone.Contains(price) {
			return true
		}
	}

	return false
}

// compare applies the filter's operator to the provided reading.
func compare(actual shared.Value, filter *shared.ContextualFilter) bool {
	switch filter.Operator {
	case shared.GreaterThan, shared.LessThan:
		got, ok := actual.Float()
		if !ok {
			return false
		}
		want, ok := filter.Value.Float()
		if !ok {
			return false
		}
		if filter.Operator == shared.GreaterThan {
			return got > want
		}
		return got < want

	case shared.Equal:
		return actual.String() == filter.Value.String()
	case shared.NotEqual:
		return actual.String() != filter.Value.String()
	case shared.Contains:
		return strings.Contains(actual.String(), filter.Value.String())
	case shared.NotContains:
		return !strings.Contains(actual.String(), filter.Value.String())
	default:
		return false
	}
}

// CheckEntryConditions determines whether every contextual filter holds against the
// provided snapshot. An empty filter set never holds, and neither does a filter
// whose reading is unavailable.
func CheckEntryConditions(filters []shared.ContextualFilter, snapshot *market.Snapshot) bool {
	if len(filters) == 0 || snapshot == nil {
		return false
	}

	for idx := range filters {
		actual, ok := snapshot.Value(filters[idx].Indicator, filters[idx].Parameter)
		if !ok {
			return false
		}
		if !compare(actual, &filters[idx]) {
			return false
		}
	}

	return true
}

// Evaluate determines the entry signal of the candle. The long side is evaluated
// before the short side and takes priority when both qualify.
func Evaluate(strategy *shared.StrategyConfig, candle *market.EnrichedCandle, zones []confluence.Zone) (shared.Direction, bool) {
	for _, direction := range []shared.Direction{shared.Long, shared.Short} {
		side := strategy.Side(direction)
		if !side.Enabled {
			continue
		}
		if !CheckLocationalCondition(direction, candle, &side.Locational, zones) {
			continue
		}
		if CheckEntryConditions(side.Filters, candle.Indicators) {
			return direction, true
		}
	}

	return 0, false
}

// EngineConfig represents the strategy engine configuration.
type EngineConfig struct {
	// Strategy is the strategy evaluated against each candle.
	Strategy *shared.StrategyConfig
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *EngineConfig) Validate() error {
	var errs error

	if cfg.Strategy == nil {
		errs = errors.Join(errs, fmt.Errorf("strategy cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Engine evaluates entry signals for a strategy.
type Engine struct {
	cfg *EngineConfig
}

// NewEngine initializes a new strategy engine.
func NewEngine(cfg *EngineConfig) (*Engine, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating engine config: %w", err)
	}

	return &Engine{cfg: cfg}, nil
}

// Evaluate determines the entry signal of the provided candle against the zones
// active at its time.
func (e *Engine) Evaluate(candle *market.EnrichedCandle, zones []confluence.Zone) (shared.Direction, bool) {
	direction, ok := Evaluate(e.cfg.Strategy, candle, zones)
	if ok {
		e.cfg.Logger.Debug().Msgf("%s entry signal at %s (close %.5f, %d zones)",
			direction.String(), candle.Date.UTC().Format(shared.DateLayout), candle.Close, len(zones))
	}

	return direction, ok
}
