package engine

import (
	"math"
	"testing"
	"time"

	"github.com/dnldd/chimera/confluence"
	"github.com/dnldd/chimera/indicator"
	"github.com/dnldd/chimera/market"
	"github.com/dnldd/chimera/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog/log"
)

func testCandle(snapshot *market.Snapshot) *market.EnrichedCandle {
	return &market.EnrichedCandle{
		Candlestick: shared.Candlestick{
			Open:   101,
			High:   104,
			Low:    99.5,
			Close:  102,
			Volume: 1000,
			Date:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Indicators: snapshot,
	}
}

func testSnapshot() *market.Snapshot {
	return &market.Snapshot{
		RSI14:               62,
		ADX14:               math.NaN(),
		CompositeScore:      0.4,
		StructuralScore:     0.4,
		Regime:              indicator.DevelopingBullishTrend,
		RelativePerformance: "Neutral",
		SqueezeStatus:       "No Squeeze",
	}
}

func testZones() []confluence.Zone {
	return []confluence.Zone{
		{Low: 99, High: 100, Score: 2.5, Kind: shared.SupportZone},
		{Low: 103.5, High: 104.5, Score: 1.2, Kind: shared.ResistanceZone},
	}
}

func TestCheckLocationalCondition(t *testing.T) {
	candle := testCandle(nil)
	zones := testZones()

	tests := []struct {
		name      string
		direction shared.Direction
		cond      shared.LocationalCondition
		zones     []confluence.Zone
		want      bool
	}{
		{
			name:      "disabled condition",
			direction: shared.Long,
			cond:      shared.LocationalCondition{Enabled: false},
			zones:     nil,
			want:      true,
		},
		{
			name:      "long low inside support",
			direction: shared.Long,
			cond:      shared.LocationalCondition{Enabled: true, ZoneType: shared.SupportZone, MinScore: 2},
			zones:     zones,
			want:      true,
		},
		{
			name:      "support score below minimum",
			direction: shared.Long,
			cond:      shared.LocationalCondition{Enabled: true, ZoneType: shared.SupportZone, MinScore: 3},
			zones:     zones,
			want:      false,
		},
		{
			name:      "short high inside resistance",
			direction: shared.Short,
			cond:      shared.LocationalCondition{Enabled: true, ZoneType: shared.ResistanceZone, MinScore: 1},
			zones:     zones,
			want:      true,
		},
		{
			name:      "short high outside resistance",
			direction: shared.Short,
			cond:      shared.LocationalCondition{Enabled: true, ZoneType: shared.ResistanceZone, MinScore: 1},
			zones:     zones[:1],
			want:      false,
		},
		{
			name:      "no zones",
			direction: shared.Long,
			cond:      shared.LocationalCondition{Enabled: true, ZoneType: shared.SupportZone},
			zones:     nil,
			want:      false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := CheckLocationalCondition(test.direction, candle, &test.cond, test.zones)
			assert.Equal(t, got, test.want)
		})
	}
}

func TestCheckEntryConditions(t *testing.T) {
	filter := func(kind shared.IndicatorKind, parameter string, op shared.Operator, value shared.Value) shared.ContextualFilter {
		return shared.ContextualFilter{
			ID:        "f",
			Indicator: kind,
			Parameter: parameter,
			Operator:  op,
			Value:     value,
		}
	}

	tests := []struct {
		name     string
		filters  []shared.ContextualFilter
		snapshot *market.Snapshot
		want     bool
	}{
		{
			name:     "no filters",
			filters:  nil,
			snapshot: testSnapshot(),
			want:     false,
		},
		{
			name: "no snapshot",
			filters: []shared.ContextualFilter{
				filter(shared.Momentum, "rsi", shared.GreaterThan, shared.NumberValue(50)),
			},
			snapshot: nil,
			want:     false,
		},
		{
			name: "numeric comparisons hold",
			filters: []shared.ContextualFilter{
				filter(shared.Momentum, "rsi", shared.GreaterThan, shared.NumberValue(50)),
				filter(shared.QuantitativeScore, "composite_score", shared.LessThan, shared.TextValue("0.5")),
			},
			snapshot: testSnapshot(),
			want:     true,
		},
		{
			name: "one failing filter",
			filters: []shared.ContextualFilter{
				filter(shared.Momentum, "rsi", shared.GreaterThan, shared.NumberValue(50)),
				filter(shared.Momentum, "rsi", shared.LessThan, shared.NumberValue(60)),
			},
			snapshot: testSnapshot(),
			want:     false,
		},
		{
			name: "undefined reading fails closed",
			filters: []shared.ContextualFilter{
				filter(shared.Momentum, "adx", shared.LessThan, shared.NumberValue(100)),
			},
			snapshot: testSnapshot(),
			want:     false,
		},
		{
			name: "unknown parameter fails closed",
			filters: []shared.ContextualFilter{
				filter(shared.Chimera, "unknown", shared.NotEqual, shared.TextValue("x")),
			},
			snapshot: testSnapshot(),
			want:     false,
		},
		{
			name: "textual comparisons hold",
			filters: []shared.ContextualFilter{
				filter(shared.CRF, "regime", shared.Contains, shared.TextValue("Bullish")),
				filter(shared.CRF, "regime", shared.NotContains, shared.TextValue("Range")),
				filter(shared.Volatility, "keltner_channels_squeeze", shared.Equal, shared.TextValue("No Squeeze")),
				filter(shared.ReferenceCorrelation, "relative_performance", shared.NotEqual, shared.TextValue("Underperforming BTC")),
			},
			snapshot: testSnapshot(),
			want:     true,
		},
		{
			name: "numbers compare textually for equality",
			filters: []shared.ContextualFilter{
				filter(shared.Momentum, "rsi", shared.Equal, shared.TextValue("62")),
			},
			snapshot: testSnapshot(),
			want:     true,
		},
		{
			name: "labels never satisfy numeric comparisons",
			filters: []shared.ContextualFilter{
				filter(shared.CRF, "regime", shared.GreaterThan, shared.NumberValue(0)),
			},
			snapshot: testSnapshot(),
			want:     false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, CheckEntryConditions(test.filters, test.snapshot), test.want)
		})
	}
}

func TestEvaluate(t *testing.T) {
	rsiAbove := shared.ContextualFilter{
		ID:        "rsi-above",
		Indicator: shared.Momentum,
		Parameter: "rsi",
		Operator:  shared.GreaterThan,
		Value:     shared.NumberValue(50),
	}
	strategy := &shared.StrategyConfig{
		Name: "both sides",
		Long: shared.StrategySide{
			Enabled: true,
			Locational: shared.LocationalCondition{
				Enabled:  true,
				ZoneType: shared.SupportZone,
				MinScore: 1,
			},
			Filters: []shared.ContextualFilter{rsiAbove},
		},
		Short: shared.StrategySide{
			Enabled: true,
			Filters: []shared.ContextualFilter{rsiAbove},
		},
	}
	candle := testCandle(testSnapshot())

	// Ensure the long side takes priority when both sides qualify.
	direction, ok := Evaluate(strategy, candle, testZones())
	assert.True(t, ok)
	assert.Equal(t, direction, shared.Long)

	// Ensure the short side is used when the long locational condition fails.
	direction, ok = Evaluate(strategy, candle, nil)
	assert.True(t, ok)
	assert.Equal(t, direction, shared.Short)

	// Ensure disabled sides are never signalled.
	strategy.Short.Enabled = false
	_, ok = Evaluate(strategy, candle, nil)
	assert.False(t, ok)

	// Ensure warm-up candles are never signalled.
	_, ok = Evaluate(strategy, testCandle(nil), testZones())
	assert.False(t, ok)

	// Ensure the engine wraps evaluation.
	_, err := NewEngine(&EngineConfig{})
	assert.Error(t, err)

	engine, err := NewEngine(&EngineConfig{Strategy: strategy, Logger: &log.Logger})
	assert.NoError(t, err)
	direction, ok = engine.Evaluate(candle, testZones())
	assert.True(t, ok)
	assert.Equal(t, direction, shared.Long)
}
