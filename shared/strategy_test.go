package shared

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
)

func TestParseStrategyConfig(t *testing.T) {
	data, err := os.ReadFile("../testdata/strategy.json")
	assert.NoError(t, err)

	// Ensure the strategy fixture can be parsed.
	cfg, err := ParseStrategyConfig(data)
	assert.NoError(t, err)

	want := &StrategyConfig{
		Name:      "Momentum Long",
		Symbol:    "ETHUSDT",
		Timeframe: OneHour,
		Long: StrategySide{
			Enabled: true,
			Filters: []ContextualFilter{
				{
					ID:        "rsi-defined",
					Indicator: Momentum,
					Parameter: "rsi",
					Operator:  GreaterThan,
					Value:     NumberValue(0),
				},
			},
			Risk: RiskManagement{
				StopLoss:   StopLossRule{Kind: StopLossPercentage, Value: 2},
				TakeProfit: TakeProfitRule{Kind: TakeProfitRiskReward, Value: 1.5},
			},
		},
		Short: StrategySide{
			Enabled: false,
			Locational: LocationalCondition{
				Enabled:  true,
				ZoneType: ResistanceZone,
				MinScore: 1.5,
			},
			Filters: []ContextualFilter{
				{
					ID:        "chop",
					Indicator: Chimera,
					Parameter: "regime",
					Operator:  Contains,
					Value:     TextValue("Chop"),
				},
			},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("strategy mismatch (-want +got):\n%s", diff)
	}

	// Ensure the side accessor resolves directions.
	assert.Equal(t, cfg.Side(Long).Enabled, true)
	assert.Equal(t, cfg.Side(Short).Enabled, false)
}

func TestParseStrategyConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "invalid json",
			doc:  `{"strategyName":`,
		},
		{
			name: "unknown timeframe",
			doc:  `{"asset":{"timeframe":"2h"}}`,
		},
		{
			name: "unknown indicator",
			doc: `{"long_strategy":{"enabled":true,"contextual_filters":[
				{"id":"x","indicator":"MACD","parameter":"hist","operator":">","value":0}]}}`,
		},
		{
			name: "unknown operator",
			doc: `{"long_strategy":{"enabled":true,"contextual_filters":[
				{"id":"x","indicator":"Momentum","parameter":"rsi","operator":">=","value":0}]}}`,
		},
		{
			name: "unknown zone type",
			doc:  `{"short_strategy":{"locational_condition":{"enabled":true,"type":"pivot"}}}`,
		},
		{
			name: "unknown stop loss type",
			doc: `{"long_strategy":{"enabled":true,"risk_management":{
				"stop_loss":{"type":"trailing","value":1},"take_profit":{"type":"percentage","value":2}}}}`,
		},
		{
			name: "unknown take profit type",
			doc: `{"long_strategy":{"enabled":true,"risk_management":{
				"stop_loss":{"type":"percentage","value":1},"take_profit":{"type":"trailing","value":2}}}}`,
		},
		{
			name: "zero stop loss percentage",
			doc: `{"long_strategy":{"enabled":true,"risk_management":{
				"stop_loss":{"type":"percentage","value":0},"take_profit":{"type":"percentage","value":2}}}}`,
		},
		{
			name: "negative stop loss atr multiple",
			doc: `{"short_strategy":{"enabled":true,"risk_management":{
				"stop_loss":{"type":"atr_multiple","value":-1.5},"take_profit":{"type":"risk_reward_ratio","value":2}}}}`,
		},
		{
			name: "missing stop loss value",
			doc: `{"long_strategy":{"enabled":true,"risk_management":{
				"stop_loss":{"type":"percentage"},"take_profit":{"type":"percentage","value":2}}}}`,
		},
		{
			name: "negative take profit ratio",
			doc: `{"long_strategy":{"enabled":true,"risk_management":{
				"stop_loss":{"type":"percentage","value":1},"take_profit":{"type":"risk_reward_ratio","value":-2}}}}`,
		},
		{
			name: "unknown zone target",
			doc: `{"long_strategy":{"enabled":true,"risk_management":{
				"stop_loss":{"type":"percentage","value":1},"take_profit":{"type":"confluence_zone","value":"edge"}}}}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseStrategyConfig([]byte(test.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseConfluenceZoneTarget(t *testing.T) {
	doc := `{"long_strategy":{"enabled":true,"risk_management":{
		"stop_loss":{"type":"atr_multiple","value":1.5},
		"take_profit":{"type":"confluence_zone","value":"farthest_edge"}}}}`

	// Ensure confluence zone targets keep their edge.
	cfg, err := ParseStrategyConfig([]byte(doc))
	assert.NoError(t, err)
	assert.Equal(t, cfg.Long.Risk.StopLoss, StopLossRule{Kind: StopLossATRMultiple, Value: 1.5})
	assert.Equal(t, cfg.Long.Risk.TakeProfit.Kind, TakeProfitConfluenceZone)
	assert.Equal(t, cfg.Long.Risk.TakeProfit.Target, FarthestEdge)
	assert.Equal(t, cfg.Timeframe, OneHour)
}
