package shared

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// IndicatorKind represents the family of indicators a contextual filter reads from.
type IndicatorKind int

const (
	QuantitativeScore IndicatorKind = iota
	CRF
	VPE
	Volatility
	ReferenceCorrelation
	HVNMigration
	Chimera
	Momentum
	VolumeFlow
)

// String stringifies the provided indicator kind.
func (k IndicatorKind) String() string {
	switch k {
	case QuantitativeScore:
		return "Quantitative Score"
	case CRF:
		return "CRF"
	case VPE:
		return "VPE"
	case Volatility:
		return "Volatility"
	case ReferenceCorrelation:
		return "BTC Correlation"
	case HVNMigration:
		return "HVN Migration"
	case Chimera:
		return "Chimera"
	case Momentum:
		return "Momentum"
	case VolumeFlow:
		return "Volume Flow"
	default:
		return "unknown"
	}
}

// ParseIndicatorKind parses the provided indicator name.
func ParseIndicatorKind(s string) (IndicatorKind, error) {
	switch s {
	case "Quantitative Score":
		return QuantitativeScore, nil
	case "CRF":
		return CRF, nil
	case "VPE":
		return VPE, nil
	case "Volatility":
		return Volatility, nil
	case "BTC Correlation", "Reference Correlation":
		return ReferenceCorrelation, nil
	case "HVN Migration":
		return HVNMigration, nil
	case "Chimera":
		return Chimera, nil
	case "Momentum":
		return Momentum, nil
	case "Volume Flow":
		return VolumeFlow, nil
	default:
		return 0, fmt.Errorf("unknown indicator provided: %q", s)
	}
}

// Operator represents a contextual filter comparison.
type Operator int

const (
	GreaterThan Operator = iota
	LessThan
	Equal
	NotEqual
	Contains
	NotContains
)

// String stringifies the provided operator.
func (o Operator) String() string {
	switch o {
	case GreaterThan:
		return ">"
	case LessThan:
		return "<"
	case Equal:
		return "="
	case NotEqual:
		return "!="
	case Contains:
		return "contains"
	case NotContains:
		return "does not contain"
	default:
		return "unknown"
	}
}

// ParseOperator parses the provided comparison operator.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case ">":
		return GreaterThan, nil
	case "<":
		return LessThan, nil
	case "=", "==":
		return Equal, nil
	case "!=":
		return NotEqual, nil
	case "contains":
		return Contains, nil
	case "does not contain":
		return NotContains, nil
	default:
		return 0, fmt.Errorf("unknown operator provided: %q", s)
	}
}

// StopLossKind represents how a stop-loss distance is derived.
type StopLossKind int

const (
	StopLossPercentage StopLossKind = iota
	StopLossATRMultiple
)

// TakeProfitKind represents how a take-profit target is derived.
type TakeProfitKind int

const (
	TakeProfitPercentage TakeProfitKind = iota
	TakeProfitATRMultiple
	TakeProfitRiskReward
	TakeProfitConfluenceZone
)

// String stringifies the provided take-profit kind.
func (k TakeProfitKind) String() string {
	switch k {
	case TakeProfitPercentage:
		return "percentage"
	case TakeProfitATRMultiple:
		return "atr_multiple"
	case TakeProfitRiskReward:
		return "risk_reward_ratio"
	case TakeProfitConfluenceZone:
		return "confluence_zone"
	default:
		return "unknown"
	}
}

// String stringifies the provided stop-loss kind.
func (k StopLossKind) String() string {
	switch k {
	case StopLossPercentage:
		return "percentage"
	case StopLossATRMultiple:
		return "atr_multiple"
	default:
		return "unknown"
	}
}

// ZoneTarget represents the edge of a confluence zone used as a take-profit.
type ZoneTarget int

const (
	NearestEdge ZoneTarget = iota
	FarthestEdge
	MiddleOfZone
)

// String stringifies the provided zone target.
func (z ZoneTarget) String() string {
	switch z {
	case NearestEdge:
		return "nearest_edge"
	case FarthestEdge:
		return "farthest_edge"
	case MiddleOfZone:
		return "middle_of_zone"
	default:
		return "unknown"
	}
}

// StopLossRule represents the stop-loss configuration of a strategy side.
type StopLossRule struct {
	Kind  StopLossKind
	Value float64
}

// TakeProfitRule represents the take-profit configuration of a strategy side.
type TakeProfitRule struct {
	Kind   TakeProfitKind
	Value  float64
	Target ZoneTarget
}

// RiskManagement represents the exit configuration of a strategy side.
type RiskManagement struct {
	StopLoss   StopLossRule
	TakeProfit TakeProfitRule
}

// LocationalCondition requires price to be inside a scored confluence zone.
type LocationalCondition struct {
	Enabled  bool
	ZoneType ZoneKind
	MinScore float64
}

// ContextualFilter represents a single indicator comparison.
type ContextualFilter struct {
	ID        string
	Indicator IndicatorKind
	Parameter string
	Operator  Operator
	Value     Value
}

// StrategySide represents the entry and exit rules for one direction.
type StrategySide struct {
	Enabled    bool
	Locational LocationalCondition
	Filters    []ContextualFilter
	Risk       RiskManagement
}

// StrategyConfig represents a fully formed strategy.
type StrategyConfig struct {
	Name      string
	Symbol    string
	Timeframe Timeframe
	Long      StrategySide
	Short     StrategySide
}

// Side returns the strategy side for the provided direction.
func (s *StrategyConfig) Side(direction Direction) *StrategySide {
	if direction == Short {
		return &s.Short
	}

	return &s.Long
}

// parseZoneKind parses the provided zone type.
func parseZoneKind(s string) (ZoneKind, error) {
	switch s {
	case "support":
		return SupportZone, nil
	case "resistance":
		return ResistanceZone, nil
	default:
		return 0, fmt.Errorf("unknown zone type provided: %q", s)
	}
}

// parseValue parses a filter threshold, keeping its json type.
func parseValue(res gjson.Result) Value {
	if res.Type == gjson.Number {
		return NumberValue(res.Float())
	}

	return TextValue(res.String())
}

// parseRiskManagement parses the risk management section of a strategy side.
func parseRiskManagement(res gjson.Result) (RiskManagement, error) {
	var risk RiskManagement

	sl := res.Get("stop_loss")
	switch sl.Get("type").String() {
	case "percentage":
		risk.StopLoss.Kind = StopLossPercentage
	case "atr_multiple":
		risk.StopLoss.Kind = StopLossATRMultiple
	default:
		return risk, fmt.Errorf("unknown stop loss type provided: %q", sl.Get("type").String())
	}
	risk.StopLoss.Value = sl.Get("value").Float()
	if risk.StopLoss.Value <= 0 {
		return risk, fmt.Errorf("stop loss value must be greater than zero, got %v", risk.StopLoss.Value)
	}

	tp := res.Get("take_profit")
	switch tp.Get("type").String() {
	case "percentage":
		risk.TakeProfit.Kind = TakeProfitPercentage
	case "atr_multiple":
		risk.TakeProfit.Kind = TakeProfitATRMultiple
	case "risk_reward_ratio":
		risk.TakeProfit.Kind = TakeProfitRiskReward
	case "confluence_zone":
		risk.TakeProfit.Kind = TakeProfitConfluenceZone
		switch tp.Get("value").String() {
		case "nearest_edge":
			risk.TakeProfit.Target = NearestEdge
		case "farthest_edge":
			risk.TakeProfit.Target = FarthestEdge
		case "middle_of_zone":
			risk.TakeProfit.Target = MiddleOfZone
		default:
			return risk, fmt.Errorf("unknown confluence zone target provided: %q", tp.Get("value").String())
		}
		return risk, nil
	default:
		return risk, fmt.Errorf("unknown take profit type provided: %q", tp.Get("type").String())
	}
	risk.TakeProfit.Value = tp.Get("value").Float()
	if risk.TakeProfit.Value <= 0 {
		return risk, fmt.Errorf("take profit value must be greater than zero, got %v", risk.TakeProfit.Value)
	}

	return risk, nil
}

// parseStrategySide parses a long or short strategy section.
func parseStrategySide(res gjson.Result) (StrategySide, error) {
	var side StrategySide
	if !res.Exists() {
		return side, nil
	}

	side.Enabled = res.Get("enabled").Bool()

	loc := res.Get("locational_condition")
	side.Locational.Enabled = loc.Get("enabled").Bool()
	if side.Locational.Enabled {
		kind, err := parseZoneKind(loc.Get("type").String())
		if err != nil {
			return side, err
		}
		side.Locational.ZoneType = kind
		side.Locational.MinScore = loc.Get("min_score").Float()
	}

	filters := res.Get("contextual_filters").Array()
	side.Filters = make([]ContextualFilter, 0, len(filters))
	for idx := range filters {
		indicator, err := ParseIndicatorKind(filters[idx].Get("indicator").String())
		if err != nil {
			return side, fmt.Errorf("filter %d: %w", idx, err)
		}
		operator, err := ParseOperator(filters[idx].Get("operator").String())
		if err != nil {
			return side, fmt.Errorf("filter %d: %w", idx, err)
		}

		side.Filters = append(side.Filters, ContextualFilter{
			ID:        filters[idx].Get("id").String(),
			Indicator: indicator,
			Parameter: filters[idx].Get("parameter").String(),
			Operator:  operator,
			Value:     parseValue(filters[idx].Get("value")),
		})
	}

	if !side.Enabled {
		return side, nil
	}

	risk, err := parseRiskManagement(res.Get("risk_management"))
	if err != nil {
		return side, err
	}
	side.Risk = risk

	return side, nil
}

// ParseStrategyConfig parses a strategy configuration document.
func ParseStrategyConfig(data []byte) (*StrategyConfig, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("strategy config is not valid json")
	}

	b := gjson.ParseBytes(data)

	cfg := &StrategyConfig{
		Name:      b.Get("strategyName").String(),
		Symbol:    b.Get("asset.symbol").String(),
		Timeframe: OneHour,
	}

	if tf := b.Get("asset.timeframe"); tf.Exists() {
		timeframe, err := ParseTimeframe(tf.String())
		if err != nil {
			return nil, fmt.Errorf("parsing strategy timeframe: %w", err)
		}
		cfg.Timeframe = timeframe
	}

	long, err := parseStrategySide(b.Get("long_strategy"))
	if err != nil {
		return nil, fmt.Errorf("parsing long strategy: %w", err)
	}
	cfg.Long = long

	short, err := parseStrategySide(b.Get("short_strategy"))
	if err != nil {
		return nil, fmt.Errorf("parsing short strategy: %w", err)
	}
	cfg.Short = short

	return cfg, nil
}
