package position

import (
	"encoding/json"
	"math"

	"github.com/dnldd/chimera/confluence"
	"github.com/dnldd/chimera/shared"
)

const (
	// fallbackRiskReward is the risk multiple targeted when no confluence zone
	// qualifies as a take-profit.
	fallbackRiskReward = 2.0
)

// RiskSetup represents the exit levels derived for an entry.
type RiskSetup struct {
	Direction  shared.Direction
	EntryPrice float64
	ATR        float64
	Rules      shared.RiskManagement
	StopLoss   float64
	TakeProfit float64
	// Risk is the distance between the entry and the stop-loss.
	Risk float64
	// TargetZone is the confluence zone targeted by the take-profit, if any.
	TargetZone *confluence.Zone
	// Fallback reports whether a zone target fell back to the risk-reward target.
	Fallback bool
}

// MarshalJSON encodes the risk setup, writing unset levels as null.
func (r *RiskSetup) MarshalJSON() ([]byte, error) {
	data := map[string]any{
		"entrySignal": r.Direction,
		"entryPrice":  r.EntryPrice,
		"atrAtEntry":  shared.Nullable(r.ATR),
	}
	if math.IsNaN(r.ATR) {
		return json.Marshal(data)
	}

	data["stopLoss"] = map[string]any{
		"type":              r.Rules.StopLoss.Kind.String(),
		"value":             r.Rules.StopLoss.Value,
		"calculatedSlPrice": r.StopLoss,
	}

	takeProfit := map[string]any{
		"type":              r.Rules.TakeProfit.Kind.String(),
		"calculatedTpPrice": r.TakeProfit,
		"riskAtEntry":       r.Risk,
	}
	switch r.Rules.TakeProfit.Kind {
	case shared.TakeProfitConfluenceZone:
		takeProfit["value"] = r.Rules.TakeProfit.Target.String()
		takeProfit["targetZone"] = r.TargetZone
		takeProfit["fallback"] = r.Fallback
	default:
		takeProfit["value"] = r.Rules.TakeProfit.Value
	}
	data["takeProfit"] = takeProfit

	return json.Marshal(data)
}

// targetZone selects the nearest opposing zone beyond the entry in the trade's
// favour: the lowest resistance above a long entry or the highest support below a
// short entry.
func targetZone(direction shared.Direction, entry float64, zones []confluence.Zone) *confluence.Zone {
	var target *confluence.Zone
	for idx := range zones {
		zone := &zones[idx]
		switch direction {
		case shared.Long:
			if zone.Kind != shared.ResistanceZone || zone.Low <= entry {
				continue
			}
			if target == nil || zone.Low < target.Low {
				target = zone
			}
		case shared.Short:
			if zone.Kind != shared.SupportZone || zone.High >= entry {
				continue
			}
			if target == nil || zone.High > target.High {
				target = zone
			}
		}
	}

	return target
}

// ComputeRisk derives the stop-loss and take-profit of an entry. Exits are only
// set when the ATR at entry is defined.
func ComputeRisk(direction shared.Direction, entry float64, atr float64, rules *shared.RiskManagement, zones []confluence.Zone) (RiskSetup, bool) {
	setup := RiskSetup{
		Direction:  direction,
		EntryPrice: entry,
		ATR:        atr,
		Rules:      *rules,
		StopLoss:   math.NaN(),
		TakeProfit: math.NaN(),
		Risk:       math.NaN(),
	}
	if math.IsNaN(atr) || math.IsInf(atr, 0) {
		setup.ATR = math.NaN()
		return setup, false
	}

	sign := 1.0
	if direction == shared.Short {
		sign = -1
	}

	var stopDistance float64
	switch rules.StopLoss.Kind {
	case shared.StopLossATRMultiple:
		stopDistance = atr * rules.StopLoss.Value
	default:
		stopDistance = entry * (rules.StopLoss.Value / 100)
	}
	setup.StopLoss = entry - sign*stopDistance
	setup.Risk = math.Abs(entry - setup.StopLoss)

	switch rules.TakeProfit.Kind {
	case shared.TakeProfitRiskReward:
		setup.TakeProfit = entry + sign*setup.Risk*rules.TakeProfit.Value
	case shared.TakeProfitATRMultiple:
		setup.TakeProfit = entry + sign*atr*rules.TakeProfit.Value
	case shared.TakeProfitPercentage:
		setup.TakeProfit = entry + sign*entry*(rules.TakeProfit.Value/100)
	case shared.TakeProfitConfluenceZone:
		zone := targetZone(direction, entry, zones)
		if zone == nil {
			setup.Fallback = true
			setup.TakeProfit = entry + sign*setup.Risk*fallbackRiskReward
			break
		}

		z := *zone
		setup.TargetZone = &z
		switch rules.TakeProfit.Target {
		case shared.NearestEdge:
			setup.TakeProfit = z.Low
			if direction == shared.Short {
				setup.TakeProfit = z.High
			}
		case shared.FarthestEdge:
			setup.TakeProfit = z.High
			if direction == shared.Short {
				setup.TakeProfit = z.Low
			}
		default:
			setup.TakeProfit = z.Mid()
		}
	}

	return setup, true
}
