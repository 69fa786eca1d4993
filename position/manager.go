package position

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/dnldd/chimera/confluence"
	"github.com/dnldd/chimera/shared"
	"github.com/rs/zerolog"
)

// State represents the state of the position manager.
type State int

const (
	Flat State = iota
	InPosition
)

// String stringifies the provided state.
func (s State) String() string {
	switch s {
	case Flat:
		return "flat"
	case InPosition:
		return "in position"
	default:
		return "unknown"
	}
}

// ManagerConfig represents the position manager configuration.
type ManagerConfig struct {
	// Settings represents the account and execution settings.
	Settings *shared.BacktestSettings
	// Log records the provided artifact. It is optional.
	Log func(name string, data any)
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *ManagerConfig) Validate() error {
	var errs error

	if cfg.Settings == nil {
		errs = errors.Join(errs, fmt.Errorf("settings cannot be nil"))
	} else {
		err := cfg.Settings.Validate()
		if err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Manager manages a single position through its lifecycle and tracks the
// resulting equity. At most one position is open at a time.
type Manager struct {
	cfg         *ManagerConfig
	equity      float64
	position    *Position
	trades      []Trade
	equityCurve []float64
}

// NewManager initializes a new position manager.
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating position manager config: %w", err)
	}

	return &Manager{
		cfg:         cfg,
		equity:      cfg.Settings.InitialCapital,
		trades:      []Trade{},
		equityCurve: []float64{cfg.Settings.InitialCapital},
	}, nil
}

// State returns the current state of the manager.
func (m *Manager) State() State {
	if m.position != nil {
		return InPosition
	}

	return Flat
}

// Position returns the open position, if any.
func (m *Manager) Position() *Position {
	return m.position
}

// Equity returns the realized equity.
func (m *Manager) Equity() float64 {
	return m.equity
}

// EquityCurve returns the recorded equity readings.
func (m *Manager) EquityCurve() []float64 {
	return slices.Clone(m.equityCurve)
}

// Trades returns the closed trades.
func (m *Manager) Trades() []Trade {
	return slices.Clone(m.trades)
}

// RecordEquity appends the current realized equity to the equity curve.
func (m *Manager) RecordEquity() {
	m.equityCurve = append(m.equityCurve, m.equity)
}

// slip applies the configured slippage against the trader to a market fill.
func (m *Manager) slip(price float64, direction shared.Direction, entry bool) float64 {
	pct := m.cfg.Settings.SlippagePercent / 100
	buying := (direction == shared.Long) == entry
	if buying {
		return price * (1 + pct)
	}

	return price * (1 - pct)
}

// fee calculates the fee of a fill at the provided percentage.
func fee(price float64, size float64, pct float64) float64 {
	return math.Abs(price*size) * (pct / 100)
}

// Step resolves the open position against the provided candle. The position is
// closed when its stop-loss or take-profit is reached, or unconditionally at the
// candle's close when it is the last candle.
func (m *Manager) Step(candle *shared.Candlestick, last bool) (*Trade, error) {
	if m.position == nil {
		return nil, nil
	}

	pos := m.position
	settings := m.cfg.Settings

	level, reason, hit := pos.CheckExit(candle)
	var price, exitFee float64
	switch {
	case hit && reason == TakeProfitHit:
		price = level
		exitFee = fee(price, pos.Size, settings.MakerFeePercent)
	case hit:
		price = m.slip(level, pos.Direction, false)
		exitFee = fee(price, pos.Size, settings.TakerFeePercent)
	case last:
		reason = EndOfData
		price = m.slip(candle.Close, pos.Direction, false)
		exitFee = fee(price, pos.Size, settings.TakerFeePercent)
	default:
		return nil, nil
	}

	trade, err := pos.Close(price, candle.Date, reason, exitFee)
	if err != nil {
		return nil, fmt.Errorf("closing position %s: %w", pos.ID, err)
	}

	m.equity += trade.Profit
	m.trades = append(m.trades, trade)
	m.position = nil

	m.cfg.Logger.Debug().Msgf("closed %s %s at %.5f (%s), profit %.2f", trade.Direction.String(),
		trade.ID, trade.ExitPrice, trade.ExitReason.String(), trade.Profit)

	return &trade, nil
}

// Open opens a position at the candle's close if the manager is flat and the
// equity and position sizing allow it. Exits are derived from the provided ATR and
// the side's risk rules.
func (m *Manager) Open(direction shared.Direction, candle *shared.Candlestick, atr float64, rules *shared.RiskManagement, zones []confluence.Zone) (*Position, bool) {
	if m.position != nil {
		return nil, false
	}

	settings := m.cfg.Settings
	quote := settings.Sizing.Value
	if settings.Sizing.Kind == shared.PercentageOfEquity {
		quote = m.equity * (settings.Sizing.Value / 100)
	}
	if m.equity <= 0 || quote <= 0 {
		return nil, false
	}

	entry := m.slip(candle.Close, direction, true)
	size := quote / entry
	id := fmt.Sprintf("trade-%d", len(m.trades)+1)

	setup, ok := ComputeRisk(direction, entry, atr, rules, zones)
	if !ok {
		m.cfg.Logger.Debug().Msgf("no atr available for %s, opening without exits", id)
	}
	if m.cfg.Log != nil {
		m.cfg.Log(fmt.Sprintf("risk_setup_%s", id), &setup)
	}

	m.position = &Position{
		ID:         id,
		Direction:  direction,
		EntryPrice: entry,
		EntryDate:  candle.Date,
		Size:       size,
		StopLoss:   setup.StopLoss,
		TakeProfit: setup.TakeProfit,
		EntryFee:   fee(entry, size, settings.TakerFeePercent),
	}

	m.cfg.Logger.Debug().Msgf("opened %s %s at %.5f, size %.8f", direction.String(), id, entry, size)

	return m.position, true
}
