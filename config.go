package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/dnldd/chimera/shared"
	"github.com/joho/godotenv"
)

// Config is the configuration struct for the service.
type Config struct {
	// DataFilepath is the filepath to the historical dataset.
	DataFilepath string
	// StrategyFilepath is the filepath to the strategy document.
	StrategyFilepath string
	// InitialCapital is the starting equity in quote currency.
	InitialCapital float64
	// SizingType is the position sizing type, either percentage_of_equity or fixed_amount.
	SizingType string
	// SizingValue is the position sizing percentage or quote amount.
	SizingValue float64
	// MakerFee is the maker fee percentage.
	MakerFee float64
	// TakerFee is the taker fee percentage.
	TakerFee float64
	// Slippage is the slippage percentage applied to market fills.
	Slippage float64
	// CompletedOnly restricts replayed reports to closed candles.
	CompletedOnly bool
	// Logging is the log artifact flag.
	Logging bool
	// LogDir is the directory log artifacts are written to.
	LogDir string
	// ResultFilepath is the filepath the results are written to.
	ResultFilepath string

	registeredFlags map[string]bool
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if cfg.DataFilepath == "" {
		errs = errors.Join(errs, fmt.Errorf("data filepath cannot be an empty string"))
	}
	if cfg.StrategyFilepath == "" {
		errs = errors.Join(errs, fmt.Errorf("strategy filepath cannot be an empty string"))
	}

	_, err := cfg.Settings()
	if err != nil {
		errs = errors.Join(errs, err)
	}

	return errs
}

// Settings returns the backtest settings described by the config.
func (cfg *Config) Settings() (*shared.BacktestSettings, error) {
	sizingType := cfg.SizingType
	if sizingType == "" {
		sizingType = shared.PercentageOfEquity.String()
	}

	kind, err := shared.ParseSizingKind(sizingType)
	if err != nil {
		return nil, err
	}

	settings := &shared.BacktestSettings{
		InitialCapital:  cfg.InitialCapital,
		Sizing:          shared.PositionSizing{Kind: kind, Value: cfg.SizingValue},
		MakerFeePercent: cfg.MakerFee,
		TakerFeePercent: cfg.TakerFee,
		SlippagePercent: cfg.Slippage,
	}

	err = settings.Validate()
	if err != nil {
		return nil, err
	}

	return settings, nil
}

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(name)
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		if defValue == "" {
			defValue = *value.(*string)
		}
		flag.StringVar(value.(*string), name, defValue, usage)
	case reflect.Bool:
		var def bool
		if defValue != "" {
			def, _ = strconv.ParseBool(defValue)
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		var def int
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	case reflect.Float64:
		def := *value.(*float64)
		if defValue != "" {
			parsed, err := strconv.ParseFloat(defValue, 64)
			if err != nil {
				return fmt.Errorf("%s: parsing float: %w", name, err)
			}
			def = parsed
		}
		flag.Float64Var(value.(*float64), name, def, usage)
	case reflect.Slice:
		// Only handle []string
		if val.Elem().Type().Elem().Kind() == reflect.String {
			var def []string
			if defValue != "" {
				def = strings.Split(defValue, ",")
			}
			flag.Func(name, usage, func(s string) error {
				*value.(*[]string) = strings.Split(s, ",")
				return nil
			})
			// Set default if not provided via flag
			if len(def) > 0 {
				*value.(*[]string) = def
			}
		} else {
			return fmt.Errorf("%s: unsupported slice type", name)
		}
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	// Defaults applied when neither the environment nor a flag provides a value.
	cfg.InitialCapital = 10000
	cfg.SizingType = shared.PercentageOfEquity.String()
	cfg.SizingValue = 10

	flags := []struct {
		name  string
		value interface{}
		usage string
	}{
		{"datafilepath", &cfg.DataFilepath, "the historical dataset filepath"},
		{"strategyfilepath", &cfg.StrategyFilepath, "the strategy document filepath"},
		{"initialcapital", &cfg.InitialCapital, "the initial capital in quote currency"},
		{"sizingtype", &cfg.SizingType, "the position sizing type (percentage_of_equity or fixed_amount)"},
		{"sizingvalue", &cfg.SizingValue, "the position sizing percentage or amount"},
		{"makerfee", &cfg.MakerFee, "the maker fee percentage"},
		{"takerfee", &cfg.TakerFee, "the taker fee percentage"},
		{"slippage", &cfg.Slippage, "the slippage percentage"},
		{"completedonly", &cfg.CompletedOnly, "restrict replayed reports to closed candles"},
		{"logging", &cfg.Logging, "the log artifact flag"},
		{"logdir", &cfg.LogDir, "the log artifact directory"},
		{"resultfilepath", &cfg.ResultFilepath, "the results filepath"},
	}

	// Register command line arguments using loaded environment variables as defaults.
	for _, f := range flags {
		err = cfg.registerFlag(f.name, f.value, f.usage)
		if err != nil {
			return err
		}
	}

	// Parse command-line flags.
	flag.Parse()

	return cfg.Validate()
}
