package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/dnldd/chimera/service"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)
	defer signal.Stop(interrupt)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		os.Exit(1)
	}

	settings, err := cfg.Settings()
	if err != nil {
		log.Printf("parsing settings: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backtestCfg := service.BacktestConfig{
		DataFilepath:     cfg.DataFilepath,
		StrategyFilepath: cfg.StrategyFilepath,
		Settings:         settings,
		CompletedOnly:    cfg.CompletedOnly,
		Logging:          cfg.Logging,
		LogDir:           cfg.LogDir,
		ResultFilepath:   cfg.ResultFilepath,
		Cancel:           cancel,
	}
	backtest, err := service.NewBacktest(&backtestCfg)
	if err != nil {
		log.Printf("creating backtest service: %v", err)
		os.Exit(1)
	}

	go handleTermination(ctx, func() {
		backtest.Cancel()
		cancel()
	})

	_, err = backtest.Run(ctx)
	if err != nil {
		log.Printf("running backtest: %v", err)
		os.Exit(1)
	}
}
