package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mwalsh/fixtrader/api"
	"github.com/mwalsh/fixtrader/internal/config"
	"github.com/mwalsh/fixtrader/pkg/fix"
	"github.com/mwalsh/fixtrader/pkg/loadgen"
	"github.com/mwalsh/fixtrader/pkg/trader"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	logger  *logrus.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fixtrader",
		Short: "FIX protocol trading client",
		Long:  `A FIX trading client that submits orders and cancellations, reconciles execution reports against tracked order and position state, and reports volume, PnL, and VWAP statistics`,
		Run:   runTrader,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runTrader(cmd *cobra.Command, args []string) {
	// Initialize logger
	logger = logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Environment overrides may live in a .env file during development
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Set log level and format
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logger.WithError(err).Error("Invalid log level, using INFO")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.Logging.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core state: order store, position ledger, trade history, and the
	// interpreter that drives them from the execution report stream.
	store := trader.NewOrderStore()
	ledger := trader.NewPositionLedger()
	history := trader.NewTradeHistory()
	interpreter := trader.NewInterpreter(store, ledger, history, logger)

	// FIX session
	client, err := fix.NewClient(cfg.FIX.SettingsFile, interpreter, cfg.FIX.SessionPassword, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create FIX client")
	}
	if err := client.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start FIX session")
	}
	defer client.Stop()

	logonCtx, logonCancel := context.WithTimeout(ctx, time.Duration(cfg.FIX.LogonTimeout)*time.Second)
	defer logonCancel()
	if err := client.WaitForLogon(logonCtx); err != nil {
		logger.WithError(err).Fatal("FIX session did not log on")
	}

	// Start API server
	apiServer := api.NewServer(store, ledger, history, interpreter, logger, fmt.Sprintf("%d", cfg.Server.Port), cfg.Server.AuthSecret)
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.WithError(err).Fatal("Failed to start API server")
		}
	}()

	// Load generation: independent order and cancel workers
	generator := loadgen.New(client, store, loadgen.Config{
		Symbols:          cfg.Trading.Symbols,
		OrderCount:       cfg.Trading.OrderCount,
		Duration:         time.Duration(cfg.Trading.DurationMinutes) * time.Minute,
		OrdersPerSecond:  cfg.Trading.OrdersPerSecond,
		CancelsPerSecond: cfg.Trading.CancelsPerSecond,
		MinPrice:         cfg.Trading.MinPrice,
		MaxPrice:         cfg.Trading.MaxPrice,
		MaxOrderQty:      cfg.Trading.MaxOrderQty,
	}, logger)

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := generator.RunOrders(ctx); err != nil && ctx.Err() == nil {
				logger.WithError(err).Error("Order generation failed")
			}
		}()
		go func() {
			defer wg.Done()
			if err := generator.RunCancels(ctx); err != nil && ctx.Err() == nil {
				logger.WithError(err).Error("Cancel generation failed")
			}
		}()
		wg.Wait()
		close(done)
	}()

	// Periodic statistics while the run is in flight
	statsTicker := time.NewTicker(30 * time.Second)
	defer statsTicker.Stop()

	// Wait for interrupt signal or load completion
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("FIX trader is running. Press Ctrl+C to stop.")

	running := true
	for running {
		select {
		case <-sigChan:
			logger.Info("Received shutdown signal")
			running = false
		case <-done:
			// Give the counterparty time to deliver trailing reports.
			logger.WithField("settle_seconds", cfg.Trading.SettleSeconds).Info("Load generation complete, settling")
			select {
			case <-time.After(time.Duration(cfg.Trading.SettleSeconds) * time.Second):
			case <-sigChan:
			}
			running = false
		case <-statsTicker.C:
			logStatistics(store, history, interpreter)
		}
	}

	// Graceful shutdown
	cancel()
	logStatistics(store, history, interpreter)
	logger.Info("FIX trader stopped")
}

func logStatistics(store *trader.OrderStore, history *trader.TradeHistory, interpreter *trader.Interpreter) {
	stats := trader.ComputeStatistics(history.Snapshot())
	counters := interpreter.Counters()

	logger.WithFields(logrus.Fields{
		"total_volume":     stats.TotalVolume,
		"total_pnl":        stats.TotalPnL,
		"vwap":             stats.VWAP,
		"orders_confirmed": counters.OrdersConfirmed,
		"orders_cancelled": counters.OrdersCancelled,
		"cancel_rejects":   counters.CancelRejects,
		"report_errors":    counters.ReportErrors,
		"active_orders":    store.Len(),
		"trades":           history.Len(),
	}).Info("Trading statistics")
}
