package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/backtest"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/database"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/fetcher"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/models"
)

var (
	backtestDays    int
	backtestCapital float64
	backtestFetch   bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest SYMBOL",
	Short: "Simulate the signal strategy over stored price history",
	Args:  cobra.ExactArgs(1),
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().IntVar(&backtestDays, "days", 250, "number of daily bars to simulate")
	backtestCmd.Flags().Float64Var(&backtestCapital, "capital", 1_000_000, "initial capital")
	backtestCmd.Flags().BoolVar(&backtestFetch, "fetch", false, "fetch history from the provider instead of the database")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	symbol := strings.ToUpper(args[0])

	var series models.PriceSeries
	if backtestFetch {
		priceFetcher := fetcher.New(
			cfg.Fetcher.BaseURL,
			cfg.Fetcher.APIKey,
			cfg.Fetcher.RequestsPerSec,
			cfg.Fetcher.Burst,
			cfg.Fetcher.Timeout.Std(),
		)
		series, err = priceFetcher.FetchDailyBars(context.Background(), symbol, backtestDays)
		if err != nil {
			return fmt.Errorf("failed to fetch history: %w", err)
		}
	} else {
		db, err := database.New(cfg.Database.ConnectionString())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		series, err = db.GetPriceSeries(symbol, backtestDays)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
	}

	if len(series) == 0 {
		return fmt.Errorf("no price data for %s", symbol)
	}

	simCfg := backtest.DefaultConfig()
	simCfg.InitialCapital = backtestCapital

	result, err := backtest.Run(series, simCfg)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"symbol": symbol,
		"days":   len(series),
		"result": result,
	})
}
