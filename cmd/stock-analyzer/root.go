package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "stock-analyzer",
	Short: "Technical and fundamental stock analysis service",
	Long: `stock-analyzer scores stocks from technical indicators (RSI, MACD,
moving averages, Bollinger Bands), screens fundamentals, simulates the signal
strategy over history, matches historical patterns and aggregates keyword
sentiment into crash-risk alerts.`,
}

// Execute loads configuration and runs the selected subcommand.
func Execute() error {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(backtestCmd)
	return rootCmd.Execute()
}

// loadConfig reads the config and applies the log settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	setupLogging(cfg.Log)
	return cfg, nil
}

func setupLogging(lc config.LogConfig) {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if lc.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
