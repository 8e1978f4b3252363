package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/analyzer"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/api"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/cache"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/database"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/fetcher"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/kafka"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/scheduler"
)

var migrationsPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis API, scheduler and price-bar consumer",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&migrationsPath, "migrations", "db/migrations", "path to database migrations")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(migrationsPath); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	analysisCache := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL.Std())
	defer analysisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.SignalTopic, cfg.Kafka.CrashRiskTopic)
	defer producer.Close()

	priceFetcher := fetcher.New(
		cfg.Fetcher.BaseURL,
		cfg.Fetcher.APIKey,
		cfg.Fetcher.RequestsPerSec,
		cfg.Fetcher.Burst,
		cfg.Fetcher.Timeout.Std(),
	)

	service := analyzer.New(db, analysisCache, producer, priceFetcher)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Price-bar consumer feeds the store and re-analyzes on each new bar.
	consumer := kafka.NewConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.PriceTopic,
		cfg.Kafka.ConsumerGroup,
		db,
		service.OnPriceBar,
	)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("kafka consumer stopped")
		}
	}()

	if cfg.Scheduler.Enabled {
		sched := scheduler.New(db, func(ctx context.Context, symbol string) error {
			_, err := service.Refresh(ctx, symbol)
			return err
		})
		if err := sched.Start(cfg.Scheduler.CronSpec); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer sched.Stop()
	}

	handler := api.NewHandler(db, service, producer)
	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      api.SetupRoutes(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}
	return nil
}
