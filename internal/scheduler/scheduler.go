// Package scheduler re-analyzes every enabled watchlist symbol on a cron
// schedule.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/models"
)

// WatchlistSource lists the symbols due for periodic analysis.
type WatchlistSource interface {
	GetWatchlist(enabledOnly bool) ([]*models.WatchlistEntry, error)
}

// Runner is the function the scheduler invokes per symbol. Split out as a
// function type so tests can drive the job without a full service.
type Runner func(ctx context.Context, symbol string) error

// Scheduler owns the cron instance and the watchlist job.
type Scheduler struct {
	cron      *cron.Cron
	watchlist WatchlistSource
	run       Runner
	timeout   time.Duration
}

// New creates a scheduler that runs the given Runner for every enabled
// watchlist symbol. Seconds-resolution cron specs are accepted.
func New(watchlist WatchlistSource, run Runner) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		watchlist: watchlist,
		run:       run,
		timeout:   5 * time.Minute,
	}
}

// Start registers the job under cronSpec and starts the cron loop.
func (s *Scheduler) Start(cronSpec string) error {
	_, err := s.cron.AddFunc(cronSpec, s.runOnce)
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Info().Str("spec", cronSpec).Msg("watchlist scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("watchlist scheduler stopped")
}

// runOnce is one scheduled sweep over the watchlist. Failures on one symbol
// never block the rest.
func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	entries, err := s.watchlist.GetWatchlist(true)
	if err != nil {
		log.Error().Err(err).Msg("failed to load watchlist")
		return
	}

	log.Info().Int("symbols", len(entries)).Msg("watchlist sweep starting")
	var failed int
	for _, entry := range entries {
		if err := s.run(ctx, entry.Symbol); err != nil {
			failed++
			log.Error().Err(err).Str("symbol", entry.Symbol).Msg("watchlist analysis failed")
		}
	}
	log.Info().Int("symbols", len(entries)).Int("failed", failed).Msg("watchlist sweep finished")
}
