// Package analyzer orchestrates one full analysis pass: load prices, compute
// indicators, score the signal, then persist, cache and publish the result.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/cache"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/fetcher"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/indicator"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/models"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/signal"
)

// historyBars is how many daily bars an analysis pass works from. It covers
// the 50-day SMA plus the pattern matcher's lookback window.
const historyBars = 200

// Store is the database surface the service needs.
type Store interface {
	GetPriceSeries(symbol string, limit int) (models.PriceSeries, error)
	CreatePriceDataBatch(prices []*models.PriceDataDaily) error
	SaveSnapshot(symbol string, date time.Time, snap indicator.Snapshot) error
	CreateSignalEvent(e *models.SignalEvent) error
	UpdateWatchlistAnalysis(symbol string, signal string, score float64, analyzedAt time.Time) error
}

// AnalysisCache is the cache surface the service needs.
type AnalysisCache interface {
	GetAnalysis(ctx context.Context, symbol string) (*signal.Analysis, error)
	SetAnalysis(ctx context.Context, symbol string, a *signal.Analysis) error
	InvalidateAnalysis(ctx context.Context, symbol string) error
}

// Publisher is the event surface the service needs.
type Publisher interface {
	PublishSignal(ctx context.Context, symbol string, price float64, a *signal.Analysis) error
}

// Service runs analysis passes. Cache and publisher failures are logged and
// swallowed; only missing price data fails an analysis.
type Service struct {
	store     Store
	cache     AnalysisCache
	publisher Publisher
	fetcher   fetcher.PriceFetcher
}

// New wires a Service. cache, publisher and priceFetcher may be nil, in
// which case the corresponding step is skipped.
func New(store Store, c AnalysisCache, publisher Publisher, priceFetcher fetcher.PriceFetcher) *Service {
	return &Service{
		store:     store,
		cache:     c,
		publisher: publisher,
		fetcher:   priceFetcher,
	}
}

// Analyze returns the current signal analysis for a symbol, serving from
// cache when possible.
func (s *Service) Analyze(ctx context.Context, symbol string) (*signal.Analysis, error) {
	if s.cache != nil {
		cached, err := s.cache.GetAnalysis(ctx, symbol)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Str("symbol", symbol).Msg("cache read failed")
		}
	}
	return s.Refresh(ctx, symbol)
}

// Refresh recomputes the analysis for a symbol, bypassing the cache, and
// records the result.
func (s *Service) Refresh(ctx context.Context, symbol string) (*signal.Analysis, error) {
	series, err := s.loadSeries(ctx, symbol)
	if err != nil {
		return nil, err
	}

	closes := series.Closes()
	ind := indicator.Compute(closes)
	price := closes[len(closes)-1]
	analysis := signal.Score(price, ind.Latest())

	s.record(ctx, symbol, series[len(series)-1].Date, price, ind.Latest(), &analysis)
	return &analysis, nil
}

// OnPriceBar is the Kafka consumer callback: a new bar invalidates the
// cached analysis and triggers a fresh pass.
func (s *Service) OnPriceBar(ctx context.Context, symbol string) error {
	if s.cache != nil {
		if err := s.cache.InvalidateAnalysis(ctx, symbol); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("cache invalidation failed")
		}
	}
	_, err := s.Refresh(ctx, symbol)
	return err
}

// loadSeries reads price history from the store, falling back to the
// upstream provider (and backfilling the store) when the store is empty.
func (s *Service) loadSeries(ctx context.Context, symbol string) (models.PriceSeries, error) {
	series, err := s.store.GetPriceSeries(symbol, historyBars)
	if err != nil {
		return nil, fmt.Errorf("failed to load price history for %s: %w", symbol, err)
	}
	if len(series) > 0 {
		return series, nil
	}

	if s.fetcher == nil {
		return nil, fmt.Errorf("no price data for %s", symbol)
	}

	fetched, err := s.fetcher.FetchDailyBars(ctx, symbol, historyBars)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history for %s: %w", symbol, err)
	}

	rows := make([]*models.PriceDataDaily, len(fetched))
	for i, p := range fetched {
		rows[i] = models.NewPriceDataDaily(symbol, p)
	}
	if err := s.store.CreatePriceDataBatch(rows); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("price backfill failed")
	}
	return fetched, nil
}

// record persists, caches and publishes an analysis. Failures here degrade
// the side channels but never the response.
func (s *Service) record(ctx context.Context, symbol string, date time.Time, price float64, snap indicator.Snapshot, a *signal.Analysis) {
	if err := s.store.SaveSnapshot(symbol, date, snap); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("failed to persist indicators")
	}

	event := &models.SignalEvent{
		EventType:  models.EventSignalGenerated,
		Symbol:     symbol,
		Signal:     string(a.Signal),
		Score:      a.OverallScore,
		Confidence: a.Confidence,
		RiskLevel:  string(a.RiskLevel),
		Reasons:    a.Reasons,
		Price:      price,
		Timestamp:  time.Now(),
	}
	if err := s.store.CreateSignalEvent(event); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("failed to persist signal event")
	}

	// Not every analyzed symbol is on the watchlist; missing rows are fine.
	if err := s.store.UpdateWatchlistAnalysis(symbol, string(a.Signal), a.OverallScore, time.Now()); err != nil {
		log.Debug().Err(err).Str("symbol", symbol).Msg("watchlist not updated")
	}

	if s.cache != nil {
		if err := s.cache.SetAnalysis(ctx, symbol, a); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("cache write failed")
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishSignal(ctx, symbol, price, a); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("failed to publish signal event")
		}
	}

	log.Info().
		Str("symbol", symbol).
		Str("signal", string(a.Signal)).
		Float64("score", a.OverallScore).
		Float64("confidence", a.Confidence).
		Msg("analysis complete")
}
