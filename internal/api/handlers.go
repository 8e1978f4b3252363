package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/backtest"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/indicator"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/models"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/pattern"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/screener"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/sentiment"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/signal"
)

// AnalysisService runs the analysis pipeline for one symbol.
type AnalysisService interface {
	Analyze(ctx context.Context, symbol string) (*signal.Analysis, error)
}

// Store is the database surface the handlers need.
type Store interface {
	GetPriceSeries(symbol string, limit int) (models.PriceSeries, error)
	GetWatchlist(enabledOnly bool) ([]*models.WatchlistEntry, error)
	GetWatchlistEntry(symbol string) (*models.WatchlistEntry, error)
	AddToWatchlist(w *models.WatchlistEntry) error
	RemoveFromWatchlist(symbol string) error
	GetSignalHistory(symbol string, limit int) ([]*models.SignalEvent, error)
}

// CrashRiskPublisher publishes crash-risk alerts.
type CrashRiskPublisher interface {
	PublishCrashRisk(ctx context.Context, symbol string, risk float64, level, message string, tweetCount int) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	store    Store
	analyzer AnalysisService
	producer CrashRiskPublisher
}

// NewHandler creates a new Handler
func NewHandler(store Store, analyzer AnalysisService, producer CrashRiskPublisher) *Handler {
	return &Handler{
		store:    store,
		analyzer: analyzer,
		producer: producer,
	}
}

// GetAnalysis handles GET /api/v1/analysis/{symbol}
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	analysis, err := h.analyzer.Analyze(r.Context(), symbol)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":   symbol,
		"analysis": analysis,
	})
}

// backtestRequest overrides the default simulation parameters. Rates are
// fractions, not percentages.
type backtestRequest struct {
	Days              int      `json:"days"`
	InitialCapital    *float64 `json:"initial_capital,omitempty"`
	CommissionRate    *float64 `json:"commission_rate,omitempty"`
	RiskPerTrade      *float64 `json:"risk_per_trade,omitempty"`
	StopLossPercent   *float64 `json:"stop_loss_percent,omitempty"`
	TakeProfitPercent *float64 `json:"take_profit_percent,omitempty"`
}

// RunBacktest handles POST /api/v1/backtest/{symbol}
func (h *Handler) RunBacktest(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	days := req.Days
	if days <= 0 {
		days = 250
	}

	cfg := backtest.DefaultConfig()
	if req.InitialCapital != nil {
		cfg.InitialCapital = *req.InitialCapital
	}
	if req.CommissionRate != nil {
		cfg.CommissionRate = *req.CommissionRate
	}
	if req.RiskPerTrade != nil {
		cfg.RiskPerTrade = *req.RiskPerTrade
	}
	if req.StopLossPercent != nil {
		cfg.StopLossPercent = *req.StopLossPercent
	}
	if req.TakeProfitPercent != nil {
		cfg.TakeProfitPercent = *req.TakeProfitPercent
	}

	series, err := h.store.GetPriceSeries(symbol, days)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(series) == 0 {
		http.Error(w, "no price data for "+symbol, http.StatusNotFound)
		return
	}

	result, err := backtest.Run(series, cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"result": result,
	})
}

// GetPatterns handles GET /api/v1/patterns/{symbol}
func (h *Handler) GetPatterns(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	minSimilarity := pattern.DefaultMinSimilarity
	if raw := r.URL.Query().Get("min_similarity"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "invalid min_similarity", http.StatusBadRequest)
			return
		}
		minSimilarity = parsed
	}

	series, err := h.store.GetPriceSeries(symbol, 200)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(series) == 0 {
		http.Error(w, "no price data for "+symbol, http.StatusNotFound)
		return
	}

	ind := indicator.Compute(series.Closes())
	analysis, err := pattern.Find(series, ind, minSimilarity)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":   symbol,
		"patterns": analysis,
	})
}

// screenerRequest carries the candidate universe and the filter set.
type screenerRequest struct {
	Candidates []screener.Fundamentals `json:"candidates"`
	Filters    screener.Filters        `json:"filters"`
}

// screenerMatch pairs a passing candidate with its score breakdown.
type screenerMatch struct {
	Symbol string                  `json:"symbol"`
	Score  screener.ScoreBreakdown `json:"score"`
}

// RunScreener handles POST /api/v1/screener
func (h *Handler) RunScreener(w http.ResponseWriter, r *http.Request) {
	var req screenerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Candidates) == 0 {
		http.Error(w, "candidates are required", http.StatusBadRequest)
		return
	}

	matches := make([]screenerMatch, 0, len(req.Candidates))
	for _, f := range req.Candidates {
		if !screener.Matches(f, req.Filters) {
			continue
		}
		matches = append(matches, screenerMatch{Symbol: f.Symbol, Score: screener.Score(f)})
	}

	// highest total first
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score.Total > matches[j].Score.Total
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"screened": len(req.Candidates),
		"matches":  matches,
	})
}

// sentimentRequest carries a tweet batch, optionally tied to a symbol.
type sentimentRequest struct {
	Symbol string   `json:"symbol,omitempty"`
	Texts  []string `json:"texts"`
}

// AnalyzeSentiment handles POST /api/v1/sentiment
func (h *Handler) AnalyzeSentiment(w http.ResponseWriter, r *http.Request) {
	var req sentimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Texts) == 0 {
		http.Error(w, "texts are required", http.StatusBadRequest)
		return
	}

	agg := sentiment.Aggregate(req.Texts)
	risk := sentiment.EvaluateCrashRisk(agg.AverageNegativeScore, agg.TweetCount)

	response := map[string]interface{}{
		"aggregation": agg,
		"crash_risk":  risk,
	}

	symbol := strings.ToUpper(req.Symbol)
	if symbol != "" {
		// blend the technical signal with the batch sentiment when we can
		if analysis, err := h.analyzer.Analyze(r.Context(), symbol); err == nil {
			combined := signal.CombineWithSentiment(*analysis, agg.AverageScore)
			response["combined_signal"] = combined
		}

		if h.producer != nil && (risk.RiskLevel == sentiment.RiskHigh || risk.RiskLevel == sentiment.RiskCritical) {
			if err := h.producer.PublishCrashRisk(r.Context(), symbol, risk.RiskScore, risk.RiskLevel, risk.Recommendation, agg.TweetCount); err != nil {
				log.Warn().Err(err).Str("symbol", symbol).Msg("failed to publish crash risk")
			}
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// GetWatchlist handles GET /api/v1/watchlist
func (h *Handler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	enabledOnly := r.URL.Query().Get("enabled") == "true"

	entries, err := h.store.GetWatchlist(enabledOnly)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// AddToWatchlist handles POST /api/v1/watchlist
func (h *Handler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol        string   `json:"symbol"`
		Priority      int      `json:"priority"`
		MinConfidence *float64 `json:"min_confidence,omitempty"`
		Notes         string   `json:"notes,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}

	entry := &models.WatchlistEntry{
		Symbol:        strings.ToUpper(req.Symbol),
		Enabled:       true,
		Priority:      req.Priority,
		MinConfidence: req.MinConfidence,
		Notes:         req.Notes,
	}
	if err := h.store.AddToWatchlist(entry); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

// GetWatchlistEntry handles GET /api/v1/watchlist/{symbol}
func (h *Handler) GetWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	entry, err := h.store.GetWatchlistEntry(symbol)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// RemoveFromWatchlist handles DELETE /api/v1/watchlist/{symbol}
func (h *Handler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	if err := h.store.RemoveFromWatchlist(symbol); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetSignalHistory handles GET /api/v1/signals/{symbol}
func (h *Handler) GetSignalHistory(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	events, err := h.store.GetSignalHistory(symbol, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, events)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
