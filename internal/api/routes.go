package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger, requestMetrics)

	// Health and metrics
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Analysis routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/analysis/{symbol}", handler.GetAnalysis).Methods("GET")
	api.HandleFunc("/backtest/{symbol}", handler.RunBacktest).Methods("POST")
	api.HandleFunc("/patterns/{symbol}", handler.GetPatterns).Methods("GET")
	api.HandleFunc("/screener", handler.RunScreener).Methods("POST")
	api.HandleFunc("/sentiment", handler.AnalyzeSentiment).Methods("POST")
	api.HandleFunc("/signals/{symbol}", handler.GetSignalHistory).Methods("GET")

	// Watchlist routes
	api.HandleFunc("/watchlist", handler.GetWatchlist).Methods("GET")
	api.HandleFunc("/watchlist", handler.AddToWatchlist).Methods("POST")
	api.HandleFunc("/watchlist/{symbol}", handler.GetWatchlistEntry).Methods("GET")
	api.HandleFunc("/watchlist/{symbol}", handler.RemoveFromWatchlist).Methods("DELETE")

	return r
}
