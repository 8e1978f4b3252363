package models

import "time"

// WatchlistEntry represents a stock tracked by the periodic analyzer with
// optional per-symbol overrides.
type WatchlistEntry struct {
	Symbol        string     `json:"symbol"`
	Enabled       bool       `json:"enabled"`
	Priority      int        `json:"priority"` // 1=high, 2=medium, 3=low
	MinConfidence *float64   `json:"min_confidence,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	LastSignal    string     `json:"last_signal,omitempty"`
	LastScore     *float64   `json:"last_score,omitempty"`
	LastAnalyzed  *time.Time `json:"last_analyzed,omitempty"`
	AddedAt       time.Time  `json:"added_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
