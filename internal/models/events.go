package models

import "time"

// Event type constants for the analysis topic
const (
	EventSignalGenerated = "SIGNAL_GENERATED"
	EventCrashRisk       = "CRASH_RISK"
)

// SignalEvent is published whenever the analyzer produces a new signal for
// a watched symbol, and persisted as signal history.
type SignalEvent struct {
	ID         int       `json:"id,omitempty"`
	EventType  string    `json:"event_type"`
	Symbol     string    `json:"symbol"`
	Signal     string    `json:"signal"`
	Score      float64   `json:"score"`
	Confidence float64   `json:"confidence"`
	RiskLevel  string    `json:"risk_level"`
	Reasons    []string  `json:"reasons,omitempty"`
	Price      float64   `json:"price"`
	Timestamp  time.Time `json:"timestamp"`
}

// CrashRiskEvent is published when batch sentiment crosses the configured
// crash-risk threshold.
type CrashRiskEvent struct {
	EventType  string    `json:"event_type"`
	Symbol     string    `json:"symbol"`
	RiskScore  float64   `json:"risk_score"`
	RiskLevel  string    `json:"risk_level"`
	Message    string    `json:"message"`
	TweetCount int       `json:"tweet_count"`
	Timestamp  time.Time `json:"timestamp"`
}

// PriceBarEvent is consumed from the market-data topic; one daily bar for
// one symbol.
type PriceBarEvent struct {
	EventType string     `json:"event_type"`
	Symbol    string     `json:"symbol"`
	Bar       PricePoint `json:"bar"`
	Timestamp time.Time  `json:"timestamp"`
}
