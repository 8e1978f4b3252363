package database

import (
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/models"
)

// CreateSignalEvent inserts a generated signal into the history table
func (db *DB) CreateSignalEvent(e *models.SignalEvent) error {
	query := `
		INSERT INTO signal_events (event_type, symbol, signal, score, confidence, risk_level, reasons, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := db.conn.QueryRow(query,
		e.EventType, e.Symbol, e.Signal, e.Score, e.Confidence, e.RiskLevel,
		pq.Array(e.Reasons), e.Price, e.Timestamp,
	).Scan(&e.ID)

	if err != nil {
		return fmt.Errorf("failed to create signal event: %w", err)
	}
	return nil
}

// GetSignalHistory retrieves the most recent signals for a symbol
func (db *DB) GetSignalHistory(symbol string, limit int) ([]*models.SignalEvent, error) {
	query := `
		SELECT id, event_type, symbol, signal, score, confidence, risk_level, reasons, price, created_at
		FROM signal_events
		WHERE symbol = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := db.conn.Query(query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get signal history: %w", err)
	}
	defer rows.Close()

	var events []*models.SignalEvent
	for rows.Next() {
		var e models.SignalEvent
		err := rows.Scan(
			&e.ID, &e.EventType, &e.Symbol, &e.Signal, &e.Score, &e.Confidence,
			&e.RiskLevel, pq.Array(&e.Reasons), &e.Price, &e.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal event: %w", err)
		}
		events = append(events, &e)
	}

	return events, nil
}

// DeleteSignalEventsOlderThan removes signal history older than the given time
func (db *DB) DeleteSignalEventsOlderThan(cutoff time.Time) (int64, error) {
	query := `DELETE FROM signal_events WHERE created_at < $1`
	result, err := db.conn.Exec(query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old signal events: %w", err)
	}
	return result.RowsAffected()
}
