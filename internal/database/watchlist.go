package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/models"
)

// AddToWatchlist inserts a watchlist entry, or re-enables and updates an
// existing one for the same symbol
func (db *DB) AddToWatchlist(w *models.WatchlistEntry) error {
	query := `
		INSERT INTO watchlist (symbol, enabled, priority, min_confidence, notes, added_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (symbol) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			priority = EXCLUDED.priority,
			min_confidence = EXCLUDED.min_confidence,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	if w.Priority == 0 {
		w.Priority = 2
	}
	_, err := db.conn.Exec(query, w.Symbol, w.Enabled, w.Priority, w.MinConfidence, w.Notes, now)
	if err != nil {
		return fmt.Errorf("failed to add to watchlist: %w", err)
	}
	w.AddedAt = now
	w.UpdatedAt = now
	return nil
}

// GetWatchlistEntry retrieves one watchlist entry by symbol
func (db *DB) GetWatchlistEntry(symbol string) (*models.WatchlistEntry, error) {
	query := `
		SELECT symbol, enabled, priority, min_confidence, notes,
			last_signal, last_score, last_analyzed, added_at, updated_at
		FROM watchlist
		WHERE symbol = $1
	`
	var w models.WatchlistEntry
	var lastSignal sql.NullString
	err := db.conn.QueryRow(query, symbol).Scan(
		&w.Symbol, &w.Enabled, &w.Priority, &w.MinConfidence, &w.Notes,
		&lastSignal, &w.LastScore, &w.LastAnalyzed, &w.AddedAt, &w.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("watchlist entry not found: %s", symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist entry: %w", err)
	}

	w.LastSignal = lastSignal.String
	return &w, nil
}

// GetWatchlist retrieves all watchlist entries, highest priority first
func (db *DB) GetWatchlist(enabledOnly bool) ([]*models.WatchlistEntry, error) {
	query := `
		SELECT symbol, enabled, priority, min_confidence, notes,
			last_signal, last_score, last_analyzed, added_at, updated_at
		FROM watchlist
	`
	if enabledOnly {
		query += ` WHERE enabled = true`
	}
	query += ` ORDER BY priority ASC, symbol ASC`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}
	defer rows.Close()

	var entries []*models.WatchlistEntry
	for rows.Next() {
		var w models.WatchlistEntry
		var lastSignal sql.NullString
		err := rows.Scan(
			&w.Symbol, &w.Enabled, &w.Priority, &w.MinConfidence, &w.Notes,
			&lastSignal, &w.LastScore, &w.LastAnalyzed, &w.AddedAt, &w.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}
		w.LastSignal = lastSignal.String
		entries = append(entries, &w)
	}

	return entries, nil
}

// UpdateWatchlistAnalysis records the latest analysis result for a symbol
func (db *DB) UpdateWatchlistAnalysis(symbol string, signal string, score float64, analyzedAt time.Time) error {
	query := `
		UPDATE watchlist
		SET last_signal = $2, last_score = $3, last_analyzed = $4, updated_at = $5
		WHERE symbol = $1
	`
	result, err := db.conn.Exec(query, symbol, signal, score, analyzedAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update watchlist analysis: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("watchlist entry not found: %s", symbol)
	}
	return nil
}

// SetWatchlistEnabled toggles a watchlist entry without removing it
func (db *DB) SetWatchlistEnabled(symbol string, enabled bool) error {
	query := `UPDATE watchlist SET enabled = $2, updated_at = $3 WHERE symbol = $1`
	result, err := db.conn.Exec(query, symbol, enabled, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update watchlist entry: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("watchlist entry not found: %s", symbol)
	}
	return nil
}

// RemoveFromWatchlist deletes a watchlist entry
func (db *DB) RemoveFromWatchlist(symbol string) error {
	query := `DELETE FROM watchlist WHERE symbol = $1`
	result, err := db.conn.Exec(query, symbol)
	if err != nil {
		return fmt.Errorf("failed to remove from watchlist: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("watchlist entry not found: %s", symbol)
	}
	return nil
}
