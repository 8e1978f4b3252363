package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/indicator"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/models"
)

// CreateTechnicalIndicator upserts an indicator value keyed on
// (symbol, date, indicator_type, timeframe)
func (db *DB) CreateTechnicalIndicator(t *models.TechnicalIndicator) error {
	query := `
		INSERT INTO technical_indicators (symbol, date, indicator_type, value, timeframe, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol, date, indicator_type, timeframe) DO UPDATE SET
			value = EXCLUDED.value
		RETURNING id
	`
	if t.Timeframe == "" {
		t.Timeframe = "daily"
	}
	err := db.conn.QueryRow(query,
		t.Symbol, t.Date, t.IndicatorType, t.Value, t.Timeframe, time.Now(),
	).Scan(&t.ID)

	if err != nil {
		return fmt.Errorf("failed to create technical indicator: %w", err)
	}
	return nil
}

// CreateTechnicalIndicatorBatch upserts multiple indicator values inside one
// transaction
func (db *DB) CreateTechnicalIndicatorBatch(indicators []*models.TechnicalIndicator) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO technical_indicators (symbol, date, indicator_type, value, timeframe, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol, date, indicator_type, timeframe) DO UPDATE SET
			value = EXCLUDED.value
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, t := range indicators {
		timeframe := t.Timeframe
		if timeframe == "" {
			timeframe = "daily"
		}
		_, err := stmt.Exec(t.Symbol, t.Date, t.IndicatorType, t.Value, timeframe, now)
		if err != nil {
			return fmt.Errorf("failed to insert indicator for %s: %w", t.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveSnapshot persists every defined value of an indicator snapshot for a
// symbol on a date. Nil snapshot fields are skipped.
func (db *DB) SaveSnapshot(symbol string, date time.Time, snap indicator.Snapshot) error {
	fields := []struct {
		indicatorType string
		value         *float64
	}{
		{models.IndicatorRSI14, snap.RSI},
		{models.IndicatorMACD, snap.MACD},
		{models.IndicatorMACDSig, snap.MACDSignal},
		{models.IndicatorMACDHist, snap.MACDHistogram},
		{models.IndicatorSMA5, snap.SMA5},
		{models.IndicatorSMA20, snap.SMA20},
		{models.IndicatorSMA50, snap.SMA50},
		{models.IndicatorEMA12, snap.EMA12},
		{models.IndicatorEMA26, snap.EMA26},
		{models.IndicatorBBUpper, snap.BBUpper},
		{models.IndicatorBBMiddle, snap.BBMiddle},
		{models.IndicatorBBLower, snap.BBLower},
	}

	var rows []*models.TechnicalIndicator
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		rows = append(rows, &models.TechnicalIndicator{
			Symbol:        symbol,
			Date:          date,
			IndicatorType: f.indicatorType,
			Value:         decimal.NewFromFloat(*f.value),
			Timeframe:     "daily",
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return db.CreateTechnicalIndicatorBatch(rows)
}

// GetIndicatorHistory retrieves historical values for one indicator,
// newest first
func (db *DB) GetIndicatorHistory(symbol string, indicatorType string, limit int) ([]*models.TechnicalIndicator, error) {
	query := `
		SELECT id, symbol, date, indicator_type, value, timeframe, created_at
		FROM technical_indicators
		WHERE symbol = $1 AND indicator_type = $2
		ORDER BY date DESC
		LIMIT $3
	`
	rows, err := db.conn.Query(query, symbol, indicatorType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get indicator history: %w", err)
	}
	defer rows.Close()

	var indicators []*models.TechnicalIndicator
	for rows.Next() {
		var t models.TechnicalIndicator
		err := rows.Scan(
			&t.ID, &t.Symbol, &t.Date, &t.IndicatorType, &t.Value, &t.Timeframe, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan indicator: %w", err)
		}
		indicators = append(indicators, &t)
	}

	return indicators, nil
}

// GetLatestIndicators retrieves the most recent value of every indicator
// stored for a symbol
func (db *DB) GetLatestIndicators(symbol string) ([]*models.TechnicalIndicator, error) {
	query := `
		SELECT DISTINCT ON (indicator_type)
			id, symbol, date, indicator_type, value, timeframe, created_at
		FROM technical_indicators
		WHERE symbol = $1
		ORDER BY indicator_type, date DESC
	`
	rows, err := db.conn.Query(query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest indicators: %w", err)
	}
	defer rows.Close()

	var indicators []*models.TechnicalIndicator
	for rows.Next() {
		var t models.TechnicalIndicator
		err := rows.Scan(
			&t.ID, &t.Symbol, &t.Date, &t.IndicatorType, &t.Value, &t.Timeframe, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan indicator: %w", err)
		}
		indicators = append(indicators, &t)
	}

	return indicators, nil
}

// GetLatestRSI is a convenience method for the most recent RSI value
func (db *DB) GetLatestRSI(symbol string) (decimal.Decimal, error) {
	query := `
		SELECT value
		FROM technical_indicators
		WHERE symbol = $1 AND indicator_type = 'RSI_14'
		ORDER BY date DESC
		LIMIT 1
	`
	var value decimal.Decimal
	err := db.conn.QueryRow(query, symbol).Scan(&value)

	if err == sql.ErrNoRows {
		return decimal.Zero, fmt.Errorf("no RSI data found for %s", symbol)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get RSI: %w", err)
	}
	return value, nil
}

// DeleteIndicatorsOlderThan removes indicators older than the given date
func (db *DB) DeleteIndicatorsOlderThan(date time.Time) (int64, error) {
	query := `DELETE FROM technical_indicators WHERE date < $1`
	result, err := db.conn.Exec(query, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old indicators: %w", err)
	}
	return result.RowsAffected()
}
