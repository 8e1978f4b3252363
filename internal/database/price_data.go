package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/models"
)

// CreatePriceData upserts a daily price bar keyed on (symbol, date)
func (db *DB) CreatePriceData(p *models.PriceDataDaily) error {
	query := `
		INSERT INTO price_data_daily (symbol, date, open, high, low, close, volume, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume
		RETURNING id
	`
	err := db.conn.QueryRow(query,
		p.Symbol, p.Date, p.Open, p.High, p.Low, p.Close, p.Volume, time.Now(),
	).Scan(&p.ID)

	if err != nil {
		return fmt.Errorf("failed to create price data: %w", err)
	}
	return nil
}

// CreatePriceDataBatch upserts multiple daily bars inside one transaction
func (db *DB) CreatePriceDataBatch(prices []*models.PriceDataDaily) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO price_data_daily (symbol, date, open, high, low, close, volume, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, p := range prices {
		_, err := stmt.Exec(p.Symbol, p.Date, p.Open, p.High, p.Low, p.Close, p.Volume, now)
		if err != nil {
			return fmt.Errorf("failed to insert price data for %s: %w", p.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPriceSeries returns the most recent bars for a symbol as an ascending
// series ready for the analysis engine. limit bounds the number of bars.
func (db *DB) GetPriceSeries(symbol string, limit int) (models.PriceSeries, error) {
	query := `
		SELECT date, open, high, low, close, volume
		FROM (
			SELECT date, open, high, low, close, volume
			FROM price_data_daily
			WHERE symbol = $1
			ORDER BY date DESC
			LIMIT $2
		) recent
		ORDER BY date ASC
	`
	rows, err := db.conn.Query(query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get price series: %w", err)
	}
	defer rows.Close()

	var series models.PriceSeries
	for rows.Next() {
		var p models.PriceDataDaily
		err := rows.Scan(&p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price data: %w", err)
		}
		series = append(series, p.PricePoint())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read price series: %w", err)
	}

	return series, nil
}

// GetPriceDataRange retrieves bars for a symbol within a date range, ascending
func (db *DB) GetPriceDataRange(symbol string, startDate, endDate time.Time) ([]*models.PriceDataDaily, error) {
	query := `
		SELECT id, symbol, date, open, high, low, close, volume, created_at
		FROM price_data_daily
		WHERE symbol = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`
	rows, err := db.conn.Query(query, symbol, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get price data range: %w", err)
	}
	defer rows.Close()

	var prices []*models.PriceDataDaily
	for rows.Next() {
		var p models.PriceDataDaily
		err := rows.Scan(
			&p.ID, &p.Symbol, &p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price data: %w", err)
		}
		prices = append(prices, &p)
	}

	return prices, nil
}

// GetLatestPriceData retrieves the most recent bar for a symbol
func (db *DB) GetLatestPriceData(symbol string) (*models.PriceDataDaily, error) {
	query := `
		SELECT id, symbol, date, open, high, low, close, volume, created_at
		FROM price_data_daily
		WHERE symbol = $1
		ORDER BY date DESC
		LIMIT 1
	`
	var p models.PriceDataDaily
	err := db.conn.QueryRow(query, symbol).Scan(
		&p.ID, &p.Symbol, &p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume, &p.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no price data found for %s", symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest price data: %w", err)
	}
	return &p, nil
}

// DeletePriceDataOlderThan removes bars older than the given date
func (db *DB) DeletePriceDataOlderThan(date time.Time) (int64, error) {
	query := `DELETE FROM price_data_daily WHERE date < $1`
	result, err := db.conn.Exec(query, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old price data: %w", err)
	}
	return result.RowsAffected()
}
