// Package cache provides the Redis-backed read-through cache for signal
// analyses. A cache failure is never fatal; callers fall back to recomputing.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/signal"
)

// ErrMiss is returned when no cached analysis exists for the symbol.
var ErrMiss = errors.New("cache miss")

// Cache wraps a Redis client with the analysis key schema and TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects a cache against the given Redis address.
func New(addr, password string, db int, ttl time.Duration) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &Cache{client: client, ttl: ttl}
}

// GetAnalysis returns the cached analysis for a symbol, or ErrMiss.
func (c *Cache) GetAnalysis(ctx context.Context, symbol string) (*signal.Analysis, error) {
	data, err := c.client.Get(ctx, analysisKey(symbol)).Bytes()
	if err == redis.Nil {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached analysis: %w", err)
	}

	var a signal.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode cached analysis: %w", err)
	}
	return &a, nil
}

// SetAnalysis stores an analysis under the symbol key with the cache TTL.
func (c *Cache) SetAnalysis(ctx context.Context, symbol string, a *signal.Analysis) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	if err := c.client.Set(ctx, analysisKey(symbol), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache analysis: %w", err)
	}
	return nil
}

// InvalidateAnalysis drops the cached analysis for a symbol, used when a new
// price bar arrives.
func (c *Cache) InvalidateAnalysis(ctx context.Context, symbol string) error {
	if err := c.client.Del(ctx, analysisKey(symbol)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate analysis: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection, used by the health endpoint.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}

func analysisKey(symbol string) string {
	return "analysis:" + symbol
}
