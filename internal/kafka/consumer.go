package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/models"
)

// PriceRepository defines the database operations the consumer needs
type PriceRepository interface {
	CreatePriceData(p *models.PriceDataDaily) error
}

// BarHandler is invoked after a bar is persisted, typically to invalidate
// the cached analysis and trigger re-analysis of the symbol.
type BarHandler func(ctx context.Context, symbol string) error

// Consumer ingests daily price bars from the market-data topic
type Consumer struct {
	reader *kafka.Reader
	repo   PriceRepository
	onBar  BarHandler
}

// NewConsumer creates a consumer for the price-bar topic
func NewConsumer(brokers []string, topic, groupID string, repo PriceRepository, onBar BarHandler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader: reader,
		repo:   repo,
		onBar:  onBar,
	}
}

// Start begins consuming messages until the context is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	log.Info().Str("topic", c.reader.Config().Topic).Msg("starting kafka consumer")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("kafka consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // context cancelled, normal shutdown
				}
				log.Error().Err(err).Msg("failed to read message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				log.Error().Err(err).
					Int("partition", msg.Partition).
					Int64("offset", msg.Offset).
					Msg("failed to process message")
				// continue processing other messages
			}
		}
	}
}

// processMessage persists one price bar and notifies the handler
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.PriceBarEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal price bar event: %w", err)
	}

	if event.Symbol == "" {
		return fmt.Errorf("price bar event missing symbol")
	}

	row := models.NewPriceDataDaily(event.Symbol, event.Bar)
	if err := c.repo.CreatePriceData(row); err != nil {
		return fmt.Errorf("failed to save price bar: %w", err)
	}

	log.Debug().
		Str("symbol", event.Symbol).
		Time("date", event.Bar.Date).
		Float64("close", event.Bar.Close).
		Msg("price bar ingested")

	if c.onBar != nil {
		if err := c.onBar(ctx, event.Symbol); err != nil {
			return fmt.Errorf("bar handler failed for %s: %w", event.Symbol, err)
		}
	}
	return nil
}

// Close closes the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
