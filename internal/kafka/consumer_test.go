package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/models"
)

type fakePriceRepo struct {
	saved []*models.PriceDataDaily
	err   error
}

func (f *fakePriceRepo) CreatePriceData(p *models.PriceDataDaily) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, p)
	return nil
}

func barEvent(symbol string, close float64) []byte {
	event := models.PriceBarEvent{
		EventType: "PRICE_BAR",
		Symbol:    symbol,
		Bar: models.PricePoint{
			Date:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Open:   close - 1,
			High:   close + 2,
			Low:    close - 2,
			Close:  close,
			Volume: 1_000_000,
		},
		Timestamp: time.Now(),
	}
	data, _ := json.Marshal(event)
	return data
}

func TestProcessMessage(t *testing.T) {
	t.Run("persists bar and notifies handler", func(t *testing.T) {
		repo := &fakePriceRepo{}
		var notified []string
		c := &Consumer{
			repo: repo,
			onBar: func(_ context.Context, symbol string) error {
				notified = append(notified, symbol)
				return nil
			},
		}

		err := c.processMessage(context.Background(), kafkago.Message{Value: barEvent("AAPL", 177.25)})
		require.NoError(t, err)

		require.Len(t, repo.saved, 1)
		assert.Equal(t, "AAPL", repo.saved[0].Symbol)
		assert.Equal(t, []string{"AAPL"}, notified)
	})

	t.Run("rejects malformed payload", func(t *testing.T) {
		c := &Consumer{repo: &fakePriceRepo{}}
		err := c.processMessage(context.Background(), kafkago.Message{Value: []byte("not json")})
		assert.Error(t, err)
	})

	t.Run("rejects event without symbol", func(t *testing.T) {
		repo := &fakePriceRepo{}
		c := &Consumer{repo: repo}
		err := c.processMessage(context.Background(), kafkago.Message{Value: barEvent("", 100)})
		assert.Error(t, err)
		assert.Empty(t, repo.saved)
	})

	t.Run("works without a bar handler", func(t *testing.T) {
		repo := &fakePriceRepo{}
		c := &Consumer{repo: repo}
		err := c.processMessage(context.Background(), kafkago.Message{Value: barEvent("MSFT", 400)})
		require.NoError(t, err)
		assert.Len(t, repo.saved, 1)
	})
}
