// Package kafka publishes analysis events and consumes market-data bars.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/models"
	"github.com/yyyooosi/stock-analyzer-2025-sub000/internal/signal"
)

// Producer handles publishing analysis events to Kafka
type Producer struct {
	signalWriter    *kafka.Writer
	crashRiskWriter *kafka.Writer
}

// NewProducer creates a producer for the signal and crash-risk topics
func NewProducer(brokers []string, signalTopic, crashRiskTopic string) *Producer {
	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		}
	}
	return &Producer{
		signalWriter:    newWriter(signalTopic),
		crashRiskWriter: newWriter(crashRiskTopic),
	}
}

// PublishSignal publishes a generated signal for a symbol
func (p *Producer) PublishSignal(ctx context.Context, symbol string, price float64, a *signal.Analysis) error {
	event := models.SignalEvent{
		EventType:  models.EventSignalGenerated,
		Symbol:     symbol,
		Signal:     string(a.Signal),
		Score:      a.OverallScore,
		Confidence: a.Confidence,
		RiskLevel:  string(a.RiskLevel),
		Reasons:    a.Reasons,
		Price:      price,
		Timestamp:  time.Now(),
	}
	return publish(ctx, p.signalWriter, symbol, event)
}

// PublishCrashRisk publishes a crash-risk alert derived from batch sentiment
func (p *Producer) PublishCrashRisk(ctx context.Context, symbol string, risk float64, level, message string, tweetCount int) error {
	event := models.CrashRiskEvent{
		EventType:  models.EventCrashRisk,
		Symbol:     symbol,
		RiskScore:  risk,
		RiskLevel:  level,
		Message:    message,
		TweetCount: tweetCount,
		Timestamp:  time.Now(),
	}
	return publish(ctx, p.crashRiskWriter, symbol, event)
}

func publish(ctx context.Context, w *kafka.Writer, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// Close closes both topic writers
func (p *Producer) Close() error {
	if err := p.signalWriter.Close(); err != nil {
		return err
	}
	return p.crashRiskWriter.Close()
}
