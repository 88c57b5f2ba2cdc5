package repository

import (
	"context"

	"MarketRadar/internal/domain/models"
	"MarketRadar/pkg/kafka"
	"MarketRadar/pkg/logger"
)

// KafkaAlertPublisher fans alerts out to a Kafka topic, keyed by
// symbol so per-instrument ordering survives partitioning.
type KafkaAlertPublisher struct {
	producer *kafka.Producer
	topic    string
	logger   *logger.Logger
}

// NewKafkaAlertPublisher creates a publisher over an open producer.
func NewKafkaAlertPublisher(producer *kafka.Producer, topic string, log *logger.Logger) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic, logger: log}
}

// PublishAlert sends one alert as a JSON message.
func (p *KafkaAlertPublisher) PublishAlert(ctx context.Context, a *models.Alert) error {
	return p.producer.Publish(ctx, p.topic, []byte(a.Symbol), a)
}

// Close closes the underlying producer.
func (p *KafkaAlertPublisher) Close() error {
	return p.producer.Close()
}

// NoopAlertPublisher is used when Kafka fan-out is disabled; alerts
// remain queryable from the store.
type NoopAlertPublisher struct{}

func (NoopAlertPublisher) PublishAlert(context.Context, *models.Alert) error { return nil }
func (NoopAlertPublisher) Close() error                                      { return nil }
