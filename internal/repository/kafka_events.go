package repository

import (
	"context"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	pkgkafka "StockPulse/pkg/kafka"
)

// KafkaEvents implements EventPublisher by emitting one JSON scan summary per
// run, keyed by scan date so downstream consumers compact per day.
type KafkaEvents struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaEvents(producer *pkgkafka.Producer, topic string) drepo.EventPublisher {
	return &KafkaEvents{producer: producer, topic: topic}
}

func (k *KafkaEvents) PublishScan(ctx context.Context, result *models.ScanResult) error {
	key := []byte(result.StartedAt.UTC().Format("2006-01-02"))
	return k.producer.Publish(ctx, k.topic, key, result)
}

func (k *KafkaEvents) Close() error {
	if k.producer != nil {
		return k.producer.Close()
	}
	return nil
}
