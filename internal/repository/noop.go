package repository

import (
	"context"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
)

// NoopRegimeLog is used when ClickHouse is disabled.
type NoopRegimeLog struct{}

func NewNoopRegimeLog() drepo.RegimeLog { return NoopRegimeLog{} }

func (NoopRegimeLog) Init(context.Context) error { return nil }

func (NoopRegimeLog) Append(context.Context, *models.RegimeScore, []models.Signal) error {
	return nil
}

func (NoopRegimeLog) Recent(context.Context, int) ([]models.RegimeScore, error) {
	return nil, nil
}

func (NoopRegimeLog) Close() error { return nil }

// NoopEvents is used when Kafka is disabled.
type NoopEvents struct{}

func NewNoopEvents() drepo.EventPublisher { return NoopEvents{} }

func (NoopEvents) PublishScan(context.Context, *models.ScanResult) error { return nil }

func (NoopEvents) Close() error { return nil }
