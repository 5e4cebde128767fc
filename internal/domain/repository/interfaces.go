package repository

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
)

// MarketData fetches a daily OHLCV series for a symbol.
type MarketData interface {
	FetchDaily(ctx context.Context, symbol string) (models.Series, error)
}

// ConditionsSource supplies the financial-conditions index feeding regime scoring.
type ConditionsSource interface {
	FetchSeries(ctx context.Context) (models.ConditionsSeries, error)
	FetchLatest(ctx context.Context) (*models.ConditionsPoint, error)
}

// RegimeLog persists one regime-score row per run and serves recent rows to the API.
type RegimeLog interface {
	Init(ctx context.Context) error
	Append(ctx context.Context, regime *models.RegimeScore, hits []models.Signal) error
	Recent(ctx context.Context, limit int) ([]models.RegimeScore, error)
	Close() error
}

// Notifier delivers a titled, line-oriented message to the configured channels.
type Notifier interface {
	NotifyBatch(ctx context.Context, title string, lines []string) error
}

// EventPublisher fans the machine-readable scan result out to an event stream.
type EventPublisher interface {
	PublishScan(ctx context.Context, result *models.ScanResult) error
	Close() error
}

// Metrics records operational counters for the scan pipeline.
type Metrics interface {
	RecordFetchAttempt(provider, symbol string)
	RecordProviderError(provider, kind string)
	RecordCacheHit(provider string)
	RecordCacheMiss(provider string)
	RecordSignal(trigger string)
	RecordScanDuration(d time.Duration)
}
