package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchAttempts  *prometheus.CounterVec
	providerErrors *prometheus.CounterVec
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	signalsFired   *prometheus.CounterVec
	scanDuration   prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_fetch_attempts_total",
				Help: "Total number of provider fetch attempts",
			},
			[]string{"provider", "symbol"},
		),
		providerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_provider_errors_total",
				Help: "Total number of provider errors",
			},
			[]string{"provider", "kind"},
		),
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_cache_hits_total",
				Help: "Total number of response cache hits",
			},
			[]string{"provider"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_cache_misses_total",
				Help: "Total number of response cache misses",
			},
			[]string{"provider"},
		),
		signalsFired: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_signals_total",
				Help: "Total number of entry signals fired",
			},
			[]string{"trigger"},
		),
		scanDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stockpulse_scan_duration_seconds",
				Help:    "Duration of a full daily scan in seconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
	}
}

// RecordFetchAttempt records a provider fetch attempt for a symbol.
func (r *Recorder) RecordFetchAttempt(provider, symbol string) {
	r.fetchAttempts.WithLabelValues(provider, symbol).Inc()
}

// RecordProviderError records a provider error by kind.
func (r *Recorder) RecordProviderError(provider, kind string) {
	r.providerErrors.WithLabelValues(provider, kind).Inc()
}

// RecordCacheHit records a response cache hit.
func (r *Recorder) RecordCacheHit(provider string) {
	r.cacheHits.WithLabelValues(provider).Inc()
}

// RecordCacheMiss records a response cache miss.
func (r *Recorder) RecordCacheMiss(provider string) {
	r.cacheMisses.WithLabelValues(provider).Inc()
}

// RecordSignal records a fired entry signal.
func (r *Recorder) RecordSignal(trigger string) {
	r.signalsFired.WithLabelValues(trigger).Inc()
}

// RecordScanDuration records how long a full scan took.
func (r *Recorder) RecordScanDuration(d time.Duration) {
	r.scanDuration.Observe(d.Seconds())
}
