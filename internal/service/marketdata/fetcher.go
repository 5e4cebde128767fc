package marketdata

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/pkg/cache"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
)

// FetcherOption configures Fetcher.
type FetcherOption func(*Fetcher)

// Fetcher implements MarketData over an ordered list of providers with
// throttling, response caching, retry with exponential backoff, and fallback
// to the next provider when one is exhausted.
type Fetcher struct {
	providers []Provider
	client    *xhttp.Client
	store     cache.Store
	throttle  *ratelimit.Throttle
	metrics   drepo.Metrics
	log       *applogger.Logger

	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

// NewFetcher builds a Fetcher. Providers are tried in order; the first that
// yields a usable payload wins.
func NewFetcher(
	providers []Provider,
	client *xhttp.Client,
	throttle *ratelimit.Throttle,
	metrics drepo.Metrics,
	log *applogger.Logger,
	opts ...FetcherOption,
) *Fetcher {
	f := &Fetcher{
		providers:   providers,
		client:      client,
		throttle:    throttle,
		metrics:     metrics,
		log:         log,
		maxAttempts: 3,
		baseDelay:   2 * time.Second,
		maxDelay:    30 * time.Second,
		sleep:       sleepCtx,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(500 * time.Millisecond)))
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithCache attaches a response cache. Raw payloads are cached only after
// they validate and parse to a non-empty series, so a cached entry never
// holds a rate-limit notice or a bar-less payload.
func WithCache(store cache.Store) FetcherOption {
	return func(f *Fetcher) {
		f.store = store
	}
}

// WithRetry sets attempt count and backoff bounds per provider.
func WithRetry(maxAttempts int, baseDelay, maxDelay time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.maxAttempts = maxAttempts
		f.baseDelay = baseDelay
		f.maxDelay = maxDelay
	}
}

// FetchDaily returns the daily series for symbol, oldest bar first. When every
// provider fails the returned error is a *models.DataUnavailableError wrapping
// the last provider's error.
func (f *Fetcher) FetchDaily(ctx context.Context, symbol string) (models.Series, error) {
	var lastErr error
	for _, p := range f.providers {
		series, err := f.fetchFrom(ctx, p, symbol)
		if err == nil {
			return series, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		lastErr = &models.ProviderError{Provider: p.Name(), Symbol: symbol, Err: err}
		f.log.Warn("provider exhausted, falling back",
			applogger.String("provider", p.Name()),
			applogger.String("symbol", symbol),
			applogger.Error(err))
	}
	return nil, &models.DataUnavailableError{Symbol: symbol, Err: lastErr}
}

func (f *Fetcher) fetchFrom(ctx context.Context, p Provider, symbol string) (models.Series, error) {
	key := cache.SafeKey(fmt.Sprintf("%s_%s", p.Name(), symbol))

	if f.store != nil {
		if raw, err := f.store.Get(ctx, key); err == nil {
			if series, perr := p.Parse(raw); perr == nil && !series.Empty() {
				f.metrics.RecordCacheHit(p.Name())
				return series, nil
			}
		}
		f.metrics.RecordCacheMiss(p.Name())
	}

	var lastErr error
	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := f.sleep(ctx, f.backoff(attempt-1)); err != nil {
				return nil, err
			}
		}
		// Every network attempt honors the shared inter-call spacing,
		// including the first attempt against a fallback provider.
		if err := f.throttle.Wait(ctx); err != nil {
			return nil, err
		}

		f.metrics.RecordFetchAttempt(p.Name(), symbol)
		raw, err := f.request(ctx, p, symbol)
		if err != nil {
			f.metrics.RecordProviderError(p.Name(), "transport")
			lastErr = err
			f.log.Warn("fetch attempt failed",
				applogger.String("provider", p.Name()),
				applogger.String("symbol", symbol),
				applogger.Int("attempt", attempt+1),
				applogger.Error(err))
			continue
		}
		if err := p.CheckPayload(raw); err != nil {
			f.metrics.RecordProviderError(p.Name(), "payload")
			lastErr = err
			f.log.Warn("unusable payload",
				applogger.String("provider", p.Name()),
				applogger.String("symbol", symbol),
				applogger.Int("attempt", attempt+1),
				applogger.Error(err))
			continue
		}

		series, err := p.Parse(raw)
		if err != nil {
			f.metrics.RecordProviderError(p.Name(), "parse")
			lastErr = err
			f.log.Warn("unparseable payload",
				applogger.String("provider", p.Name()),
				applogger.String("symbol", symbol),
				applogger.Int("attempt", attempt+1),
				applogger.Error(err))
			continue
		}
		if series.Empty() {
			f.metrics.RecordProviderError(p.Name(), "empty")
			lastErr = fmt.Errorf("%s returned no bars for %s", p.Name(), symbol)
			f.log.Warn("empty series",
				applogger.String("provider", p.Name()),
				applogger.String("symbol", symbol),
				applogger.Int("attempt", attempt+1))
			continue
		}

		if f.store != nil {
			if err := f.store.Set(ctx, key, raw); err != nil {
				f.log.Warn("cache write failed", applogger.String("key", key), applogger.Error(err))
			}
		}
		return series, nil
	}
	return nil, lastErr
}

func (f *Fetcher) request(ctx context.Context, p Provider, symbol string) ([]byte, error) {
	var raw []byte
	if err := f.client.SendAndParse(ctx, p.Request(symbol), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// backoff doubles the base delay per completed attempt, capped at maxDelay,
// plus jitter so simultaneous scanners do not retry in lockstep.
func (f *Fetcher) backoff(attempt int) time.Duration {
	d := f.baseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= f.maxDelay {
			d = f.maxDelay
			break
		}
	}
	if d > f.maxDelay {
		d = f.maxDelay
	}
	return d + f.jitter()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
