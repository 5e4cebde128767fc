package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/service/metrics"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/pkg/cache"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
)

const tdBody = `{
  "status": "ok",
  "values": [
    {"datetime": "2024-10-11", "open": "101", "high": "106", "low": "100", "close": "105", "volume": "1200"},
    {"datetime": "2024-10-10", "open": "100", "high": "104", "low": "99", "close": "103", "volume": "1000"}
  ]
}`

const tdRateLimited = `{"code": 429, "message": "You have run out of API credits", "status": "error"}`

const avBody = `{
  "Time Series (Daily)": {
    "2024-10-10": {"1. open": "100", "2. high": "104", "3. low": "99", "4. close": "103", "6. volume": "1000"},
    "2024-10-11": {"1. open": "101", "2. high": "106", "3. low": "100", "4. close": "105", "6. volume": "1200"}
  }
}`

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func newTestFetcher(t *testing.T, providers []Provider, opts ...FetcherOption) *Fetcher {
	t.Helper()
	f := NewFetcher(
		providers,
		xhttp.NewClient(xhttp.WithTimeout(5*time.Second)),
		ratelimit.New(0),
		metrics.Noop{},
		testLogger(t),
		opts...,
	)
	f.sleep = func(context.Context, time.Duration) error { return nil }
	f.jitter = func() time.Duration { return 0 }
	return f
}

func assertSeries(t *testing.T, s models.Series) {
	t.Helper()
	if len(s) != 2 {
		t.Fatalf("len = %d, want 2", len(s))
	}
	if !s[0].Date.Before(s[1].Date) {
		t.Fatalf("series not ascending: %v then %v", s[0].Date, s[1].Date)
	}
	if s.Latest().Close != 105 {
		t.Fatalf("latest close = %v, want 105", s.Latest().Close)
	}
	if s[0].Volume != 1000 {
		t.Fatalf("first volume = %v, want 1000", s[0].Volume)
	}
}

func TestFetchDailyPrimarySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "AAPL" {
			t.Errorf("symbol param = %q", got)
		}
		w.Write([]byte(tdBody))
	}))
	defer srv.Close()

	td := NewTwelveData(TwelveDataConfig{BaseURL: srv.URL, Interval: "1day", OutputSize: 300, APIKey: "k"})
	f := newTestFetcher(t, []Provider{td})

	s, err := f.FetchDaily(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchDaily: %v", err)
	}
	assertSeries(t, s)
}

func TestFetchDailyRetriesOnRateLimit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.Write([]byte(tdRateLimited))
			return
		}
		w.Write([]byte(tdBody))
	}))
	defer srv.Close()

	td := NewTwelveData(TwelveDataConfig{BaseURL: srv.URL, Interval: "1day", OutputSize: 300})
	f := newTestFetcher(t, []Provider{td}, WithRetry(3, time.Millisecond, time.Second))

	s, err := f.FetchDaily(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchDaily: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	assertSeries(t, s)
}

func TestFetchDailyFallsBackToSecondProvider(t *testing.T) {
	tdSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tdRateLimited))
	}))
	defer tdSrv.Close()
	avSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(avBody))
	}))
	defer avSrv.Close()

	td := NewTwelveData(TwelveDataConfig{BaseURL: tdSrv.URL, Interval: "1day", OutputSize: 300})
	av := NewAlphaVantage(AlphaVantageConfig{BaseURL: avSrv.URL, Function: "TIME_SERIES_DAILY_ADJUSTED", OutputSize: "full"})
	f := newTestFetcher(t, []Provider{td, av}, WithRetry(2, time.Millisecond, time.Second))

	s, err := f.FetchDaily(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchDaily: %v", err)
	}
	assertSeries(t, s)
}

func TestFetchDailyThrottlesAcrossFailover(t *testing.T) {
	const minInterval = 150 * time.Millisecond

	var fallbackAt time.Time
	tdSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer tdSrv.Close()
	avSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fallbackAt = time.Now()
		w.Write([]byte(avBody))
	}))
	defer avSrv.Close()

	td := NewTwelveData(TwelveDataConfig{BaseURL: tdSrv.URL})
	av := NewAlphaVantage(AlphaVantageConfig{BaseURL: avSrv.URL})
	f := NewFetcher(
		[]Provider{td, av},
		xhttp.NewClient(xhttp.WithTimeout(5*time.Second)),
		ratelimit.New(minInterval),
		metrics.Noop{},
		testLogger(t),
		WithRetry(1, time.Millisecond, time.Second),
	)
	f.jitter = func() time.Duration { return 0 }

	start := time.Now()
	s, err := f.FetchDaily(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchDaily: %v", err)
	}
	assertSeries(t, s)
	// The fallback's first network call must still honor the shared spacing.
	if gap := fallbackAt.Sub(start); gap < minInterval {
		t.Fatalf("fallback called %v after start, want at least %v", gap, minInterval)
	}
}

func TestFetchDailyFallsBackOnEmptySeries(t *testing.T) {
	fallbackCalled := false
	tdSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ok", "values": []}`))
	}))
	defer tdSrv.Close()
	avSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fallbackCalled = true
		w.Write([]byte(avBody))
	}))
	defer avSrv.Close()

	store := cache.NewMemoryStore(cache.WithMemoryTTL(time.Hour))
	td := NewTwelveData(TwelveDataConfig{BaseURL: tdSrv.URL})
	av := NewAlphaVantage(AlphaVantageConfig{BaseURL: avSrv.URL})
	f := newTestFetcher(t, []Provider{td, av}, WithCache(store), WithRetry(2, time.Millisecond, time.Second))

	s, err := f.FetchDaily(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchDaily: %v", err)
	}
	if !fallbackCalled {
		t.Fatal("a bar-less payload must not win; the fallback provider was never tried")
	}
	assertSeries(t, s)

	// The bar-less payload must not have been cached either.
	if _, err := store.Get(context.Background(), cache.SafeKey("twelvedata_AAPL")); !errors.Is(err, cache.ErrCacheMiss) {
		t.Fatalf("cache lookup = %v, want ErrCacheMiss", err)
	}
}

func TestFetchDailyAllProvidersFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	td := NewTwelveData(TwelveDataConfig{BaseURL: srv.URL})
	av := NewAlphaVantage(AlphaVantageConfig{BaseURL: srv.URL})
	f := newTestFetcher(t, []Provider{td, av}, WithRetry(2, time.Millisecond, time.Second))

	_, err := f.FetchDaily(context.Background(), "AAPL")
	var unavailable *models.DataUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want DataUnavailableError", err)
	}
	if unavailable.Symbol != "AAPL" {
		t.Fatalf("symbol = %q", unavailable.Symbol)
	}
	var provErr *models.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("want wrapped ProviderError, got %v", err)
	}
	if provErr.Provider != "alphavantage" {
		t.Fatalf("last provider = %q, want alphavantage", provErr.Provider)
	}
}

func TestFetchDailyUsesCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(tdBody))
	}))
	defer srv.Close()

	store := cache.NewMemoryStore(cache.WithMemoryTTL(time.Hour))
	td := NewTwelveData(TwelveDataConfig{BaseURL: srv.URL})
	f := newTestFetcher(t, []Provider{td}, WithCache(store))

	for i := 0; i < 3; i++ {
		s, err := f.FetchDaily(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("FetchDaily #%d: %v", i+1, err)
		}
		assertSeries(t, s)
	}
	if calls != 1 {
		t.Fatalf("upstream calls = %d, want 1", calls)
	}
}

func TestFetchDailyDoesNotCacheRateLimitNotice(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(tdRateLimited))
			return
		}
		w.Write([]byte(tdBody))
	}))
	defer srv.Close()

	store := cache.NewMemoryStore(cache.WithMemoryTTL(time.Hour))
	td := NewTwelveData(TwelveDataConfig{BaseURL: srv.URL})
	f := newTestFetcher(t, []Provider{td}, WithCache(store), WithRetry(2, time.Millisecond, time.Second))

	s, err := f.FetchDaily(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchDaily: %v", err)
	}
	assertSeries(t, s)

	// Second fetch must come from cache and hold the good payload
	s, err = f.FetchDaily(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchDaily from cache: %v", err)
	}
	assertSeries(t, s)
	if calls != 2 {
		t.Fatalf("upstream calls = %d, want 2", calls)
	}
}

func TestAlphaVantageCheckPayloadMarkers(t *testing.T) {
	av := NewAlphaVantage(AlphaVantageConfig{})
	cases := []string{
		`{"Note": "API call frequency is 5 calls per minute"}`,
		`{"Information": "daily rate limit reached"}`,
		`{"Error Message": "Invalid API call"}`,
		`{}`,
	}
	for _, body := range cases {
		if err := av.CheckPayload([]byte(body)); err == nil {
			t.Fatalf("expected error for %s", body)
		}
	}
	if err := av.CheckPayload([]byte(avBody)); err != nil {
		t.Fatalf("good payload rejected: %v", err)
	}
}

func TestTwelveDataParseBadNumbers(t *testing.T) {
	td := NewTwelveData(TwelveDataConfig{})
	body := `{"status":"ok","values":[{"datetime":"2024-10-10","open":"","high":"x","low":"99","close":"103","volume":"1000"}]}`
	s, err := td.Parse([]byte(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(s) != 1 {
		t.Fatalf("len = %d", len(s))
	}
	if !models.IsUnknown(s[0].Open) || !models.IsUnknown(s[0].High) {
		t.Fatalf("bad fields should be unknown: %+v", s[0])
	}
	if s[0].Close != 103 {
		t.Fatalf("close = %v", s[0].Close)
	}
}
