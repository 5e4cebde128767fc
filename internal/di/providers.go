package di

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/repository"
	"StockPulse/internal/handler/api"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/service/conditions"
	"StockPulse/internal/service/marketdata"
	"StockPulse/internal/service/notify"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/usecase"
	cachepkg "StockPulse/pkg/cache"
	pkgch "StockPulse/pkg/clickhouse"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
		Output: cfg.App.LogOutput,
	})
}

// ProvideHTTPClient creates the shared outbound HTTP client.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(cfg.Data.Timeout))
}

// ProvideCache creates the response cache store, or nil when caching is off.
func ProvideCache(cfg *config.Config) (cachepkg.Store, error) {
	c := cfg.Data.Cache
	if !c.Enabled {
		return nil, nil
	}
	switch c.Backend {
	case "memory":
		return cachepkg.NewMemoryStore(cachepkg.WithMemoryTTL(c.TTL)), nil
	case "file":
		return cachepkg.NewFileStore(c.Dir, c.TTL)
	case "redis":
		return cachepkg.NewRedisStore(
			cachepkg.WithRedisHost(c.Redis.Host),
			cachepkg.WithRedisPort(c.Redis.Port),
			cachepkg.WithRedisPassword(c.Redis.Password),
			cachepkg.WithRedisDB(c.Redis.DB),
			cachepkg.WithRedisTTL(c.TTL),
		)
	case "layered":
		l2, err := cachepkg.NewRedisStore(
			cachepkg.WithRedisHost(c.Redis.Host),
			cachepkg.WithRedisPort(c.Redis.Port),
			cachepkg.WithRedisPassword(c.Redis.Password),
			cachepkg.WithRedisDB(c.Redis.DB),
			cachepkg.WithRedisTTL(c.TTL),
		)
		if err != nil {
			return nil, err
		}
		return cachepkg.NewLayeredStore(l2, cachepkg.WithMemoryTTL(c.TTL)), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", c.Backend)
	}
}

// ProvideThrottle creates the outbound request throttle.
func ProvideThrottle(cfg *config.Config) *ratelimit.Throttle {
	if !cfg.Data.RateLimit.Enabled {
		return ratelimit.New(0)
	}
	return ratelimit.New(cfg.Data.RateLimit.MinInterval)
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideMarketData assembles the provider chain and the fetcher.
func ProvideMarketData(
	cfg *config.Config,
	client *xhttp.Client,
	store cachepkg.Store,
	throttle *ratelimit.Throttle,
	m repository.Metrics,
	log *applogger.Logger,
) repository.MarketData {
	byName := map[string]marketdata.Provider{
		"twelvedata": marketdata.NewTwelveData(marketdata.TwelveDataConfig{
			BaseURL:    cfg.Data.TwelveData.BaseURL,
			Interval:   cfg.Data.TwelveData.Interval,
			OutputSize: cfg.Data.TwelveData.OutputSize,
			APIKey:     cfg.Data.TwelveData.APIKey,
		}),
		"alphavantage": marketdata.NewAlphaVantage(marketdata.AlphaVantageConfig{
			BaseURL:    cfg.Data.AlphaVantage.BaseURL,
			Function:   cfg.Data.AlphaVantage.Function,
			OutputSize: cfg.Data.AlphaVantage.OutputSize,
			APIKey:     cfg.Data.AlphaVantage.APIKey,
		}),
	}
	providers := []marketdata.Provider{byName[cfg.Data.ProviderPrimary]}
	if cfg.Data.ProviderFallback != cfg.Data.ProviderPrimary {
		providers = append(providers, byName[cfg.Data.ProviderFallback])
	}

	opts := []marketdata.FetcherOption{
		marketdata.WithRetry(cfg.Data.Retry.MaxAttempts, cfg.Data.Retry.BaseDelay, cfg.Data.Retry.MaxDelay),
	}
	if store != nil {
		opts = append(opts, marketdata.WithCache(store))
	}
	return marketdata.NewFetcher(providers, client, throttle, m, log, opts...)
}

// ProvideConditionsSource creates the NFCI fetcher.
func ProvideConditionsSource(cfg *config.Config, client *xhttp.Client, log *applogger.Logger) repository.ConditionsSource {
	return conditions.NewNFCI(conditions.Config{
		CSVURL:       cfg.Nfci.CSVURL,
		FredNfciURL:  cfg.Nfci.FredNfciURL,
		FredAnfciURL: cfg.Nfci.FredAnfciURL,
	}, client, log)
}

// ProvideNotifier assembles the enabled notification channels.
func ProvideNotifier(cfg *config.Config, client *xhttp.Client, log *applogger.Logger) repository.Notifier {
	var channels []notify.Channel
	if cfg.Notifications.SlackEnabled {
		channels = append(channels, notify.NewSlack(client))
	}
	if cfg.Notifications.PushoverEnabled {
		channels = append(channels, notify.NewPushover(client))
	}
	if cfg.Notifications.EmailEnabled {
		channels = append(channels, notify.NewEmail())
	}
	return notify.New(log, channels...)
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", cfg.ClickHouse.Database),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideRegimeLog creates the regime log, backed by ClickHouse when enabled.
func ProvideRegimeLog(chClient *pkgch.Client, cfg *config.Config) repository.RegimeLog {
	if chClient == nil {
		return internalrepo.NewNoopRegimeLog()
	}
	return internalrepo.NewClickHouseRegimeLog(chClient.DB(), cfg.ClickHouse.Database+".regime_log")
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher creates the scan event publisher.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.EventPublisher {
	if producer == nil {
		return internalrepo.NewNoopEvents()
	}
	return internalrepo.NewKafkaEvents(producer, cfg.Kafka.Topic)
}

// ProvideScanConfig merges the main config with the external rules file.
func ProvideScanConfig(cfg *config.Config) (usecase.ScanConfig, error) {
	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return usecase.ScanConfig{}, fmt.Errorf("timezone %q: %w", cfg.App.Timezone, err)
	}

	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		return usecase.ScanConfig{}, err
	}

	return usecase.ScanConfig{
		Symbols:   cfg.Symbols,
		Benchmark: cfg.Benchmark,
		Location:  loc,
		Filters: usecase.FilterParams{
			Drawdown20DMax:     cfg.Filters.Drawdown20DMax,
			High52WMaxMultiple: cfg.Filters.High52WMaxMultiple,
			SMA50Tolerance:     cfg.Filters.SMA50Tolerance,
			Tolerance:          cfg.Filters.Tolerance,
		},
		Triggers: usecase.TriggerParams{
			Pullback25Enabled:  cfg.Triggers.Pullback25Enabled,
			Pullback50Enabled:  cfg.Triggers.Pullback50Enabled,
			Breakout20DEnabled: cfg.Triggers.Breakout20DEnabled,
			BreakoutVolumeMult: cfg.Triggers.BreakoutVolumeMult,
			DDWindow:           rules.IntParam("FILTER_DD_002", "window_days", 90),
			DDMax:              rules.FloatParam("FILTER_DD_002", "dd_max", 0.25),
		},
	}, nil
}

// ProvideScanner creates the scan use case.
func ProvideScanner(
	scanCfg usecase.ScanConfig,
	market repository.MarketData,
	conditionsSource repository.ConditionsSource,
	notifier repository.Notifier,
	regimeLog repository.RegimeLog,
	events repository.EventPublisher,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.Scanner {
	return usecase.NewScanner(scanCfg, market, conditionsSource, notifier, regimeLog, events, m, log)
}

// ProvideHTTPHandler creates the API handler.
func ProvideHTTPHandler(log *applogger.Logger, scanner *usecase.Scanner, regimeLog repository.RegimeLog) xhttp.Handler {
	return api.NewScanHandler(log, scanner, regimeLog)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	scanner *usecase.Scanner,
	handler xhttp.Handler,
	regimeLog repository.RegimeLog,
	events repository.EventPublisher,
	store cachepkg.Store,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, log, scanner, handler, regimeLog, events, store, chClient)
}
