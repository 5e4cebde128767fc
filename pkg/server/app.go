package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/usecase"
	cachepkg "StockPulse/pkg/cache"
	pkgch "StockPulse/pkg/clickhouse"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
)

// App owns the process lifecycle. Default mode is one-shot: run a single scan
// and exit, which is how a cron deployment uses it. With server.enabled the
// scan repeats on an interval and the API serves the latest result.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	scanner   *usecase.Scanner
	handler   xhttp.Handler
	regimeLog drepo.RegimeLog
	events    drepo.EventPublisher
	store     cachepkg.Store
	chClient  *pkgch.Client

	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	scanner *usecase.Scanner,
	handler xhttp.Handler,
	regimeLog drepo.RegimeLog,
	events drepo.EventPublisher,
	store cachepkg.Store,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		scanner:   scanner,
		handler:   handler,
		regimeLog: regimeLog,
		events:    events,
		store:     store,
		chClient:  chClient,
	}
}

// Run executes the configured mode and blocks until done or interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.regimeLog.Init(ctx); err != nil {
		a.log.Error("regime log init failed", applogger.Error(err))
		// Scans still run; persistence errors are reported per append
	}

	if !a.cfg.Server.Enabled {
		defer a.shutdown(context.Background())
		// One-shot mode exits cleanly even on a failed scan; the failure has
		// already been notified and logged.
		if _, err := a.scanner.Run(ctx); err != nil {
			a.log.Error("scan failed", applogger.Error(err))
		}
		return nil
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	if _, err := a.scanner.Run(ctx); err != nil {
		a.log.Error("initial scan failed", applogger.Error(err))
	}

	ticker := time.NewTicker(a.cfg.Server.ScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			return a.shutdown(context.Background())
		case <-ticker.C:
			if _, err := a.scanner.Run(ctx); err != nil {
				a.log.Error("scheduled scan failed", applogger.Error(err))
			}
		}
	}
}

func (a *App) shutdown(ctx context.Context) error {
	if a.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}
	if err := a.events.Close(); err != nil {
		a.log.Warn("event publisher close error", applogger.Error(err))
	}
	if err := a.regimeLog.Close(); err != nil {
		a.log.Warn("regime log close error", applogger.Error(err))
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	a.log.Info("shutdown complete")
	return nil
}
