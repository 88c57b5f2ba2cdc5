package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MarketRadar/internal/domain/repository"
	"MarketRadar/internal/service/stream"
	"MarketRadar/internal/usecase"
	"MarketRadar/pkg/config"
	xhttp "MarketRadar/pkg/http"
	applogger "MarketRadar/pkg/logger"
)

// App encapsulates the application lifecycle: the poll loop driving
// ingestion passes, the periodic refit, the trade stream and the HTTP
// read API, plus graceful shutdown of all of them.
type App struct {
	cfg       *config.Config
	logger    *applogger.Logger
	ingestor  *usecase.Ingestor
	stream    *stream.Client
	store     repository.SignalStore
	publisher repository.AlertPublisher
	handler   xhttp.Handler

	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	ingestor *usecase.Ingestor,
	streamClient *stream.Client,
	store repository.SignalStore,
	publisher repository.AlertPublisher,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:       cfg,
		logger:    log,
		ingestor:  ingestor,
		stream:    streamClient,
		store:     store,
		publisher: publisher,
		handler:   handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bootstrap the anomaly model from whatever history exists. A
	// fresh deployment simply stays untrained until enough signals
	// accumulate.
	if err := a.ingestor.Refit(ctx); err != nil {
		a.logger.Warn("startup refit failed", applogger.Error(err))
	}

	a.stream.Start(ctx)
	if a.stream.Enabled() {
		a.logger.Info("trade stream started", applogger.Strings("symbols", a.cfg.Watchlist))
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(a.cfg.Metrics.Path),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}

	go a.pollLoop(ctx)
	go a.refitLoop(ctx)

	a.logger.Info("application started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Duration("poll_interval", a.cfg.Scoring.PollInterval),
		applogger.Strings("watchlist", a.cfg.Watchlist))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// pollLoop drives full ingestion passes at the configured interval,
// starting with an immediate pass.
func (a *App) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Scoring.PollInterval)
	defer ticker.Stop()

	a.runPass(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runPass(ctx)
		}
	}
}

func (a *App) runPass(ctx context.Context) {
	start := time.Now()
	a.ingestor.RunOnce(ctx)
	a.logger.Info("ingestion pass complete", applogger.Duration("elapsed", time.Since(start)))
}

// refitLoop retrains the anomaly model periodically from stored
// history, in addition to the administrative trigger.
func (a *App) refitLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Scoring.RefitInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.ingestor.Refit(ctx); err != nil {
				a.logger.Warn("periodic refit failed", applogger.Error(err))
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.stream.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("publisher close error", applogger.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("store close error", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
