package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shaibs3/scrapeapi/internal/config"
	"github.com/shaibs3/scrapeapi/internal/executor"
	"github.com/shaibs3/scrapeapi/internal/handlers"
	"github.com/shaibs3/scrapeapi/internal/router"
	"github.com/shaibs3/scrapeapi/internal/scraper"
	"github.com/shaibs3/scrapeapi/internal/storage"
	"github.com/shaibs3/scrapeapi/internal/telemetry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// App represents the main application
type App struct {
	config    *config.Config
	logger    *zap.Logger
	telemetry *telemetry.Telemetry
	provider  storage.DefinitionProvider
	server    *http.Server
}

func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	tel, err := telemetry.NewTelemetry(logger)
	if err != nil {
		return nil, err
	}

	factory := storage.NewDbProviderFactory(logger, tel)
	provider, err := factory.CreateProvider(cfg.DefinitionsDBConfig)
	if err != nil {
		_ = tel.Shutdown(context.Background())
		return nil, err
	}

	fetcher := scraper.NewFetcher(scraper.FetcherOptions{
		Timeout:             cfg.FetchTimeout,
		MaxRedirects:        cfg.MaxRedirects,
		MaxBodyBytes:        cfg.MaxBodyBytes,
		UserAgent:           cfg.UserAgent,
		BlockPrivateTargets: cfg.BlockPrivateTargets,
	}, logger)
	pipeline, err := scraper.NewPipeline(fetcher, logger, tel.Meter)
	if err != nil {
		_ = provider.Close()
		_ = tel.Shutdown(context.Background())
		return nil, err
	}

	handlerList := []router.Handler{
		handlers.NewDefinitionHandler(provider, logger),
		handlers.NewScrapeHandler(provider, executor.NewExecutor(pipeline), logger),
		handlers.NewHealthHandler(logger),
	}

	// A non-positive limit disables throttling
	var limiter *rate.Limiter
	if cfg.RPSLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPSLimit), cfg.RPSBurst)
	}

	appRouter := router.NewRouter(limiter, tel, logger, handlerList)
	server := appRouter.CreateServer(":" + cfg.Port)

	return &App{
		config:    cfg,
		logger:    logger,
		telemetry: tel,
		provider:  provider,
		server:    server,
	}, nil
}

// Handler exposes the HTTP handler, mainly for tests
func (app *App) Handler() http.Handler {
	return app.server.Handler
}

// Start starts the application server
func (app *App) start() error {
	app.logger.Info("starting server", zap.String("port", app.config.Port))

	go func() {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts down the application and releases the storage handle
func (app *App) stop() error {
	app.logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	serverErr := app.server.Shutdown(shutdownCtx)
	if serverErr != nil {
		app.logger.Error("server forced to shutdown", zap.Error(serverErr))
	}
	if err := app.provider.Close(); err != nil {
		app.logger.Error("failed to close definition provider", zap.Error(err))
	}
	if err := app.telemetry.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("failed to shut down telemetry", zap.Error(err))
	}
	if serverErr != nil {
		return serverErr
	}

	app.logger.Info("server exited gracefully")
	return nil
}

// Run starts the application and waits for shutdown signals
func (app *App) Run() error {
	if err := app.start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	return app.stop()
}
