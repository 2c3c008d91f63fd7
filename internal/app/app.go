// Package app wires configuration, logging, the analysis service and
// the HTTP surface into a runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/yourtrade2023/inventory-aging-app/internal/config"
	"github.com/yourtrade2023/inventory-aging-app/internal/infrastructure"
	"github.com/yourtrade2023/inventory-aging-app/internal/services"
	"github.com/yourtrade2023/inventory-aging-app/internal/slack"
	transporthttp "github.com/yourtrade2023/inventory-aging-app/internal/transport/http"
)

// Application holds the assembled dependency graph.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Service *services.AnalysisService
	Router  chi.Router
	Server  *http.Server
}

// NewApplication loads configuration and builds the full service graph.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	var publisher services.ReportPublisher
	if cfg.Slack.Enabled() {
		publisher = slack.NewClient(logger, cfg.Slack.BotToken, cfg.Slack.ChannelID)
		logger.Info("Slack publishing enabled", slog.String("channel_id", cfg.Slack.ChannelID))
	} else {
		logger.Info("Slack publishing disabled, no credentials configured")
	}

	service := services.NewAnalysisService(logger, publisher)
	router := transporthttp.NewRouter(cfg, service, logger)

	app := &Application{
		Config:  cfg,
		Logger:  logger,
		Service: service,
		Router:  router,
	}
	app.createServer()
	return app, nil
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start begins serving. A listen failure cancels the supplied context.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.Int("port", a.Config.Server.Port),
		slog.String("log_level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
}

// Stop gracefully shuts down the server.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run serves until interrupted, then shuts down gracefully.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	a.Start(ctx, cancel)

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
