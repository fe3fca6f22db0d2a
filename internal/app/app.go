package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/sundayezeilo/linkadmin/internal/config"
	"github.com/sundayezeilo/linkadmin/internal/links"
	"github.com/sundayezeilo/linkadmin/internal/metrics"
	"github.com/sundayezeilo/linkadmin/internal/server"
)

// App holds the application dependencies and configuration.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Catalog *links.Catalog
	Server  *server.Server
	Handler *links.Handler
}

// New initializes and returns a new App instance with all dependencies wired up.
func New(ctx context.Context) (*App, error) {
	if err := loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.App.LogLevel)

	logger.Info("starting application",
		"env", cfg.App.Environment,
		"data_file", cfg.Storage.DataFile,
		"storage_reload", cfg.Storage.Reload,
	)

	// Collectors are registered even when the listener is disabled.
	registry, collectors := metrics.NewRegistry()

	catalog, err := links.NewCatalog(links.NewFileStore(cfg.Storage.DataFile), &links.CatalogConfig{
		Reload:   cfg.Storage.Reload,
		Logger:   logger,
		Recorder: collectors,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open links document: %w", err)
	}

	handler := links.NewHandler(links.HandlerConfig{
		Service: catalog,
		Logger:  logger,
	})

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics, registry, catalog.Check, logger)
	} else {
		logger.Info("metrics listener disabled")
	}

	srv := server.New(cfg, logger, handler, metricsServer)

	logger.Info("application initialized",
		"port", cfg.Server.Port,
		"https_port", cfg.TLS.HTTPSPort,
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Catalog: catalog,
		Server:  srv,
		Handler: handler,
	}, nil
}

// Start starts the application server.
func (a *App) Start(ctx context.Context) error {
	a.Logger.Info("server starting",
		"port", a.Config.Server.Port,
	)

	if err := a.Server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// loadEnv loads a .env file outside production. A missing file is not an error.
func loadEnv() error {
	if os.Getenv("APP_ENV") == "production" {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			log.Println("no .env file found.")
			return nil
		}
		return err
	}
	return nil
}

// setupLogger creates a structured logger based on the log level.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
