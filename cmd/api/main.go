// Package main is the entrypoint for the Vidrate API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/vidrate/vidrate/internal/analytics"
	"github.com/vidrate/vidrate/internal/catalog"
	"github.com/vidrate/vidrate/internal/config"
	"github.com/vidrate/vidrate/internal/handler"
	"github.com/vidrate/vidrate/internal/metrics"
	"github.com/vidrate/vidrate/internal/middleware"
	"github.com/vidrate/vidrate/internal/model"
	"github.com/vidrate/vidrate/internal/server"
	"github.com/vidrate/vidrate/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Codec catalog: external input, loaded once at startup.
	codecCatalog, err := loadCatalog(cfg)
	if err != nil {
		logger.Error("failed to load catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	logger.Info("catalog loaded", "categories", len(codecCatalog.Categories))

	// Primary usage store (Redis).
	primary, err := store.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to Redis",
			slog.String("error", err.Error()),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer primary.Close()
	logger.Info("connected to Redis")

	// Backup usage store (Postgres), optional.
	var backup *store.PostgresStore
	if cfg.DatabaseURL != "" {
		backup, err = store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database",
				slog.String("error", err.Error()),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		defer backup.Close()
		logger.Info("connected to database")
	} else {
		logger.Info("backup store disabled, DATABASE_URL not set")
	}

	recorder := metrics.NewInMemory()

	// backup is declared as a concrete type; hand the aggregator a nil
	// interface, not a typed nil, when the tier is disabled.
	var backupBackend store.Backend
	if backup != nil {
		backupBackend = backup
	}

	aggregator := analytics.New(primary, backupBackend, logger, recorder, analytics.Options{
		QueueSize:         cfg.IncrementQueueSize,
		OpTimeout:         cfg.StoreOpTimeout,
		WriteAttempts:     cfg.WriteAttempts,
		RetentionDays:     cfg.RetentionDays,
		MaxConfigurations: cfg.MaxConfigurations,
		DedupWindow:       cfg.DedupWindow,
		DefaultFrameRate:  cfg.DefaultFrameRate,
	})

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()
	go func() {
		if err := aggregator.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("aggregator stopped", "error", err)
		}
	}()

	r := setupRouter(codecCatalog, aggregator, primary, backup, recorder, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("usage-aggregator", aggregator.Shutdown)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadCatalog reads the configured catalog file, or falls back to the
// built-in default catalog.
func loadCatalog(cfg *config.Config) (*model.CodecCatalog, error) {
	if cfg.CatalogPath == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.CatalogPath)
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	codecCatalog *model.CodecCatalog,
	aggregator *analytics.Aggregator,
	primary *store.RedisStore,
	backup *store.PostgresStore,
	recorder *metrics.InMemoryRecorder,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	calculateHandler := handler.NewCalculateHandler(codecCatalog, cfg.DefaultFrameRate, logger, recorder)
	statsHandler := handler.NewStatsHandler(aggregator, logger)
	catalogHandler := handler.NewCatalogHandler(codecCatalog)
	metricsHandler := handler.NewMetricsHandler(recorder)

	var backupChecker handler.HealthChecker
	if backup != nil {
		backupChecker = backup
	}
	healthHandler := handler.NewHealthHandler(primary, backupChecker)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/calculate", calculateHandler.Calculate)
		r.Get("/availability", calculateHandler.Availability)
		r.Post("/track", statsHandler.Track)
		r.Get("/stats/top", statsHandler.Top)
		r.Get("/stats/usage", statsHandler.Usage)
		r.Get("/catalog", catalogHandler.Get)

		// Administrative operations, gated by the capability key.
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminKey(cfg.AdminKeyHash, logger))
			r.Delete("/stats", statsHandler.Clear)
		})
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

// redactURL hides credentials in connection URLs for logging.
func redactURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}
	if parsed.User != nil {
		parsed.User = url.UserPassword("***", "***")
	}
	return parsed.String()
}
