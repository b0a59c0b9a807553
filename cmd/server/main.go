// Package main is the entrypoint for the error ingestion server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/renatobalun/langchain-error/internal/ai"
	"github.com/renatobalun/langchain-error/internal/api"
	"github.com/renatobalun/langchain-error/internal/api/handler"
	mw "github.com/renatobalun/langchain-error/internal/api/middleware"
	"github.com/renatobalun/langchain-error/internal/api/response"
	"github.com/renatobalun/langchain-error/internal/cache"
	"github.com/renatobalun/langchain-error/internal/config"
	"github.com/renatobalun/langchain-error/internal/ingest"
	"github.com/renatobalun/langchain-error/internal/store"
	"github.com/renatobalun/langchain-error/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	slog.SetDefault(telemetry.NewLogger(os.Stdout, os.Getenv("LOG_LEVEL")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// 1. Load config, failing fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(telemetry.NewLogger(os.Stdout, cfg.Server.LogLevel))
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	// 2. Tracing
	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	// 3. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 4. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 5. Recent-errors buffer
	buf, closeBuf, err := newBuffer(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBuf()

	// 6. Create AI provider
	provider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", provider.Name(), "model", provider.Model())

	// 7. Ingestion pipeline
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(reg)

	pgStore := store.NewPostgresStore(pool)
	svc := ingest.NewService(pgStore,
		ai.NewAnalyzer(provider, cfg.AI.InferenceTimeout),
		ai.NewSolutionGenerator(provider, cfg.AI.InferenceTimeout),
		ingest.WithObserver(telemetry.NewObserver(slog.Default(), metrics)),
	)

	// 8. Build router with dependencies
	auth := mw.NewAuth(cfg.Server.WebhookTokenHash)
	if auth.Enabled() {
		slog.Info("webhook token authentication enabled")
	}

	router := api.NewRouter(api.Dependencies{
		Auth:    auth,
		Metrics: metrics,

		StatusHandler:       handler.NewStatusHandler(buf),
		WebhookHandler:      handler.NewWebhookHandler(svc, buf),
		RecentErrorsHandler: handler.NewRecentErrorsHandler(buf),
		LatestErrorHandler:  handler.NewLatestErrorHandler(buf),
		ErrorStatsHandler:   handler.NewErrorStatsHandler(buf),
		ClearErrorsHandler:  handler.NewClearErrorsHandler(buf),

		HealthHandler:     healthHandler(pgStore, buf),
		ListErrorsHandler: handler.NewListErrorsHandler(pgStore),
		GetErrorHandler:   handler.NewGetErrorHandler(pgStore),

		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	// 9. Start HTTP server. WriteTimeout covers two inference calls.
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.AI.InferenceTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		slog.Info("shutdown signal received, draining connections...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(egCtx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}

// newBuffer returns the Redis buffer when REDIS_URL is set and an in-memory
// one otherwise.
func newBuffer(ctx context.Context, cfg *config.Config) (cache.Buffer, func(), error) {
	if cfg.Redis.URL == "" {
		slog.Info("recent-errors buffer in memory", "capacity", cfg.Buffer.Capacity)
		return cache.NewMemoryBuffer(cfg.Buffer.Capacity), func() {}, nil
	}

	rb, err := cache.NewRedisBuffer(cfg.Redis.URL, cfg.Buffer.Capacity)
	if err != nil {
		return nil, nil, fmt.Errorf("create redis buffer: %w", err)
	}
	if err := rb.Ping(ctx); err != nil {
		rb.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected", "capacity", cfg.Buffer.Capacity)
	return rb, func() { rb.Close() }, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler checks database and buffer connectivity.
func healthHandler(db, buf pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"buffer":   "ok",
		}

		if err := db.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := buf.Ping(r.Context()); err != nil {
			checks["buffer"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["buffer"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
