package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/crm-api/internal/api/router"
	appconfig "github.com/wolfman30/crm-api/internal/config"
	"github.com/wolfman30/crm-api/internal/contacts"
	"github.com/wolfman30/crm-api/internal/crm"
	"github.com/wolfman30/crm-api/internal/http/handlers"
	"github.com/wolfman30/crm-api/internal/leads"
	"github.com/wolfman30/crm-api/internal/observability/metrics"
	"github.com/wolfman30/crm-api/internal/observability/tracing"
	"github.com/wolfman30/crm-api/pkg/logging"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewWithWriter(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	logger.Info("starting crm API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"store", storeName(cfg),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, err := tracing.NewProvider(ctx, cfg.OTelExporterEndpoint, cfg.OTelServiceName, cfg.OTelExporterInsecure)
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	tracer.SetGlobal()

	var pool *pgxpool.Pool
	if cfg.UsesPostgres() {
		pool = connectPostgresPool(ctx, cfg.DatabaseURL, logger)
		if pool == nil {
			os.Exit(1)
		}
		defer pool.Close()
	}

	metricsHandler, crmMetrics := setupMetrics()
	svc := buildService(pool, crmMetrics, logger)

	if cfg.SeedData {
		if err := svc.Seed(ctx); err != nil {
			logger.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      buildRouter(cfg, svc, metricsHandler, crmMetrics, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := tracer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("tracer shutdown failed", "error", err)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func storeName(cfg *appconfig.Config) string {
	if cfg.UsesPostgres() {
		return "postgres"
	}
	return "memory"
}

// connectPostgresPool returns nil when url is empty or the database is unreachable.
func connectPostgresPool(ctx context.Context, url string, logger *logging.Logger) *pgxpool.Pool {
	if url == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("failed to ping postgres", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

func setupMetrics() (http.Handler, *metrics.CRMMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewCRMMetrics(reg)
}

// buildService wires the Postgres stores when pool is set and the in-memory
// stores otherwise.
func buildService(pool *pgxpool.Pool, recorder crm.CascadeRecorder, logger *logging.Logger) *crm.Service {
	opts := []crm.Option{crm.WithLogger(logger), crm.WithRecorder(recorder)}
	if pool == nil {
		return crm.NewService(contacts.NewInMemoryRepository(), leads.NewInMemoryRepository(), opts...)
	}
	opts = append(opts, crm.WithCascader(crm.NewPostgresCascader(pool)))
	return crm.NewService(contacts.NewPostgresRepository(pool), leads.NewPostgresRepository(pool), opts...)
}

func buildRouter(cfg *appconfig.Config, svc *crm.Service, metricsHandler http.Handler, crmMetrics *metrics.CRMMetrics, logger *logging.Logger) http.Handler {
	return router.New(&router.Config{
		Logger:             logger,
		Contacts:           handlers.NewContactsHandler(svc, logger),
		Leads:              handlers.NewLeadsHandler(svc, logger),
		MetricsHandler:     metricsHandler,
		Metrics:            crmMetrics,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})
}
