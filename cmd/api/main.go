package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"minga/internal/config"
	"minga/internal/database"
	"minga/internal/health"
	handlers "minga/internal/http/handler"
	"minga/internal/http/middleware"
	"minga/internal/logger"
	"minga/internal/model"
	"minga/internal/otel"
	"minga/internal/repository/postgres"
	"minga/internal/service"
)

const (
	startupProbeTimeout = 5 * time.Second
	shutdownTimeout     = 10 * time.Second
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log := logger.New(cfg.Log)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", "error", err)
	}

	// One pooled client per datastore, shared by repositories and health checks
	reg, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize datastores", "error", err)
	}

	agg := health.NewAggregator([]health.Target{
		{Name: "postgres", Checker: reg.Postgres},
		{Name: "neo4j", Checker: reg.Graph},
	}, log, health.WithRegisterer(prometheus.DefaultRegisterer))

	logStartupHealth(ctx, agg, log)

	// Initialize repositories and services
	userRepo := postgres.NewUserPostgres(reg.Postgres)
	userSvc := service.NewUserService(userRepo)
	healthSvc := service.NewHealthService(agg)

	metrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("failed to register http metrics", "error", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(log),
		DisableStartupMessage: cfg.IsProduction(),
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(metrics.Handler())

	handlers.RegisterRoutes(app, handlers.Deps{
		Users:   userSvc,
		Health:  healthSvc,
		Metrics: prometheus.DefaultGatherer,
		Log:     log,
	})

	serveErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("http server listening", "addr", addr, "env", cfg.Env)
		serveErr <- app.Listen(addr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("http server stopped", "error", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", "error", err)
	}
	if err := reg.Close(shutdownCtx); err != nil {
		log.Error("datastore close failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("tracing shutdown failed", "error", err)
	}
	log.Info("shutdown complete")
}

// logStartupHealth probes every datastore once. Down stores are reported, not fatal.
func logStartupHealth(ctx context.Context, agg *health.Aggregator, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(ctx, startupProbeTimeout)
	defer cancel()

	status := agg.Check(ctx)
	for name, s := range status.Services {
		if s.Status == model.ServiceUp {
			log.Info("datastore reachable", "service", name)
			continue
		}
		log.Warn("datastore unreachable", "service", name, "message", s.Message)
	}
	log.Info("startup health", "status", status.Status)
}
