package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/powerofaum/payments/config"
	"github.com/powerofaum/payments/internal/api"
	"github.com/powerofaum/payments/internal/billing"
	"github.com/powerofaum/payments/internal/database"
	"github.com/powerofaum/payments/internal/dedup"
	"github.com/powerofaum/payments/internal/logger"
	"github.com/powerofaum/payments/internal/metrics"
	middlewares "github.com/powerofaum/payments/internal/middleware"
	"github.com/powerofaum/payments/internal/reporting"
	"github.com/powerofaum/payments/internal/store"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting PowerOfAum Payments API",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close(ctx)

	// Initialize ledger store
	ledger := store.New(db)

	// Webhook event dedup is optional; without Redis the ledger's
	// session-id uniqueness still keeps reconciliation idempotent.
	var dedupMgr *dedup.Manager
	if cfg.Redis.URL != "" {
		dedupMgr, err = dedup.NewManager(cfg.Redis.URL, cfg.Redis.EventTTL)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer dedupMgr.Close()
		logger.Info("Webhook event dedup enabled", "ttl", cfg.Redis.EventTTL)
	}

	// Initialize billing service and reporting aggregator
	processor := billing.NewStripeProcessor(cfg.Stripe)
	billingSvc := billing.NewService(cfg.Stripe, ledger, processor)
	aggregator := reporting.New(ledger)

	// Setup HTTP server
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.Logging)
	r.Use(middlewares.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.ReadTimeout))
	r.Use(middlewares.Security)

	// Initialize API handlers
	apiHandler := api.NewHandler(ledger, billingSvc, aggregator, dedupMgr, Version, BuildTime, GitCommit)
	sessionLimit := middlewares.SessionRateLimit(cfg.Server.SessionRequestsPerSec, cfg.Server.SessionRequestBurst)
	apiHandler.RegisterRoutes(r, sessionLimit)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.Metrics.Enabled {
		g.Go(func() error {
			startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server exited")
}

func startMetricsServer(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", "address", addr, "path", path)

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server failed", "error", err)
	}
}
