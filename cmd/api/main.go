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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
	billStore "github.com/MrJamesThe3rd/budgetwise/internal/bill/store"
	"github.com/MrJamesThe3rd/budgetwise/internal/config"
	"github.com/MrJamesThe3rd/budgetwise/internal/database"
	bwHttp "github.com/MrJamesThe3rd/budgetwise/internal/http"
	"github.com/MrJamesThe3rd/budgetwise/internal/http/auth"
	billHandler "github.com/MrJamesThe3rd/budgetwise/internal/http/bill"
	dashboardHandler "github.com/MrJamesThe3rd/budgetwise/internal/http/dashboard"
	matchingHandler "github.com/MrJamesThe3rd/budgetwise/internal/http/matching"
	paymentHandler "github.com/MrJamesThe3rd/budgetwise/internal/http/payment"
	"github.com/MrJamesThe3rd/budgetwise/internal/importer"
	"github.com/MrJamesThe3rd/budgetwise/internal/logging"
	"github.com/MrJamesThe3rd/budgetwise/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/budgetwise/internal/matching/store"
	"github.com/MrJamesThe3rd/budgetwise/internal/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.App.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var (
		matchingService = matching.NewService(matchingStore.New(db))
		billService     = bill.NewService(
			billStore.New(db),
			bill.WithMetrics(metrics.New(reg, cfg.App.Name)),
			bill.WithCategorizer(matchingService),
		)
	)

	var (
		billsH      = billHandler.NewHandler(billService, importer.NewParser())
		paymentsH   = paymentHandler.NewHandler(billService)
		dashboardH  = dashboardHandler.NewHandler(billService)
		categoriesH = matchingHandler.NewHandler(matchingService)
	)

	opts := bwHttp.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}

	if cfg.Server.JWTSecret != "" {
		opts.Verifier = auth.NewVerifier(cfg.Server.JWTSecret)
	} else {
		slog.Warn("JWT_SECRET is empty, API authentication is disabled")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           bwHttp.New(billsH, paymentsH, dashboardH, categoriesH, opts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	go billService.RunStatusSweeper(ctx, cfg.Server.StatusInterval)

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", srv.Addr, "service", cfg.App.Name)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
