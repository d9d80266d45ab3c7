package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"ledger/internal/clock"
	"ledger/internal/config"
	"ledger/internal/database"
	"ledger/internal/handlers"
	"ledger/internal/logger"
	"ledger/internal/metrics"
	"ledger/internal/mirror"
	"ledger/internal/mirror/backend"
	"ledger/internal/services"
	"ledger/internal/validator"

	_ "ledger/internal/docs" // Import swagger docs
)

// @title           Ledger API
// @version         1.0
// @description     Expense ledger with billing periods, obligations that payments are applied against, and per-period spending summaries.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	log := logger.Get()

	validator.Register()

	// Create database manager
	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("database close failed", "error", err)
		}
	}()

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	store, err := backend.Open(ctx, cfg.Mirror)
	if err != nil {
		return fmt.Errorf("failed to open mirror: %w", err)
	}
	publisher := mirror.NewPublisher(store, cfg.Mirror.PerDayLabel, cfg.Mirror.ObligationLabel, logger.Named("mirror"), m)

	// Initialize services
	db := dbManager.DB()
	c := clock.Offset(cfg.Ledger.UTCOffsetHours)
	periodService := services.NewPeriodService(db, cfg.Ledger.StrictPeriods)
	ledger := services.NewObligationLedger(m)

	router := handlers.NewRouter(handlers.Services{
		Directory:    services.NewDirectoryService(db),
		Periods:      periodService,
		Obligations:  services.NewObligationService(db, periodService, c),
		Transactions: services.NewTransactionService(db, periodService, ledger, c, m, cfg.Ledger.PrimaryPerson),
		Summaries:    services.NewSummaryService(db, periodService, c, cfg.Ledger, publisher),
		Audit:        services.NewAuditService(db),
	}, m)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("starting ledger server",
			"port", cfg.Port,
			"db_driver", cfg.DBDriver,
			"mirror", cfg.Mirror.Backend,
			"utc_offset_hours", cfg.Ledger.UTCOffsetHours,
		)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server stopped gracefully")
	return nil
}
