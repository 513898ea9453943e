package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "libnext-backend/internal/api/http"
	"libnext-backend/internal/config"
	"libnext-backend/internal/logger"
	"libnext-backend/internal/repository/postgres"
	"libnext-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	createSchema := flag.Bool("create-schema", true, "Create the schema and tables if they are missing")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Lib-Next Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "schema", cfg.Database.Schema)
	logger.Info("Lending configuration", "charge_per_day", cfg.Lending.ChargePerDay, "charge_limit", cfg.Lending.ChargeLimit, "lock_stock_on_borrow", cfg.Lending.LockStockOnBorrow)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if *createSchema {
		if err := postgres.CreateSchema(ctx, db, cfg.Database.Schema); err != nil {
			logger.Error("Failed to create schema", "error", err)
			log.Fatalf("Failed to create schema: %v", err)
		}
	}

	// Initialize Repositories
	store := postgres.NewStore(db, cfg.Database.Schema)

	// Initialize Services
	policy := service.NewChargePolicy(cfg.Lending)
	userSvc := service.NewUserService(store.UserRepository)
	bookSvc := service.NewBookService(store.BookRepository)
	ledgerSvc := service.NewLedgerService(store.TransactionRepository, policy)
	lendingSvc := service.NewLendingService(
		service.NewStockValidator(store.BookRepository),
		service.NewCreditValidator(store.TransactionRepository, policy),
		ledgerSvc,
		store.TransactionRepository,
		cfg.Lending.LockStockOnBorrow,
	)

	// Set up HTTP server
	handler := httpapi.NewHandler(userSvc, bookSvc, ledgerSvc, lendingSvc, store)
	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      httpapi.NewRouter(handler, cfg.Server.AllowedOrigins),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
