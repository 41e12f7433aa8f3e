/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the condominium ledger server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env, environment and optional YAML file (config.Load)
  2. Apply command-line overrides, validate
  3. Build the zap logger
  4. Open the store (sqlite or memory) and register metrics
  5. Create API handler and router
  6. Start the overdue sweep scheduler
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides SQLITE_DB_PATH)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the sweep scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/condo.db"

  # Run with in-memory store, no persistence
  DATA_BACKEND=memory ./server

  # Run on different port with a config file
  CONDO_CONFIG=./condo.yaml ./server -port=3000

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/warp/condo-ledger/api"
	"github.com/warp/condo-ledger/config"
	"github.com/warp/condo-ledger/core"
	"github.com/warp/condo-ledger/core/store"
	"github.com/warp/condo-ledger/observability/logger"
	"github.com/warp/condo-ledger/observability/metrics"
	"github.com/warp/condo-ledger/store/sqlite"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags
	port := flag.String("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.SQLiteDBPath, "SQLite database path")
	flag.Parse()
	cfg.Port = *port
	cfg.SQLiteDBPath = *dbPath

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zl, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	// Initialize store
	st, db, closeStore, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	metrics.Init(prometheus.DefaultRegisterer, db, zl)

	clock := core.SystemClock{Location: cfg.Location()}

	// Initialize handler
	handler := api.NewHandler(st, clock, zl)
	handler.Billing.Generator.Concurrency = cfg.BatchConcurrency
	handler.Billing.Generator.WriteTimeout = cfg.BatchWriteTimeout

	scheduler := api.NewOverdueSweepScheduler(handler.Sweeper, zl)
	scheduler.CheckInterval = cfg.SweepInterval
	scheduler.Enabled = cfg.SweepEnabled
	handler.Scheduler = scheduler
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(handler, api.RouterOptions{AllowedOrigins: cfg.CORSAllowedOrigins})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)

	// Start server in goroutine
	go func() {
		zl.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("backend", cfg.DataBackend),
			zap.String("timezone", cfg.Timezone),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		zl.Info("shutting down", zap.String("signal", sig.String()))
	}

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	zl.Info("server stopped")
	return nil
}

// openStore returns the configured backend. db is nil for the memory
// backend.
func openStore(cfg *config.Config) (core.Store, *sql.DB, func(), error) {
	switch cfg.DataBackend {
	case config.BackendMemory:
		return store.NewMemory(), nil, func() {}, nil
	default:
		s, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, s.DB(), func() { s.Close() }, nil
	}
}
