/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the personnel compliance audit server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load YAML config, apply environment and flag overrides
  2. Initialize slog
  3. Load the salary table and open the SQLite store
  4. Create API handler, load cadres, optionally seed the demo registry
  5. Configure HTTP router, start the re-audit scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config file (optional)
  -port    HTTP server port, overrides config
  -db      SQLite database path, overrides config
           Use ":memory:" for in-memory database
  -seed    Load the full demo registry on startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the re-audit scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  ./server -config=./audit.yaml
  ./server -db=":memory:" -seed
  AUDIT_LOG_FORMAT=text ./server -port=3000

SEE ALSO:
  - config/config.go: File format and environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/personnel-audit/api"
	"github.com/warp/personnel-audit/config"
	"github.com/warp/personnel-audit/salary"
	"github.com/warp/personnel-audit/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Flags
	configPath := flag.String("config", "", "YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	seed := flag.Bool("seed", false, "Load the demo registry on startup")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *seed {
		cfg.Audit.SeedScenarios = true
	}

	logger := config.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	// Salary table
	table := salary.DefaultTable()
	if cfg.Salary.TablePath != "" {
		table, err = salary.LoadTable(cfg.Salary.TablePath)
		if err != nil {
			return fmt.Errorf("load salary table: %w", err)
		}
		logger.Info("salary table loaded", "path", cfg.Salary.TablePath, "scales", table.Scales())
	}

	// Initialize store
	st, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer st.Close()

	// Initialize handler
	handler := api.NewHandler(st, table,
		api.WithLogger(logger),
		api.WithDefaultCadre(cfg.Audit.DefaultCadre),
	)

	ctx := context.Background()
	if err := handler.LoadCadres(ctx); err != nil {
		logger.Warn("failed to load cadres", "error", err)
	}
	if cfg.Audit.SeedScenarios {
		if err := handler.LoadScenarioByID(ctx, "registry"); err != nil {
			return fmt.Errorf("seed registry: %w", err)
		}
	}

	router := api.NewRouter(handler, cfg.Server.CORSOrigins...)

	scheduler := api.NewReauditScheduler(handler, cfg.Audit.ReauditInterval.Std())
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"addr", server.Addr,
			"db", cfg.Database.Path,
			"default_cadre", cfg.Audit.DefaultCadre,
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
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
