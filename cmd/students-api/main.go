// main is the entry point of the Student API.
//
// STARTUP SEQUENCE:
//  1. Load configuration (YAML file if given, then environment)
//  2. Initialise the logger
//  3. Connect to the database and make sure the students table exists
//  4. Build the router
//  5. Serve HTTP in a separate goroutine
//  6. Block until SIGINT or SIGTERM, then shut down gracefully
//
// RUNNING THE SERVER:
//
//	go run ./cmd/students-api --config=config/local.yaml
//
// or, configured purely by environment:
//
//	DB_HOST=localhost DB_PASSWORD=secret go run ./cmd/students-api
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

	"github.com/aanand-mishra/student-api/internal/config"
	"github.com/aanand-mishra/student-api/internal/http/router"
	"github.com/aanand-mishra/student-api/internal/storage"
	"github.com/aanand-mishra/student-api/internal/storage/postgres"
	"github.com/aanand-mishra/student-api/internal/storage/sqlite"
)

const version = "1.0.0"

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting student-api",
		slog.String("env", cfg.Env),
		slog.String("version", version),
	)

	store, err := openStorage(context.Background(), cfg.Database)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	log.Info("storage initialised", slog.String("driver", cfg.Database.Driver))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	server := &http.Server{
		Addr: cfg.HTTPServer.Addr,
		Handler: router.New(router.Options{
			Storage:  store,
			CORS:     cfg.CORS,
			Logger:   log,
			Registry: registry,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server started",
			slog.String("address", cfg.HTTPServer.Addr),
			slog.Any("allowed_origins", cfg.CORS.AllowedOrigins))

		// ErrServerClosed is the normal result of Shutdown.
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
		return
	}

	log.Info("server stopped gracefully")
}

// openStorage returns the backend selected by cfg.Driver.
func openStorage(ctx context.Context, cfg config.Database) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.New(ctx, cfg)
	case config.DriverSQLite:
		return sqlite.New(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// dev (and anything unrecognised) gets human-readable text at DEBUG level;
// staging and prod get JSON, which log aggregators ingest directly.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
