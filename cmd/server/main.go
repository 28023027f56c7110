package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"textrecords/internal/config"
	"textrecords/internal/db"
	"textrecords/internal/jobs"
	"textrecords/internal/logging"
	"textrecords/internal/metrics"
	"textrecords/internal/server"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.IsDev(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	display, err := config.LoadYAMLConfig()
	if err != nil {
		return fmt.Errorf("load config file: %w", err)
	}

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	// Run migrations
	version, err := db.Migrate(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations completed", zap.Uint("schema_version", version))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Init(registry, database, logger)

	if cfg.IsPruningEnabled() {
		pruner := jobs.NewPruner(database, cfg.PruneInterval, cfg.RecordRetention, logger)
		go pruner.Start(ctx)
	}

	srv := server.New(cfg, display, logger)
	if err := srv.RegisterRoutes(ctx, database, registry); err != nil {
		return fmt.Errorf("register routes: %w", err)
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	cancel()
	if err := srv.Shutdown(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	metrics.Wait()
	logger.Info("server exited")
	return nil
}
