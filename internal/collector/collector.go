// Package collector wires the venue client, stores, pipeline and scheduler
// into the running service.
package collector

import (
	"context"
	"fmt"
	"net/http"

	"tradecollector/config"
	"tradecollector/internal/api"
	"tradecollector/internal/pipeline"
	"tradecollector/internal/query"
	"tradecollector/pkg/retry"
	"tradecollector/pkg/storage/redisstore"
	"tradecollector/pkg/storage/sqlite"
	"tradecollector/pkg/venue"

	"go.uber.org/zap"
)

// Run starts collection for the configured symbols and blocks until ctx is
// cancelled. Store clients are created once here and shared by every
// per-symbol loop and the query API.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := redisstore.NewClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer store.Close()

	backup, err := sqlite.InitializeAndMigrate(cfg.Backup)
	if err != nil {
		return fmt.Errorf("failed to open backup store: %w", err)
	}
	defer backup.Close()
	logger.Info("backup database initialized", zap.String("path", cfg.Backup.Path))

	apiKey, _ := cfg.Venue.Credentials(cfg.Log.Environment)
	source := venue.NewRESTClient(cfg.Venue.BaseURL, apiKey, cfg.Venue.Timeout)
	logger.Info("venue client initialized", zap.String("base_url", cfg.Venue.BaseURL))

	writer := retry.NewWriter(cfg.Collector.MaxWriteAttempts, cfg.Collector.WriteRetryBackoff, logger)
	pipe := pipeline.New(store, store, backup, writer, cfg.Collector.LargeVolumeThreshold, logger)
	runner := NewCycleRunner(source, pipe, cfg.Collector.CycleRetryDelay, cfg.Collector.MaxCycleRetries, logger)

	sched := NewScheduler(cfg.Collector.Symbols, cfg.Collector.Interval, runner, logger)
	sched.Start(ctx)

	engine := query.NewEngine(store, store, logger)
	srv := api.NewServer(cfg.API.Addr, engine, store, logger)
	go func() {
		if err := srv.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	sched.Wait()
	logger.Info("data collection stopped")
	return nil
}
