package main

import (
	"context"
	"os/signal"
	"syscall"

	"tradecollector/config"
	"tradecollector/internal/collector"
	"tradecollector/logger"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	// stop on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run collector
	if err := collector.Run(ctx, cfg, log); err != nil {
		log.Fatal("collector failed", zap.Error(err))
	}
}
