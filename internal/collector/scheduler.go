package collector

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Runner is what the scheduler triggers per tick.
type Runner interface {
	RunCycle(ctx context.Context, symbol string)
}

// Scheduler triggers one fetch cycle per symbol at a fixed interval. Each
// symbol gets its own goroutine and cycles run synchronously inside it, so
// at most one cycle is ever in flight per symbol; a cycle delayed by
// retries simply pushes back the next tick's work. Symbols share nothing
// but the underlying store clients.
type Scheduler struct {
	symbols  []string
	interval time.Duration
	runner   Runner
	logger   *zap.Logger
	wg       sync.WaitGroup
}

func NewScheduler(symbols []string, interval time.Duration, runner Runner, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Scheduler{
		symbols:  symbols,
		interval: interval,
		runner:   runner,
		logger:   logger,
	}
}

// Start launches the per-symbol polling loops. The first cycle runs
// immediately; subsequent cycles follow the ticker until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	for _, symbol := range s.symbols {
		s.wg.Add(1)
		go func(symbol string) {
			defer s.wg.Done()

			s.logger.Info("starting collection",
				zap.String("symbol", symbol),
				zap.Duration("interval", s.interval),
			)

			s.runner.RunCycle(ctx, symbol)

			ticker := time.NewTicker(s.interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					s.logger.Info("stopping collection", zap.String("symbol", symbol))
					return
				case <-ticker.C:
					s.runner.RunCycle(ctx, symbol)
				}
			}
		}(symbol)
	}
}

// Wait blocks until all polling loops have exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
