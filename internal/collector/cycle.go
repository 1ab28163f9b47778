package collector

import (
	"context"
	"fmt"
	"time"

	"tradecollector/pkg/venue"

	"go.uber.org/zap"
)

// VenueSource supplies one fetch cycle's raw data: the current order book
// and the venue's recent trades, in arrival order.
type VenueSource interface {
	GetOrderBook(ctx context.Context, symbol string) (*venue.OrderBookSnapshot, error)
	GetRecentTrades(ctx context.Context, symbol string) ([]venue.Trade, error)
}

// CycleProcessor ingests one cycle's snapshot and trades.
type CycleProcessor interface {
	ProcessCycle(ctx context.Context, symbol string, book *venue.OrderBookSnapshot, trades []venue.Trade)
}

// CycleRunner executes fetch cycles. A transient venue outage aborts the
// cycle and re-runs it whole after a fixed delay, up to maxRetries re-runs.
// This retry path is distinct from the per-write retry inside the pipeline.
type CycleRunner struct {
	source     VenueSource
	processor  CycleProcessor
	retryDelay time.Duration
	maxRetries int
	logger     *zap.Logger
}

func NewCycleRunner(source VenueSource, processor CycleProcessor, retryDelay time.Duration, maxRetries int, logger *zap.Logger) *CycleRunner {
	if retryDelay <= 0 {
		retryDelay = 5 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &CycleRunner{
		source:     source,
		processor:  processor,
		retryDelay: retryDelay,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// RunCycle performs one fetch cycle for a symbol. It never panics out: an
// unexpected panic is logged and the cycle abandoned so the scheduler loop
// survives.
func (r *CycleRunner) RunCycle(ctx context.Context, symbol string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("cycle panicked, abandoning",
				zap.String("symbol", symbol),
				zap.Any("panic", rec),
			)
		}
	}()

	for attempt := 0; ; attempt++ {
		err := r.fetchAndProcess(ctx, symbol)
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}

		if !venue.IsTransient(err) {
			r.logger.Error("cycle failed, abandoning",
				zap.String("symbol", symbol),
				zap.Error(err),
			)
			return
		}

		if attempt == r.maxRetries {
			r.logger.Error("giving up on cycle after repeated venue outages",
				zap.String("symbol", symbol),
				zap.Int("attempts", attempt+1),
				zap.Error(err),
			)
			return
		}

		r.logger.Warn("venue unavailable, retrying cycle",
			zap.String("symbol", symbol),
			zap.Duration("delay", r.retryDelay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.retryDelay):
		}
	}
}

func (r *CycleRunner) fetchAndProcess(ctx context.Context, symbol string) error {
	book, err := r.source.GetOrderBook(ctx, symbol)
	if err != nil {
		return fmt.Errorf("fetch order book: %w", err)
	}

	trades, err := r.source.GetRecentTrades(ctx, symbol)
	if err != nil {
		return fmt.Errorf("fetch trades: %w", err)
	}

	r.processor.ProcessCycle(ctx, symbol, book, trades)
	return nil
}
