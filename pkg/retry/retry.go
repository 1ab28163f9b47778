// Package retry wraps storage side effects with bounded fixed-backoff retry.
//
// Only failures marked transient (connection loss, store busy/locked) are
// retried; anything else propagates immediately. Every attempt re-executes
// the identical operation, so wrapped operations must be idempotent at the
// storage layer.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrTransient marks failures expected to resolve on retry.
var ErrTransient = errors.New("transient storage error")

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }

func (e *transientError) Unwrap() error { return e.err }

func (e *transientError) Is(target error) bool { return target == ErrTransient }

// MarkTransient tags err as retryable. Store clients call this when they
// classify a failure as connectivity or busy/locked.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked retryable.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// Writer executes storage operations with a bounded number of attempts and a
// fixed backoff between them.
type Writer struct {
	maxAttempts int
	backoff     time.Duration
	logger      *zap.Logger
}

func NewWriter(maxAttempts int, backoff time.Duration, logger *zap.Logger) *Writer {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if backoff <= 0 {
		backoff = 5 * time.Second
	}
	return &Writer{
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      logger,
	}
}

// Do runs op until it succeeds, fails non-transiently, runs out of attempts,
// or ctx is cancelled. name appears in logs and the terminal error.
func (w *Writer) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			if attempt > 1 {
				w.logger.Info("operation succeeded after retry",
					zap.String("op", name),
					zap.Int("attempt", attempt),
				)
			}
			return nil
		}

		if !IsTransient(err) {
			return err
		}
		lastErr = err

		if attempt == w.maxAttempts {
			break
		}

		w.logger.Warn("transient failure, retrying",
			zap.String("op", name),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", w.backoff),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.backoff):
		}
	}

	return fmt.Errorf("%s: gave up after %d attempts: %w", name, w.maxAttempts, lastErr)
}
