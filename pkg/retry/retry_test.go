package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tradecollector/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTransientFailureThenSuccess(t *testing.T) {
	w := retry.NewWriter(5, time.Millisecond, zap.NewNop())

	calls := 0
	err := w.Do(context.Background(), "put", func(ctx context.Context) error {
		calls++
		if calls <= 2 {
			return retry.MarkTransient(errors.New("connection refused"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls, "expected exactly three executions")
}

func TestNonTransientNotRetried(t *testing.T) {
	w := retry.NewWriter(5, time.Millisecond, zap.NewNop())

	boom := errors.New("schema violation")
	calls := 0
	err := w.Do(context.Background(), "append", func(ctx context.Context) error {
		calls++
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestGivesUpAfterMaxAttempts(t *testing.T) {
	w := retry.NewWriter(3, time.Millisecond, zap.NewNop())

	calls := 0
	err := w.Do(context.Background(), "zadd", func(ctx context.Context) error {
		calls++
		return retry.MarkTransient(errors.New("store busy"))
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "gave up after 3 attempts")
	assert.True(t, retry.IsTransient(err), "terminal error keeps the transient cause in its chain")
}

func TestCancelledContextStopsBackoffWait(t *testing.T) {
	w := retry.NewWriter(5, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Do(ctx, "put", func(ctx context.Context) error {
			return retry.MarkTransient(errors.New("connection reset"))
		})
	}()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Do did not return after context cancellation")
	}
}

func TestMarkTransientNil(t *testing.T) {
	assert.NoError(t, retry.MarkTransient(nil))
	assert.False(t, retry.IsTransient(nil))
	assert.False(t, retry.IsTransient(errors.New("plain")))
}
