//go:build unit

package db_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"storefront-api/internal/infra/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConn struct {
	pingErr error
	closed  atomic.Bool
}

func (c *stubConn) Ping(_ context.Context) error { return c.pingErr }
func (c *stubConn) Close()                       { c.closed.Store(true) }

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// recordedSleep swallows backoff waits and records their durations.
func recordedSleep(record *[]time.Duration) func(ctx context.Context, d time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*record = append(*record, d)
		return nil
	}
}

func TestRetryingConnector_Connect(t *testing.T) {
	ctx := context.Background()
	cfg := db.RetryConfig{
		MaxAttempts:    3,
		AttemptTimeout: time.Second,
		Backoff:        []time.Duration{500 * time.Millisecond, 1500 * time.Millisecond, 3 * time.Second},
	}

	t.Run("success: first attempt returns the connection without backoff", func(t *testing.T) {
		want := &stubConn{}
		var calls atomic.Int32
		c := db.NewRetryingConnector(cfg, testLogger(), func(_ context.Context) (*stubConn, error) {
			calls.Add(1)
			return want, nil
		})
		var sleeps []time.Duration
		c.SetSleep(recordedSleep(&sleeps))

		got, err := c.Connect(ctx)

		require.NoError(t, err)
		assert.Same(t, want, got)
		assert.Equal(t, int32(1), calls.Load())
		assert.Empty(t, sleeps)
	})

	t.Run("success: transient failures are retried on the fixed schedule", func(t *testing.T) {
		want := &stubConn{}
		var calls atomic.Int32
		c := db.NewRetryingConnector(cfg, testLogger(), func(_ context.Context) (*stubConn, error) {
			if calls.Add(1) < 3 {
				return nil, errors.New("connection refused")
			}
			return want, nil
		})
		var sleeps []time.Duration
		c.SetSleep(recordedSleep(&sleeps))

		got, err := c.Connect(ctx)

		require.NoError(t, err)
		assert.Same(t, want, got)
		assert.Equal(t, int32(3), calls.Load())
		assert.Equal(t, []time.Duration{500 * time.Millisecond, 1500 * time.Millisecond}, sleeps)
	})

	t.Run("error: exhaustion surfaces ConnectionError with the last cause", func(t *testing.T) {
		lastErr := errors.New("still down")
		var calls atomic.Int32
		c := db.NewRetryingConnector(cfg, testLogger(), func(_ context.Context) (*stubConn, error) {
			calls.Add(1)
			return nil, lastErr
		})
		var sleeps []time.Duration
		c.SetSleep(recordedSleep(&sleeps))

		_, err := c.Connect(ctx)

		require.Error(t, err)
		var connErr *db.ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.Equal(t, 3, connErr.Attempts)
		assert.ErrorIs(t, err, lastErr)
		// No wait after the final attempt.
		assert.Len(t, sleeps, 2)
	})

	t.Run("error: a hanging dial is cut off by the attempt deadline", func(t *testing.T) {
		short := cfg
		short.MaxAttempts = 1
		short.AttemptTimeout = 20 * time.Millisecond
		c := db.NewRetryingConnector(short, testLogger(), func(ctx context.Context) (*stubConn, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

		start := time.Now()
		_, err := c.Connect(ctx)

		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("a connection arriving after the deadline is closed, not leaked", func(t *testing.T) {
		short := cfg
		short.MaxAttempts = 1
		short.AttemptTimeout = 10 * time.Millisecond
		late := &stubConn{}
		c := db.NewRetryingConnector(short, testLogger(), func(_ context.Context) (*stubConn, error) {
			time.Sleep(50 * time.Millisecond)
			return late, nil
		})

		_, err := c.Connect(ctx)

		require.Error(t, err)
		assert.Eventually(t, func() bool { return late.closed.Load() },
			time.Second, 5*time.Millisecond)
	})

	t.Run("a dial finishing before attempt listens is still handed out", func(t *testing.T) {
		short := cfg
		short.MaxAttempts = 1
		short.AttemptTimeout = time.Second
		// An immediate dial can outrun the select in attempt(); the result
		// must be kept for it, never discarded and re-dialed into a timeout.
		for i := 0; i < 200; i++ {
			want := &stubConn{}
			c := db.NewRetryingConnector(short, testLogger(), func(_ context.Context) (*stubConn, error) {
				return want, nil
			})

			start := time.Now()
			got, err := c.Connect(ctx)

			require.NoError(t, err)
			require.Same(t, want, got)
			require.False(t, want.closed.Load())
			require.Less(t, time.Since(start), 500*time.Millisecond)
		}
	})

	t.Run("backoff schedule shorter than attempts reuses the last entry", func(t *testing.T) {
		short := db.RetryConfig{
			MaxAttempts:    4,
			AttemptTimeout: time.Second,
			Backoff:        []time.Duration{100 * time.Millisecond, 200 * time.Millisecond},
		}
		c := db.NewRetryingConnector(short, testLogger(), func(_ context.Context) (*stubConn, error) {
			return nil, errors.New("nope")
		})
		var sleeps []time.Duration
		c.SetSleep(recordedSleep(&sleeps))

		_, err := c.Connect(ctx)

		require.Error(t, err)
		assert.Equal(t, []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			200 * time.Millisecond,
		}, sleeps)
	})

	t.Run("cancelled context stops the retry loop during backoff", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		var calls atomic.Int32
		c := db.NewRetryingConnector(cfg, testLogger(), func(_ context.Context) (*stubConn, error) {
			calls.Add(1)
			cancel()
			return nil, errors.New("refused")
		})

		_, err := c.Connect(cctx)

		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})
}
