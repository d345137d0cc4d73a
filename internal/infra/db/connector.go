package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"storefront-api/internal/pkg/config"
)

// Conn is the minimal surface the connection layer needs from a pooled
// database handle. *Pool satisfies it in production; tests use fakes.
type Conn interface {
	Ping(ctx context.Context) error
	Close()
}

// Connector establishes a fresh connection. It never touches shared cache
// state; that is the Manager's job.
type Connector[C Conn] interface {
	Connect(ctx context.Context) (C, error)
}

// ConnectionError is returned once every attempt has been exhausted. It
// carries the last underlying error; callers surface it as a 5xx and must not
// retry beyond what the connector already did.
type ConnectionError struct {
	Attempts int
	Last     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database connect failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ConnectionError) Unwrap() error {
	return e.Last
}

// RetryConfig bounds a connect cycle: up to MaxAttempts tries, each raced
// against AttemptTimeout, with the fixed Backoff schedule between tries.
type RetryConfig struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	Backoff        []time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		AttemptTimeout: 10 * time.Second,
		Backoff:        []time.Duration{500 * time.Millisecond, 1500 * time.Millisecond, 3 * time.Second},
	}
}

func RetryConfigFromEnv(cfg config.DBConfig) RetryConfig {
	rc := DefaultRetryConfig()
	if cfg.ConnectAttempts > 0 {
		rc.MaxAttempts = cfg.ConnectAttempts
	}
	if cfg.AttemptTimeout > 0 {
		rc.AttemptTimeout = cfg.AttemptTimeout
	}
	if len(cfg.Backoff) > 0 {
		rc.Backoff = cfg.Backoff
	}
	return rc
}

// RetryingConnector wraps a dial function with bounded retries. A timed-out
// attempt is abandoned and counted as a failure; the dial keeps running in the
// background until its own context deadline fires and is closed on arrival.
type RetryingConnector[C Conn] struct {
	dial   func(ctx context.Context) (C, error)
	cfg    RetryConfig
	logger *slog.Logger

	// sleep is replaceable so tests can assert the backoff schedule without
	// waiting it out.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRetryingConnector[C Conn](cfg RetryConfig, logger *slog.Logger, dial func(ctx context.Context) (C, error)) *RetryingConnector[C] {
	return &RetryingConnector[C]{
		dial:   dial,
		cfg:    cfg,
		logger: logger,
		sleep:  sleepCtx,
	}
}

// SetSleep replaces the inter-attempt wait. Test hook.
func (c *RetryingConnector[C]) SetSleep(sleep func(ctx context.Context, d time.Duration) error) {
	c.sleep = sleep
}

func (c *RetryingConnector[C]) Connect(ctx context.Context) (C, error) {
	var zero C
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		connectAttemptsTotal.Inc()

		conn, err := c.attempt(ctx)
		if err == nil {
			if attempt > 1 {
				c.logger.Info("database connect succeeded after retry", "attempt", attempt)
			}
			return conn, nil
		}
		lastErr = err

		c.logger.Warn("database connect attempt failed",
			"attempt", attempt,
			"max_attempts", c.cfg.MaxAttempts,
			"error", err,
		)

		if attempt >= c.cfg.MaxAttempts {
			break
		}

		wait := c.backoffFor(attempt)
		connectBackoffSeconds.Observe(wait.Seconds())
		if err := c.sleep(ctx, wait); err != nil {
			lastErr = err
			break
		}
	}

	connectExhaustedTotal.Inc()
	return zero, &ConnectionError{Attempts: c.cfg.MaxAttempts, Last: lastErr}
}

// attempt races the dial against the hard per-attempt deadline. A connection
// that arrives after the deadline is closed, never handed out.
func (c *RetryingConnector[C]) attempt(ctx context.Context) (C, error) {
	actx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	type result struct {
		conn C
		err  error
	}
	// Buffered so the dial goroutine always hands its result over, even when
	// attempt() has already given up on it.
	ch := make(chan result, 1)

	go func() {
		conn, err := c.dial(actx)
		ch <- result{conn, err}
	}()

	var zero C
	select {
	case r := <-ch:
		return r.conn, r.err
	case <-actx.Done():
		// A dial that completes after the deadline still owns a live
		// connection; reap it so it does not leak.
		go func() {
			if r := <-ch; r.err == nil {
				r.conn.Close()
			}
		}()
		return zero, fmt.Errorf("connect attempt timed out after %s: %w", c.cfg.AttemptTimeout, actx.Err())
	}
}

func (c *RetryingConnector[C]) backoffFor(attempt int) time.Duration {
	if len(c.cfg.Backoff) == 0 {
		return 0
	}
	if attempt > len(c.cfg.Backoff) {
		return c.cfg.Backoff[len(c.cfg.Backoff)-1]
	}
	return c.cfg.Backoff[attempt-1]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
