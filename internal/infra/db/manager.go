package db

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storefront-api/internal/pkg/clock"

	"golang.org/x/sync/singleflight"
)

// Manager holds the process-wide last-known-good connection. Every request
// acquires through it: a cached connection is probed before reuse, a dead one
// is dropped and replaced, and reconnection is single-flight so a burst of
// concurrent requests on a cold or failed process starts exactly one connect
// cycle instead of N.
type Manager[C Conn] struct {
	connector Connector[C]
	clk       clock.Clock
	logger    *slog.Logger

	mu  sync.Mutex
	cur *pooled[C]
	sf  singleflight.Group
}

// pooled pairs the handle with its lifecycle timestamps.
type pooled[C Conn] struct {
	conn          C
	createdAt     time.Time
	lastValidated time.Time
}

func NewManager[C Conn](connector Connector[C], clk clock.Clock, logger *slog.Logger) *Manager[C] {
	return &Manager[C]{
		connector: connector,
		clk:       clk,
		logger:    logger,
	}
}

// Acquire returns a live connection, probing a cached one first and falling
// through to a single-flight reconnect when none is usable. On reconnect
// failure every waiter receives the same error and the slot is left empty so
// the next call starts a clean attempt.
func (m *Manager[C]) Acquire(ctx context.Context) (C, error) {
	m.mu.Lock()
	cur := m.cur
	m.mu.Unlock()

	if cur != nil {
		err := cur.conn.Ping(ctx)
		if err == nil {
			m.mu.Lock()
			if m.cur == cur {
				cur.lastValidated = m.clk.Now()
			}
			m.mu.Unlock()
			return cur.conn, nil
		}
		probeFailuresTotal.Inc()
		m.logger.Warn("cached connection failed liveness probe, reconnecting", "error", err)
		m.drop(cur)
	}

	v, err, _ := m.sf.Do("connect", func() (any, error) {
		// Detached from the caller: an upstream disconnect must not abort a
		// connect cycle other requests are waiting on. The per-attempt
		// timeout bounds the hold time regardless.
		conn, err := m.connector.Connect(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		now := m.clk.Now()
		m.mu.Lock()
		m.cur = &pooled[C]{conn: conn, createdAt: now, lastValidated: now}
		m.mu.Unlock()
		return conn, nil
	})
	if err != nil {
		var zero C
		return zero, err
	}
	return v.(C), nil
}

// Invalidate drops the cached connection so the next Acquire reconnects.
func (m *Manager[C]) Invalidate() {
	m.mu.Lock()
	cur := m.cur
	m.cur = nil
	m.mu.Unlock()
	if cur != nil {
		cur.conn.Close()
	}
}

// LastValidated reports when the cached connection last passed a probe.
// Zero time when nothing is cached.
func (m *Manager[C]) LastValidated() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return time.Time{}
	}
	return m.cur.lastValidated
}

// Close releases the cached connection. Used on shutdown.
func (m *Manager[C]) Close() {
	m.Invalidate()
}

// drop removes cur only if it is still the cached entry, then discards it.
// A replacement installed by a concurrent reconnect is left untouched.
func (m *Manager[C]) drop(cur *pooled[C]) {
	m.mu.Lock()
	if m.cur == cur {
		m.cur = nil
	}
	m.mu.Unlock()
	cur.conn.Close()
}
