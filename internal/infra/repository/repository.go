package repository

import (
	"context"
	"errors"

	"storefront-api/internal/infra"
	"storefront-api/internal/infra/db"
)

// PoolSource hands out a live pooled connection per operation. Backed by the
// connection manager, so every query transparently benefits from the probe/
// reconnect discipline; a cold or recently-failed process pays the connect
// cost exactly once per burst.
type PoolSource interface {
	Acquire(ctx context.Context) (*db.Pool, error)
}

// acquire maps connection-layer exhaustion to its own error kind so handlers
// can tell "database unreachable" (503, retryable) from a failed query (500).
func acquire(ctx context.Context, src PoolSource) (*db.Pool, error) {
	pool, err := src.Acquire(ctx)
	if err != nil {
		var connErr *db.ConnectionError
		if errors.As(err, &connErr) {
			return nil, infra.WrapRepoErr(infra.KindConnUnavailable, "failed to acquire database connection", err)
		}
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to acquire database connection", err)
	}
	return pool, nil
}
