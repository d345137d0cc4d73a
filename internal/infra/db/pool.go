package db

import (
	"context"
	"log/slog"

	"storefront-api/internal/pkg/config"
	"storefront-api/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the pooled Postgres handle handed out by the Manager.
type Pool struct {
	*pgxpool.Pool
}

// NewPgxConnector builds the production connector: each dial creates a pgx
// pool from the configured URI and pings it within the attempt deadline, so a
// pool that cannot reach the database never leaves the connector.
func NewPgxConnector(cfg config.DBConfig, logger *slog.Logger) (*RetryingConnector[*Pool], error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URI)
	if err != nil {
		return nil, errs.Wrap(err, "failed to parse database URI")
	}
	if cfg.PoolMinConns > 0 {
		poolCfg.MinConns = cfg.PoolMinConns
	}
	if cfg.PoolMaxConns > 0 {
		poolCfg.MaxConns = cfg.PoolMaxConns
	}

	dial := func(ctx context.Context) (*Pool, error) {
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, err
		}
		// pgxpool connects lazily; force a round trip so the retry loop sees
		// unreachable databases as attempt failures.
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return &Pool{Pool: pool}, nil
	}

	return NewRetryingConnector(RetryConfigFromEnv(cfg), logger, dial), nil
}
