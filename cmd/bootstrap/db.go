package bootstrap

import (
	"context"
	"log/slog"

	"storefront-api/internal/infra/db"
	"storefront-api/internal/infra/repository"
	"storefront-api/internal/pkg/clock"
	"storefront-api/internal/pkg/config"

	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewConnectionManager,
		fx.Annotate(
			func(m *db.Manager[*db.Pool]) *db.Manager[*db.Pool] { return m },
			fx.As(new(repository.PoolSource)),
		),
	),
)

// NewConnectionManager wires the retrying connector into the lazily connecting
// manager. No connection is dialed here; the first repository call pays that
// cost, so a database outage at boot does not prevent the process from serving
// /health.
func NewConnectionManager(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (*db.Manager[*db.Pool], error) {
	connector, err := db.NewPgxConnector(cfg.DB, logger)
	if err != nil {
		return nil, err
	}

	manager := db.NewManager[*db.Pool](connector, clock.NewRealClock(), logger)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			manager.Close()
			return nil
		},
	})

	return manager, nil
}
