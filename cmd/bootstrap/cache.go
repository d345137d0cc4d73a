package bootstrap

import (
	"log/slog"

	"storefront-api/internal/infra/edgecache"
	"storefront-api/internal/pkg/clock"
	"storefront-api/internal/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var CacheModule = fx.Module("cache",
	fx.Provide(
		NewEdgeCacheStore,
	),
)

// NewEdgeCacheStore picks the cache backend from configuration: Redis when an
// address is configured, otherwise the per-process store.
func NewEdgeCacheStore(cfg config.Config, clk clock.Clock, logger *slog.Logger) edgecache.Store {
	if cfg.Cache.RedisAddr == "" {
		logger.Info("edge cache using in-process store")
		return edgecache.NewMemoryStore(clk)
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Cache.RedisAddr,
		DB:   cfg.Cache.RedisDB,
	})
	logger.Info("edge cache using redis store", "addr", cfg.Cache.RedisAddr)
	return edgecache.NewRedisStore(client)
}
