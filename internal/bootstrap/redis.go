package bootstrap

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/guidari-center/guidari-backend/config"
)

// OpenRedis connects the local key-value store. It is optional: when redis is
// unreachable the settings layer falls back to compiled-in defaults, so a
// failed ping returns the client anyway and only logs.
func OpenRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		logger.Warn("redis unreachable, using compiled-in settings", zap.Error(err))
	}
	return rdb
}
