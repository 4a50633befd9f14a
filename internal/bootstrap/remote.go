package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/skyline/config"
	"github.com/Domenick1991/skyline/internal/remote"
	"github.com/Domenick1991/skyline/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "skyline"

// OpenRemote connects the configured remote backend. It returns a nil
// Remote when none is configured; close is always safe to call.
func OpenRemote(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Remote, func(), error) {
	noop := func() {}

	switch cfg.Remote.Backend {
	case config.RemoteBackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		pg := remote.NewPostgres(pool, remote.DefaultCascade)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("prepare postgres schema: %w", err)
		}
		log.Info("remote store: postgres")
		return pg, pool.Close, nil

	case config.RemoteBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		rd := remote.NewRedis(client, redisKeyPrefix, remote.DefaultCascade)
		log.Info("remote store: redis", zap.String("addr", cfg.Redis.Addr))
		return rd, func() { _ = rd.Close() }, nil

	case config.RemoteBackendMemory:
		log.Info("remote store: in-memory")
		return remote.NewMemory(remote.DefaultCascade), noop, nil

	default:
		log.Info("remote store disabled, running local only")
		return nil, noop, nil
	}
}
