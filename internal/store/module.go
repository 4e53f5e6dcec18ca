package store

import (
	"context"

	"go.uber.org/fx"

	"candle_bot/internal/config"
	"candle_bot/internal/store/pg"
	"candle_bot/pkg/db"
	"candle_bot/pkg/logger"
)

// Module picks the storage backend: Postgres when a DSN is configured,
// per-pair CSV files otherwise.
func Module() fx.Option {
	return fx.Module("store",
		fx.Provide(
			func(lc fx.Lifecycle, ctx context.Context, cfg *config.Config) (Store, error) {
				if cfg.DB == "" {
					logger.Info("storage: csv files in %s", cfg.DataDir)
					return NewCSVStore(cfg.DataDir, cfg.ShareSinceTime()), nil
				}

				pool, err := db.NewPool(ctx, db.PoolConfig{DSN: cfg.DB})
				if err != nil {
					return nil, err
				}
				tm := db.NewPgTxManager(pool)
				lc.Append(fx.Hook{
					OnStop: func(context.Context) error {
						tm.Close()
						return nil
					},
				})
				logger.Info("storage: postgres")
				return pg.NewStore(ctx, tm)
			},
		),
	)
}
