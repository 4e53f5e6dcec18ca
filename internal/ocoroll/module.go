package ocoroll

import (
	"context"

	"go.uber.org/fx"

	"candle_bot/internal/config"
	"candle_bot/internal/exchange"
	"candle_bot/internal/notify"
)

func Module() fx.Option {
	return fx.Module("ocoroll",
		fx.Provide(
			func(cfg *config.Config, c *exchange.Client, n notify.Notifier) *Manager {
				return NewManager(cfg, c, n)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, m *Manager, ctx context.Context) {
			if !cfg.OCORolling {
				return
			}
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go m.Run(ctx)
					return nil
				},
				OnStop: func(context.Context) error {
					m.Stop()
					return nil
				},
			})
		}),
	)
}
