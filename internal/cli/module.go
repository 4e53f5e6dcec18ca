package cli

import (
	"context"

	"go.uber.org/fx"

	"candle_bot/internal/config"
)

func Module() fx.Option {
	return fx.Module("cli",
		fx.Provide(New),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, c *Console) {
			if cfg.Mode != "interactive" {
				return
			}
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					go c.Run()
					return nil
				},
			})
		}),
	)
}
