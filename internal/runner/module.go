package runner

import (
	"context"

	"go.uber.org/fx"

	"candle_bot/internal/exchange"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			func(c *exchange.Client) Streamer { return c },
			New,
		),
		fx.Invoke(func(lc fx.Lifecycle, r *Runner, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					r.Start(ctx)
					return nil
				},
				OnStop: func(context.Context) error {
					r.Stop()
					return nil
				},
			})
		}),
	)
}
