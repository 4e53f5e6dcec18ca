package metrics

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/fx"

	"candle_bot/internal/config"
)

// Module exposes /metrics on the admin port when one is configured.
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) {
			if cfg.Service.AdminPort == 0 {
				return
			}
			var srv *http.Server
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					srv = Serve(fmt.Sprintf(":%d", cfg.Service.AdminPort))
					return nil
				},
				OnStop: func(ctx context.Context) error {
					return srv.Shutdown(ctx)
				},
			})
		}),
	)
}
