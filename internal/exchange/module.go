package exchange

import (
	"go.uber.org/fx"

	"candle_bot/internal/config"
)

func Module() fx.Option {
	return fx.Module("exchange",
		fx.Provide(
			func(cfg *config.Config) *Client {
				return NewClient(cfg.Binance.APIKey, cfg.Binance.APISecret, !cfg.Live)
			},
		),
	)
}
