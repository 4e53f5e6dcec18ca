package processor

import (
	"go.uber.org/fx"

	"candle_bot/internal/config"
	"candle_bot/internal/exchange"
	"candle_bot/internal/signal"
	"candle_bot/internal/store"
	"candle_bot/internal/strategydefs"
)

func Module() fx.Option {
	return fx.Module("processor",
		fx.Provide(
			signal.NewRegistry,
			func(cfg *config.Config) strategydefs.Provider {
				return strategydefs.NewFileProvider(cfg.StrategiesFile)
			},
			func(c *exchange.Client) store.HistoryFetcher { return c },
			func(c *exchange.Client) Exchange { return c },
			New,
		),
	)
}
