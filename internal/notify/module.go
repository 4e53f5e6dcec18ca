package notify

import (
	"go.uber.org/fx"

	"candle_bot/internal/config"
	"candle_bot/pkg/logger"
)

// Module provides the Notifier: Telegram when a token is configured,
// process log otherwise.
func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(
			func(cfg *config.Config) Notifier {
				if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
					return Log{}
				}
				tg, err := NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
				if err != nil {
					logger.Error("telegram init: %v, falling back to log notifier", err)
					return Log{}
				}
				return tg
			},
		),
	)
}
