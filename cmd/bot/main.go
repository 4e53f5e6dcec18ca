package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"candle_bot/internal/cli"
	"candle_bot/internal/config"
	"candle_bot/internal/exchange"
	"candle_bot/internal/metrics"
	"candle_bot/internal/notify"
	"candle_bot/internal/ocoroll"
	"candle_bot/internal/processor"
	"candle_bot/internal/runner"
	"candle_bot/internal/store"
	"candle_bot/pkg/logger"
	"candle_bot/pkg/tracing"
)

const serviceName = "candle_bot"

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	logger.SetServiceName(serviceName)
	tracing.SetServiceName(serviceName)

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		exchange.Module(),
		store.Module(),
		notify.Module(),
		processor.Module(),
		runner.Module(),
		ocoroll.Module(),
		metrics.Module(),
		cli.Module(),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) {
			if cfg.Jaeger.Host == "" {
				return
			}
			_, closeTracer, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Jaeger.Host,
				Port: cfg.Jaeger.Port,
			})
			if err != nil {
				logger.Error("jaeger init: %v", err)
				return
			}
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					closeTracer()
					return nil
				},
			})
		}),
	)
	if err := app.Err(); err != nil {
		logger.Fatal("dependency graph: %v", err)
	}
	app.Run()
}
