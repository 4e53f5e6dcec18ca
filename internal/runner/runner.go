// Package runner connects per-pair kline streams to the candle processor.
package runner

import (
	"context"
	"sync"

	"candle_bot/internal/config"
	"candle_bot/internal/processor"
	"candle_bot/internal/series"
	"candle_bot/pkg/logger"
)

// Streamer is the slice of the exchange client the runner consumes.
type Streamer interface {
	StreamKlines(ctx context.Context, symbol, interval string) <-chan series.Candle
}

type Runner struct {
	cfg  *config.Config
	ex   Streamer
	proc *processor.Processor

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfg *config.Config, ex Streamer, proc *processor.Processor) *Runner {
	return &Runner{cfg: cfg, ex: ex, proc: proc}
}

// Start launches one goroutine per configured pair. Each goroutine owns
// its pair's series, so no locking is needed in the processor.
func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	for _, pair := range r.cfg.Pairs {
		r.wg.Add(1)
		go func(symbol string) {
			defer r.wg.Done()
			r.runPair(ctx, symbol)
		}(pair.Symbol)
	}
	logger.Info("runner started for %d pairs, interval %s", len(r.cfg.Pairs), r.cfg.Interval)
}

func (r *Runner) runPair(ctx context.Context, symbol string) {
	for c := range r.ex.StreamKlines(ctx, symbol, r.cfg.Interval) {
		r.proc.OnClosedCandle(ctx, symbol, c)
	}
	logger.Info("[%s] stream finished", symbol)
}

func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}
