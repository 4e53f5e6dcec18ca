// Package processor orchestrates the per-candle pipeline: append to the
// pair's series, re-load strategy definitions, resample every interval
// that just closed, evaluate signals and act on transitions.
package processor

import (
	"context"
	"sync"

	"github.com/opentracing/opentracing-go"

	"candle_bot/internal/config"
	"candle_bot/internal/exchange"
	"candle_bot/internal/indicator"
	"candle_bot/internal/metrics"
	"candle_bot/internal/notify"
	"candle_bot/internal/series"
	"candle_bot/internal/signal"
	"candle_bot/internal/store"
	"candle_bot/internal/strategydefs"
	"candle_bot/pkg/logger"
)

// Exchange is the slice of the exchange client the processor trades
// through.
type Exchange interface {
	Balance(ctx context.Context, asset string) (free, locked float64, err error)
	SymbolRules(ctx context.Context, symbol string) (exchange.SymbolRules, error)
	CreateMarketOrder(ctx context.Context, symbol, side string, qty float64) (exchange.MarketOrder, error)
	CreateOCOOrder(ctx context.Context, symbol string, qty, stopTrigger, stopLimit, price float64) error
	LatestPrice(ctx context.Context, symbol string) (float64, error)
}

type pairState int

const (
	stateNoData pairState = iota
	stateLive
)

// pairContext owns one pair's series. The series and state are only ever
// touched from that pair's stream goroutine; contexts of different pairs
// share nothing. The last-candle snapshot is the one field other
// goroutines may read, guarded by its own mutex.
type pairContext struct {
	pair  config.Pair
	ser   *series.Series
	state pairState

	mu      sync.Mutex
	last    series.Candle
	hasLast bool
}

func (pc *pairContext) setLast(c series.Candle) {
	pc.mu.Lock()
	pc.last = c
	pc.hasLast = true
	pc.mu.Unlock()
}

func (pc *pairContext) lastSnapshot() (series.Candle, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.last, pc.hasLast
}

type Processor struct {
	cfg   *config.Config
	store store.Store
	hist  store.HistoryFetcher
	ex    Exchange
	defs  strategydefs.Provider
	n     notify.Notifier
	reg   *signal.Registry

	pairs map[string]*pairContext
}

func New(
	cfg *config.Config,
	st store.Store,
	hist store.HistoryFetcher,
	ex Exchange,
	defs strategydefs.Provider,
	n notify.Notifier,
	reg *signal.Registry,
) *Processor {
	pairs := make(map[string]*pairContext, len(cfg.Pairs))
	for _, p := range cfg.Pairs {
		pairs[p.Symbol] = &pairContext{pair: p, ser: series.New()}
	}
	return &Processor{
		cfg:   cfg,
		store: st,
		hist:  hist,
		ex:    ex,
		defs:  defs,
		n:     n,
		reg:   reg,
		pairs: pairs,
	}
}

// LastCandle returns the most recent base candle for a pair, for the
// interactive "p" command. It reads a snapshot, not the pair's series,
// so it is safe to call from the console goroutine while the stream
// goroutine is processing.
func (p *Processor) LastCandle(symbol string) (series.Candle, bool) {
	pc, ok := p.pairs[symbol]
	if !ok {
		return series.Candle{}, false
	}
	return pc.lastSnapshot()
}

// OnClosedCandle handles one closed base candle for one pair. Callers
// filter still-forming candles before invoking. A single rejected order or
// failed strategy never halts evaluation of the remaining strategies.
func (p *Processor) OnClosedCandle(ctx context.Context, symbol string, c series.Candle) {
	span := opentracing.StartSpan("process_candle")
	span.SetTag("symbol", symbol)
	defer span.Finish()
	ctx = opentracing.ContextWithSpan(ctx, span)

	pc, ok := p.pairs[symbol]
	if !ok {
		logger.Error("candle for unconfigured pair %s", symbol)
		return
	}

	if pc.state == stateNoData {
		if !p.backfill(ctx, pc) {
			// history still unavailable, retry on the next candle
			return
		}
	}

	pc.ser.Append(c)
	pc.setLast(c)
	metrics.CandlesTotal.WithLabelValues(symbol).Inc()

	// re-read on every event so edits go live without a restart
	defs, err := p.defs.ForPair(symbol)
	if err != nil {
		logger.Error("load strategy definitions for %s: %v", symbol, err)
		return
	}

	for _, def := range defs {
		p.evaluate(ctx, pc, def, c)
	}
}

// backfill moves a pair from no-data to live: load persisted history,
// reconcile against the exchange, persist the merged result.
func (p *Processor) backfill(ctx context.Context, pc *pairContext) bool {
	local, err := p.store.Load(pc.pair.Symbol)
	if err != nil {
		logger.Error("load history for %s: %v", pc.pair.Symbol, err)
		return false
	}

	merged, err := store.Reconcile(ctx, local, pc.pair.Symbol, p.cfg.Interval, p.hist)
	if err != nil {
		logger.Error("reconcile history for %s: %v", pc.pair.Symbol, err)
		return false
	}

	if err := p.store.Save(pc.pair.Symbol, merged); err != nil {
		logger.Error("save history for %s: %v", pc.pair.Symbol, err)
		// merged series is still usable in memory
	}

	pc.ser = merged
	pc.state = stateLive
	logger.Info("[%s] backfill done, %d candles", pc.pair.Symbol, merged.Len())
	return true
}

func (p *Processor) evaluate(ctx context.Context, pc *pairContext, def strategydefs.Definition, c series.Candle) {
	iv, err := series.ParseInterval(def.Interval)
	if err != nil {
		logger.Error("[%s] strategy %s: %v", pc.pair.Symbol, def.Signal, err)
		return
	}
	if !series.IsIntervalClosed(pc.ser, iv) {
		return
	}

	rs := series.Resample(pc.ser, iv)
	if rs.Len() < 2 {
		// not enough history for a transition yet
		return
	}

	fn, err := p.reg.Get(def.Signal)
	if err != nil {
		logger.Error("[%s] %v", pc.pair.Symbol, err)
		return
	}

	frame := indicator.NewFrame(rs)
	sig := fn(frame)
	n := len(sig)
	if n < 2 || sig[n-2] == sig[n-1] {
		return
	}

	switch sig[n-1] {
	case signal.Buy:
		metrics.SignalsTotal.WithLabelValues(pc.pair.Symbol, def.Signal, exchange.SideBuy).Inc()
		logger.Info("[%s] %s -> BUY @ %.8f", pc.pair.Symbol, def.Signal, c.Close)
		p.actBuy(ctx, pc, def, frame, c)
	case signal.Sell:
		metrics.SignalsTotal.WithLabelValues(pc.pair.Symbol, def.Signal, exchange.SideSell).Inc()
		logger.Info("[%s] %s -> SELL @ %.8f", pc.pair.Symbol, def.Signal, c.Close)
		p.actSell(ctx, pc, def, c)
	default:
		// transition back to hold, no action
	}
}
