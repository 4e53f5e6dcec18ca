// Package ocoroll trails open OCO brackets behind a rising price: when the
// market closes in on the take-profit leg, both legs are cancelled and
// re-created one increment higher.
package ocoroll

import (
	"context"
	"sync"
	"time"

	"candle_bot/internal/config"
	"candle_bot/internal/exchange"
	"candle_bot/internal/helper"
	"candle_bot/internal/metrics"
	"candle_bot/internal/notify"
	"candle_bot/pkg/logger"
)

const (
	pollInterval = time.Minute

	// the bracket span is divided into rollDivisor steps; a roll fires when
	// price comes within one step of the take-profit leg
	rollDivisor = 3
)

// Exchange is the slice of the exchange client the roll loop needs.
type Exchange interface {
	OpenOrders(ctx context.Context, symbol string) ([]exchange.Order, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) error
	CreateOCOOrder(ctx context.Context, symbol string, qty, stopTrigger, stopLimit, price float64) error
	LatestPrice(ctx context.Context, symbol string) (float64, error)
	SymbolRules(ctx context.Context, symbol string) (exchange.SymbolRules, error)
}

type bracket struct {
	stop *exchange.Order // STOP_LOSS_LIMIT leg
	tp   *exchange.Order // LIMIT_MAKER leg
}

type Manager struct {
	cfg *config.Config
	ex  Exchange
	n   notify.Notifier

	stopOnce sync.Once
	done     chan struct{}
	stopped  chan struct{}
}

func NewManager(cfg *config.Config, ex Exchange, n notify.Notifier) *Manager {
	return &Manager{
		cfg:     cfg,
		ex:      ex,
		n:       n,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Run polls open orders for every configured pair until Stop or ctx
// cancellation. Errors are logged and the next tick retries.
func (m *Manager) Run(ctx context.Context) {
	defer close(m.stopped)

	t := time.NewTicker(pollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-t.C:
			for _, pair := range m.cfg.Pairs {
				if err := m.RollPair(ctx, pair.Symbol); err != nil {
					logger.Error("[%s] oco roll: %v", pair.Symbol, err)
				}
			}
		}
	}
}

func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
	<-m.stopped
}

// RollPair inspects one pair's open brackets and rolls any whose
// take-profit leg the price has approached.
func (m *Manager) RollPair(ctx context.Context, symbol string) error {
	orders, err := m.ex.OpenOrders(ctx, symbol)
	if err != nil {
		return err
	}

	brackets := groupBrackets(orders)
	if len(brackets) == 0 {
		return nil
	}

	price, err := m.ex.LatestPrice(ctx, symbol)
	if err != nil {
		return err
	}
	rules, err := m.ex.SymbolRules(ctx, symbol)
	if err != nil {
		return err
	}

	for _, b := range brackets {
		if b.stop == nil || b.tp == nil {
			// half-filled bracket, leave it to the exchange
			continue
		}
		if err := m.rollBracket(ctx, symbol, b, price, rules); err != nil {
			logger.Error("[%s] roll bracket %d: %v", symbol, b.stop.OrderListID, err)
		}
	}
	return nil
}

func (m *Manager) rollBracket(ctx context.Context, symbol string, b bracket, price float64, rules exchange.SymbolRules) error {
	tpPrice := b.tp.Price
	stopTrigger := b.stop.StopPrice

	increment := helper.Trunc((tpPrice-stopTrigger)/rollDivisor, rules.TickSize)
	if increment <= 0 {
		return nil
	}
	if price < tpPrice-increment {
		return nil
	}

	if err := m.ex.CancelOrder(ctx, symbol, b.stop.OrderID); err != nil {
		return err
	}

	newStop := stopTrigger + increment
	newLimit := b.stop.Price + increment
	newTP := tpPrice + increment
	if err := m.ex.CreateOCOOrder(ctx, symbol, b.stop.OrigQty, newStop, newLimit, newTP); err != nil {
		return err
	}

	metrics.OCORollsTotal.WithLabelValues(symbol).Inc()
	m.n.Sendf("%s bracket rolled: stop %.8f -> %.8f, target %.8f -> %.8f",
		symbol, stopTrigger, newStop, tpPrice, newTP)
	return nil
}

// groupBrackets pairs up OCO legs by order list id. Plain orders
// (OrderListID <= 0) are ignored.
func groupBrackets(orders []exchange.Order) []bracket {
	byList := make(map[int64]*bracket)
	var ids []int64
	for i := range orders {
		o := &orders[i]
		if o.OrderListID <= 0 {
			continue
		}
		b, ok := byList[o.OrderListID]
		if !ok {
			b = &bracket{}
			byList[o.OrderListID] = b
			ids = append(ids, o.OrderListID)
		}
		switch o.Type {
		case "STOP_LOSS_LIMIT":
			b.stop = o
		case "LIMIT_MAKER":
			b.tp = o
		}
	}
	out := make([]bracket, 0, len(ids))
	for _, id := range ids {
		out = append(out, *byList[id])
	}
	return out
}
