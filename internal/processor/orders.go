package processor

import (
	"context"
	"fmt"
	"math"

	"candle_bot/internal/exchange"
	"candle_bot/internal/helper"
	"candle_bot/internal/indicator"
	"candle_bot/internal/metrics"
	"candle_bot/internal/series"
	"candle_bot/internal/strategydefs"
	"candle_bot/pkg/logger"
)

// stop distance for the protective bracket: lowest low of the last
// bracketLookback resampled bars minus bracketATRMult ATRs.
const (
	bracketLookback = 5
	bracketATRMult  = 2.0
	atrPeriod       = 14
)

// actBuy sizes a market buy in quote currency, places it and, when the
// strategy asks for one, attaches a protective OCO bracket. Exactly one
// notification is sent per triggered buy.
func (p *Processor) actBuy(ctx context.Context, pc *pairContext, def strategydefs.Definition, frame *indicator.Frame, c series.Candle) {
	sym := pc.pair.Symbol

	if !def.CreateOrders {
		p.n.Sendf("%s | %s BUY @ %.8f", def.Message, sym, c.Close)
		return
	}

	rules, err := p.ex.SymbolRules(ctx, sym)
	if err != nil {
		metrics.OrderErrorsTotal.WithLabelValues(sym).Inc()
		p.n.Sendf("%s | %s BUY failed: %v", def.Message, sym, err)
		return
	}

	free, _, err := p.ex.Balance(ctx, pc.pair.Quote)
	if err != nil {
		metrics.OrderErrorsTotal.WithLabelValues(sym).Inc()
		p.n.Sendf("%s | %s BUY failed: %v", def.Message, sym, err)
		return
	}

	amount := def.BuyAmount
	if def.IsPercentBuy {
		amount = free * def.BuyAmount / 100
	}
	if amount > free {
		amount = free
	}
	amount = helper.Trunc(amount, rules.TickSize)

	if amount <= rules.MinNotional {
		p.n.Sendf("%s | %s BUY skipped: insufficient %s balance (%.8f free, %.8f needed)",
			def.Message, sym, pc.pair.Quote, free, rules.MinNotional)
		return
	}

	if !p.cfg.Live {
		p.n.Sendf("%s | %s BUY simulated: %.8f %s @ ~%.8f", def.Message, sym, amount, pc.pair.Quote, c.Close)
		return
	}

	order, err := p.ex.CreateMarketOrder(ctx, sym, exchange.SideBuy, amount)
	if err != nil {
		metrics.OrderErrorsTotal.WithLabelValues(sym).Inc()
		p.n.Sendf("%s | %s BUY rejected: %v", def.Message, sym, err)
		return
	}
	metrics.OrdersTotal.WithLabelValues(sym, exchange.SideBuy).Inc()

	msg := ""
	if def.OCO {
		if stop, target, err := p.placeBracket(ctx, sym, rules, frame, order); err != nil {
			metrics.OrderErrorsTotal.WithLabelValues(sym).Inc()
			logger.Error("[%s] OCO bracket: %v", sym, err)
			msg = " (bracket failed)"
		} else {
			msg = fmt.Sprintf(" | stop %.8f target %.8f", stop, target)
		}
	}
	p.n.Sendf("%s | %s BOUGHT %.8f @ %.8f%s", def.Message, sym, order.ExecutedQty, order.AvgPrice, msg)
}

// placeBracket attaches a sell OCO around a filled buy: stop below recent
// lows by an ATR cushion, target at twice the stop distance above entry.
func (p *Processor) placeBracket(ctx context.Context, sym string, rules exchange.SymbolRules, frame *indicator.Frame, order exchange.MarketOrder) (stop, target float64, err error) {
	n := frame.Len()
	low := math.Inf(1)
	for i := n - bracketLookback; i < n; i++ {
		if i >= 0 && frame.Low[i] < low {
			low = frame.Low[i]
		}
	}
	atr := indicator.ATR(frame.High, frame.Low, frame.Close, atrPeriod)
	cushion := 0.0
	if v := atr[len(atr)-1]; !math.IsNaN(v) {
		cushion = bracketATRMult * v
	}

	entry := order.AvgPrice
	if entry == 0 {
		entry, err = p.ex.LatestPrice(ctx, sym)
		if err != nil {
			return 0, 0, err
		}
	}

	stop = helper.RoundDownToTick(low-cushion, rules.TickSize)
	target = helper.RoundUpToTick(entry+2*(entry-stop), rules.TickSize)
	stopLimit := stop - rules.TickSize
	qty := helper.Trunc(order.ExecutedQty, rules.StepSize)

	if err = p.ex.CreateOCOOrder(ctx, sym, qty, stop, stopLimit, target); err != nil {
		return 0, 0, err
	}
	metrics.OrdersTotal.WithLabelValues(sym, exchange.SideSell).Inc()
	return stop, target, nil
}

// actSell mirrors actBuy on the base asset: size in base quantity, snap
// to the lot step and respect the exchange minimum quantity.
func (p *Processor) actSell(ctx context.Context, pc *pairContext, def strategydefs.Definition, c series.Candle) {
	sym := pc.pair.Symbol

	if !def.CreateOrders {
		p.n.Sendf("%s | %s SELL @ %.8f", def.Message, sym, c.Close)
		return
	}

	rules, err := p.ex.SymbolRules(ctx, sym)
	if err != nil {
		metrics.OrderErrorsTotal.WithLabelValues(sym).Inc()
		p.n.Sendf("%s | %s SELL failed: %v", def.Message, sym, err)
		return
	}

	free, _, err := p.ex.Balance(ctx, pc.pair.Base)
	if err != nil {
		metrics.OrderErrorsTotal.WithLabelValues(sym).Inc()
		p.n.Sendf("%s | %s SELL failed: %v", def.Message, sym, err)
		return
	}

	qty := def.SellAmount
	if def.IsPercentSell {
		qty = free * def.SellAmount / 100
	}
	if qty > free {
		qty = free
	}
	qty = helper.Trunc(qty, rules.StepSize)

	if qty < rules.MinQty {
		p.n.Sendf("%s | %s SELL skipped: insufficient %s balance (%.8f free)",
			def.Message, sym, pc.pair.Base, free)
		return
	}

	if !p.cfg.Live {
		p.n.Sendf("%s | %s SELL simulated: %.8f %s @ ~%.8f", def.Message, sym, qty, pc.pair.Base, c.Close)
		return
	}

	order, err := p.ex.CreateMarketOrder(ctx, sym, exchange.SideSell, qty)
	if err != nil {
		metrics.OrderErrorsTotal.WithLabelValues(sym).Inc()
		p.n.Sendf("%s | %s SELL rejected: %v", def.Message, sym, err)
		return
	}
	metrics.OrdersTotal.WithLabelValues(sym, exchange.SideSell).Inc()
	p.n.Sendf("%s | %s SOLD %.8f @ %.8f", def.Message, sym, order.ExecutedQty, order.AvgPrice)
}
