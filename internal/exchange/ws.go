package exchange

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"candle_bot/internal/series"
	"candle_bot/pkg/logger"
)

// reconnectDelay is the fixed backoff between stream reconnect attempts.
// Gaps opened while disconnected are repaired by the store's reconciliation
// on the next cold load, and by tail-append dedup for replayed bars.
const reconnectDelay = 3 * time.Second

// StreamKlines delivers closed candles for one symbol. Still-forming
// updates are filtered out. The channel closes when ctx is cancelled.
func (c *Client) StreamKlines(ctx context.Context, symbol, interval string) <-chan series.Candle {
	out := make(chan series.Candle)
	go func() {
		defer close(out)

		url := c.wsURL + "/" + strings.ToLower(symbol) + "@kline_" + interval

		for {
			logger.Info("[WS] connect %s %s", symbol, interval)
			conn, _, err := c.wsDialer.DialContext(ctx, url, nil)
			if err != nil {
				logger.Error("[WS] dial %s: %v", symbol, err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(reconnectDelay):
					continue
				}
			}

			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					logger.Error("[WS] read %s: %v", symbol, err)
					_ = conn.Close()
					break
				}

				var frame struct {
					Kline struct {
						OpenTime int64  `json:"t"`
						Open     string `json:"o"`
						High     string `json:"h"`
						Low      string `json:"l"`
						Close    string `json:"c"`
						Volume   string `json:"v"`
						Closed   bool   `json:"x"`
					} `json:"k"`
				}
				if err := sonic.Unmarshal(msg, &frame); err != nil {
					continue
				}
				k := frame.Kline
				if !k.Closed {
					// wait for the closed candle
					continue
				}

				cdl, ok := parseStreamKline(k.OpenTime, k.Open, k.High, k.Low, k.Close, k.Volume)
				if !ok {
					continue
				}
				c.SetPrice(symbol, cdl.Close)

				select {
				case out <- cdl:
				case <-ctx.Done():
					_ = conn.Close()
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay):
			}
		}
	}()
	return out
}

func parseStreamKline(ts int64, o, h, l, cl, v string) (series.Candle, bool) {
	parse := func(s string) (float64, bool) {
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	open, ok1 := parse(o)
	high, ok2 := parse(h)
	low, ok3 := parse(l)
	closePx, ok4 := parse(cl)
	vol, ok5 := parse(v)
	if !(ok1 && ok2 && ok3 && ok4 && ok5) || closePx <= 0 {
		return series.Candle{}, false
	}
	return series.Candle{
		OpenTime: time.UnixMilli(ts).UTC(),
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closePx,
		Volume:   vol,
	}, true
}
