// Package exchange is the Binance spot client: signed REST for orders,
// balances and history, plus a websocket kline stream.
package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"candle_bot/internal/series"
)

const (
	mainnetURL   = "https://api.binance.com"
	testnetURL   = "https://testnet.binance.vision"
	mainnetWSURL = "wss://stream.binance.com:9443/ws"
	testnetWSURL = "wss://stream.testnet.binance.vision/ws"

	klineLimit = 1000
)

type Client struct {
	http     *http.Client
	wsDialer *websocket.Dialer

	baseURL string
	wsURL   string

	apiKey    string
	apiSecret string

	mu     sync.RWMutex
	prices map[string]float64 // last close per symbol, fed by the stream
}

func NewClient(apiKey, apiSecret string, test bool) *Client {
	base, ws := mainnetURL, mainnetWSURL
	if test {
		base, ws = testnetURL, testnetWSURL
	}
	return &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		wsDialer:  &websocket.Dialer{},
		baseURL:   base,
		wsURL:     ws,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		prices:    make(map[string]float64),
	}
}

func (c *Client) SetPrice(symbol string, price float64) {
	c.mu.Lock()
	c.prices[symbol] = price
	c.mu.Unlock()
}

func (c *Client) CachedPrice(symbol string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prices[symbol]
}

func (c *Client) sign(query string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(query))
	return hex.EncodeToString(h.Sum(nil))
}

// do executes one REST call. Signed requests get a timestamp and an
// HMAC-SHA256 signature over the query string.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, signed bool, out any) error {
	if params == nil {
		params = url.Values{}
	}
	if signed {
		params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
		params.Set("signature", c.sign(params.Encode()))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("new request %s: %w", path, err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := sonic.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = string(body)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Klines pages through historical candles from since until the present.
func (c *Client) Klines(ctx context.Context, pair, interval string, since time.Time) (*series.Series, error) {
	var candles []series.Candle
	start := since.UTC().UnixMilli()
	if start < 0 {
		start = 0
	}

	for {
		params := url.Values{}
		params.Set("symbol", pair)
		params.Set("interval", interval)
		params.Set("startTime", strconv.FormatInt(start, 10))
		params.Set("limit", strconv.Itoa(klineLimit))

		var rows [][]any
		if err := c.do(ctx, http.MethodGet, "/api/v3/klines", params, false, &rows); err != nil {
			return nil, err
		}

		for _, row := range rows {
			cdl, err := parseKlineRow(row)
			if err != nil {
				return nil, err
			}
			candles = append(candles, cdl)
		}

		if len(rows) < klineLimit {
			break
		}
		start = candles[len(candles)-1].OpenTime.UnixMilli() + 1
	}
	return series.FromCandles(candles), nil
}

// EarliestTime returns the open time of the first candle the exchange has
// for the pair at the given interval.
func (c *Client) EarliestTime(ctx context.Context, pair, interval string) (time.Time, error) {
	params := url.Values{}
	params.Set("symbol", pair)
	params.Set("interval", interval)
	params.Set("startTime", "0")
	params.Set("limit", "1")

	var rows [][]any
	if err := c.do(ctx, http.MethodGet, "/api/v3/klines", params, false, &rows); err != nil {
		return time.Time{}, err
	}
	if len(rows) == 0 {
		return time.Time{}, fmt.Errorf("no klines for %s", pair)
	}
	cdl, err := parseKlineRow(rows[0])
	if err != nil {
		return time.Time{}, err
	}
	return cdl.OpenTime, nil
}

// kline rows come as mixed arrays: [openTime, "o", "h", "l", "c", "v", ...]
func parseKlineRow(row []any) (series.Candle, error) {
	if len(row) < 6 {
		return series.Candle{}, fmt.Errorf("short kline row: %d fields", len(row))
	}
	ts, ok := row[0].(float64)
	if !ok {
		return series.Candle{}, fmt.Errorf("bad kline open time %v", row[0])
	}

	vals := make([]float64, 5)
	for i := 0; i < 5; i++ {
		s, ok := row[i+1].(string)
		if !ok {
			return series.Candle{}, fmt.Errorf("bad kline field %v", row[i+1])
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return series.Candle{}, fmt.Errorf("parse kline field: %w", err)
		}
		vals[i] = v
	}
	return series.Candle{
		OpenTime: time.UnixMilli(int64(ts)).UTC(),
		Open:     vals[0],
		High:     vals[1],
		Low:      vals[2],
		Close:    vals[3],
		Volume:   vals[4],
	}, nil
}

// LatestPrice prefers the close price cached from the kline stream and
// only hits the REST ticker when the stream has not delivered one yet.
func (c *Client) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	if p := c.CachedPrice(symbol); p > 0 {
		return p, nil
	}

	params := url.Values{}
	params.Set("symbol", symbol)

	var out struct {
		Price string `json:"price"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v3/ticker/price", params, false, &out); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(out.Price, 64)
}

// Balance returns the free and locked amounts of one asset.
func (c *Client) Balance(ctx context.Context, asset string) (free, locked float64, err error) {
	var out struct {
		Balances []struct {
			Asset  string `json:"asset"`
			Free   string `json:"free"`
			Locked string `json:"locked"`
		} `json:"balances"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v3/account", nil, true, &out); err != nil {
		return 0, 0, err
	}
	for _, b := range out.Balances {
		if b.Asset != asset {
			continue
		}
		free, _ = strconv.ParseFloat(b.Free, 64)
		locked, _ = strconv.ParseFloat(b.Locked, 64)
		return free, locked, nil
	}
	return 0, 0, nil
}

// SymbolRules fetches the symbol's trading filters.
func (c *Client) SymbolRules(ctx context.Context, symbol string) (SymbolRules, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var out struct {
		Symbols []struct {
			Filters []struct {
				FilterType  string `json:"filterType"`
				TickSize    string `json:"tickSize"`
				StepSize    string `json:"stepSize"`
				MinQty      string `json:"minQty"`
				MinPrice    string `json:"minPrice"`
				MaxPrice    string `json:"maxPrice"`
				MinNotional string `json:"minNotional"`
			} `json:"filters"`
		} `json:"symbols"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v3/exchangeInfo", params, false, &out); err != nil {
		return SymbolRules{}, err
	}
	if len(out.Symbols) == 0 {
		return SymbolRules{}, fmt.Errorf("unknown symbol %s", symbol)
	}

	var rules SymbolRules
	for _, f := range out.Symbols[0].Filters {
		switch f.FilterType {
		case "PRICE_FILTER":
			rules.TickSize, _ = strconv.ParseFloat(f.TickSize, 64)
			rules.MinPrice, _ = strconv.ParseFloat(f.MinPrice, 64)
			rules.MaxPrice, _ = strconv.ParseFloat(f.MaxPrice, 64)
		case "LOT_SIZE":
			rules.StepSize, _ = strconv.ParseFloat(f.StepSize, 64)
			rules.MinQty, _ = strconv.ParseFloat(f.MinQty, 64)
		case "MIN_NOTIONAL", "NOTIONAL":
			rules.MinNotional, _ = strconv.ParseFloat(f.MinNotional, 64)
		}
	}
	return rules, nil
}

// CreateMarketOrder submits a market order. Buys are sized in the quote
// asset (quoteOrderQty), sells in the base asset.
func (c *Client) CreateMarketOrder(ctx context.Context, symbol, side string, qty float64) (MarketOrder, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", side)
	params.Set("type", "MARKET")
	params.Set("newOrderRespType", "FULL")
	switch side {
	case SideBuy:
		params.Set("quoteOrderQty", formatAmount(qty))
	case SideSell:
		params.Set("quantity", formatAmount(qty))
	default:
		return MarketOrder{}, fmt.Errorf("wrong side, must be BUY or SELL: %s", side)
	}

	var out struct {
		OrderID     int64  `json:"orderId"`
		ExecutedQty string `json:"executedQty"`
		CumQuoteQty string `json:"cummulativeQuoteQty"`
		Fills       []struct {
			Price string `json:"price"`
			Qty   string `json:"qty"`
		} `json:"fills"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v3/order", params, true, &out); err != nil {
		return MarketOrder{}, err
	}

	mo := MarketOrder{OrderID: out.OrderID}
	mo.ExecutedQty, _ = strconv.ParseFloat(out.ExecutedQty, 64)
	mo.QuoteQty, _ = strconv.ParseFloat(out.CumQuoteQty, 64)
	if mo.ExecutedQty > 0 {
		mo.AvgPrice = mo.QuoteQty / mo.ExecutedQty
	}
	return mo, nil
}

// CreateOCOOrder places a bracket sell: a take-profit limit leg at price
// and a stop-loss-limit leg triggering at stopTrigger, filling at stopLimit.
func (c *Client) CreateOCOOrder(ctx context.Context, symbol string, qty, stopTrigger, stopLimit, price float64) error {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", SideSell)
	params.Set("quantity", formatAmount(qty))
	params.Set("price", formatAmount(price))
	params.Set("stopPrice", formatAmount(stopTrigger))
	params.Set("stopLimitPrice", formatAmount(stopLimit))
	params.Set("stopLimitTimeInForce", "GTC")

	return c.do(ctx, http.MethodPost, "/api/v3/order/oco", params, true, nil)
}

func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("orderId", strconv.FormatInt(orderID, 10))

	return c.do(ctx, http.MethodDelete, "/api/v3/order", params, true, nil)
}

// OpenOrders lists resting orders, optionally filtered to one symbol.
func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]Order, error) {
	params := url.Values{}
	if symbol != "" {
		params.Set("symbol", symbol)
	}

	var rows []struct {
		Symbol      string `json:"symbol"`
		OrderID     int64  `json:"orderId"`
		OrderListID int64  `json:"orderListId"`
		Side        string `json:"side"`
		Type        string `json:"type"`
		Price       string `json:"price"`
		StopPrice   string `json:"stopPrice"`
		OrigQty     string `json:"origQty"`
		Status      string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v3/openOrders", params, true, &rows); err != nil {
		return nil, err
	}

	out := make([]Order, 0, len(rows))
	for _, r := range rows {
		o := Order{
			Symbol:      r.Symbol,
			OrderID:     r.OrderID,
			OrderListID: r.OrderListID,
			Side:        r.Side,
			Type:        r.Type,
			Status:      r.Status,
		}
		o.Price, _ = strconv.ParseFloat(r.Price, 64)
		o.StopPrice, _ = strconv.ParseFloat(r.StopPrice, 64)
		o.OrigQty, _ = strconv.ParseFloat(r.OrigQty, 64)
		out = append(out, o)
	}
	return out, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 8, 64)
}
