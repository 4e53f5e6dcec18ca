package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(srv *httptest.Server) *Client {
	return &Client{
		http:      srv.Client(),
		baseURL:   srv.URL,
		apiKey:    "key",
		apiSecret: "secret",
		prices:    map[string]float64{},
	}
}

func TestKlinesParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1m", r.URL.Query().Get("interval"))
		w.Write([]byte(`[
			[1709251200000, "100.1", "101.2", "99.3", "100.5", "12.34", 1709251259999],
			[1709251260000, "100.5", "102.0", "100.0", "101.0", "8.0", 1709251319999]
		]`))
	}))
	defer srv.Close()

	s, err := testClient(srv).Klines(context.Background(), "BTCUSDT", "1m", time.UnixMilli(0))
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	c := s.At(0)
	assert.Equal(t, time.UnixMilli(1709251200000).UTC(), c.OpenTime)
	assert.Equal(t, 100.1, c.Open)
	assert.Equal(t, 101.2, c.High)
	assert.Equal(t, 99.3, c.Low)
	assert.Equal(t, 100.5, c.Close)
	assert.Equal(t, 12.34, c.Volume)
}

func TestParseKlineRowErrors(t *testing.T) {
	_, err := parseKlineRow([]any{1.0, "1", "2"})
	assert.Error(t, err)

	_, err = parseKlineRow([]any{"not a number", "1", "2", "3", "4", "5"})
	assert.Error(t, err)

	_, err = parseKlineRow([]any{1.0, "1", "2", "3", "bad", "5"})
	assert.Error(t, err)
}

func TestSymbolRulesFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbols":[{"filters":[
			{"filterType":"PRICE_FILTER","tickSize":"0.01","minPrice":"0.01","maxPrice":"1000000"},
			{"filterType":"LOT_SIZE","stepSize":"0.0001","minQty":"0.0001"},
			{"filterType":"NOTIONAL","minNotional":"5"}
		]}]}`))
	}))
	defer srv.Close()

	rules, err := testClient(srv).SymbolRules(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 0.01, rules.TickSize)
	assert.Equal(t, 0.0001, rules.StepSize)
	assert.Equal(t, 0.0001, rules.MinQty)
	assert.Equal(t, 5.0, rules.MinNotional)
	assert.Equal(t, 1000000.0, rules.MaxPrice)
}

func TestCreateMarketOrderBuyUsesQuoteQty(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(`{"orderId":42,"executedQty":"0.5","cummulativeQuoteQty":"50.0"}`))
	}))
	defer srv.Close()

	mo, err := testClient(srv).CreateMarketOrder(context.Background(), "BTCUSDT", SideBuy, 50)
	require.NoError(t, err)

	assert.Equal(t, "50.00000000", got.Get("quoteOrderQty"))
	assert.Empty(t, got.Get("quantity"))
	assert.Equal(t, "MARKET", got.Get("type"))
	assert.NotEmpty(t, got.Get("signature"))
	assert.NotEmpty(t, got.Get("timestamp"))

	assert.Equal(t, int64(42), mo.OrderID)
	assert.Equal(t, 0.5, mo.ExecutedQty)
	assert.Equal(t, 100.0, mo.AvgPrice)
}

func TestCreateMarketOrderSellUsesQuantity(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(`{"orderId":7,"executedQty":"0.25","cummulativeQuoteQty":"25.0"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv).CreateMarketOrder(context.Background(), "BTCUSDT", SideSell, 0.25)
	require.NoError(t, err)
	assert.Equal(t, "0.25000000", got.Get("quantity"))
	assert.Empty(t, got.Get("quoteOrderQty"))
}

func TestCreateMarketOrderRejectsBadSide(t *testing.T) {
	_, err := NewClient("", "", true).CreateMarketOrder(context.Background(), "BTCUSDT", "HODL", 1)
	assert.Error(t, err)
}

func TestAPIErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-2010,"msg":"Account has insufficient balance for requested action."}`))
	}))
	defer srv.Close()

	_, err := testClient(srv).CreateMarketOrder(context.Background(), "BTCUSDT", SideBuy, 50)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, int64(-2010), apiErr.Code)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "insufficient balance")
}

func TestBalancePicksAsset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("X-MBX-APIKEY"))
		w.Write([]byte(`{"balances":[
			{"asset":"BTC","free":"0.5","locked":"0.1"},
			{"asset":"USDT","free":"1234.56","locked":"0"}
		]}`))
	}))
	defer srv.Close()

	free, locked, err := testClient(srv).Balance(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, 0.5, free)
	assert.Equal(t, 0.1, locked)

	free, _, err = testClient(srv).Balance(context.Background(), "DOGE")
	require.NoError(t, err)
	assert.Equal(t, 0.0, free)
}

func TestOpenOrdersParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{
			"symbol":"BTCUSDT","orderId":11,"orderListId":3,"side":"SELL",
			"type":"STOP_LOSS_LIMIT","price":"94.99","stopPrice":"95.00",
			"origQty":"0.5","status":"NEW"
		}]`))
	}))
	defer srv.Close()

	orders, err := testClient(srv).OpenOrders(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, int64(3), o.OrderListID)
	assert.Equal(t, "STOP_LOSS_LIMIT", o.Type)
	assert.Equal(t, 94.99, o.Price)
	assert.Equal(t, 95.0, o.StopPrice)
	assert.Equal(t, 0.5, o.OrigQty)
}

func TestSignMatchesHMAC(t *testing.T) {
	c := &Client{apiSecret: "secret"}
	query := "symbol=BTCUSDT&timestamp=1709251200000"

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte(query))
	want := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, c.sign(query))
}

func TestCachedPrice(t *testing.T) {
	c := NewClient("", "", true)
	assert.Equal(t, 0.0, c.CachedPrice("BTCUSDT"))
	c.SetPrice("BTCUSDT", 42.5)
	assert.Equal(t, 42.5, c.CachedPrice("BTCUSDT"))
}

func TestLatestPricePrefersStreamCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"50000.10"}`))
	}))
	defer srv.Close()
	c := testClient(srv)
	ctx := context.Background()

	// empty cache falls back to the REST ticker
	p, err := c.LatestPrice(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 50000.10, p)
	assert.Equal(t, 1, hits)

	// once the stream has fed a price, no further HTTP calls
	c.SetPrice("BTCUSDT", 50100.5)
	p, err = c.LatestPrice(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 50100.5, p)
	assert.Equal(t, 1, hits)
}
