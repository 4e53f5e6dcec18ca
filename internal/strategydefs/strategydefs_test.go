package strategydefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDefs(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFileProviderFiltersBySymbol(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategies.yaml")
	writeDefs(t, path, `
strategies:
  - symbol: BTCUSDT
    interval: 1h
    signal: cross_sma_10_50
    message: btc
    create_orders: true
    is_percent_buy: true
    buy_amount: 50
    oco: true
  - symbol: ETHUSDT
    interval: 5min
    signal: rsi
    message: eth
`)

	p := NewFileProvider(path)

	btc, err := p.ForPair("BTCUSDT")
	require.NoError(t, err)
	require.Len(t, btc, 1)
	assert.Equal(t, "cross_sma_10_50", btc[0].Signal)
	assert.Equal(t, "1h", btc[0].Interval)
	assert.True(t, btc[0].CreateOrders)
	assert.True(t, btc[0].IsPercentBuy)
	assert.Equal(t, 50.0, btc[0].BuyAmount)
	assert.True(t, btc[0].OCO)

	eth, err := p.ForPair("ETHUSDT")
	require.NoError(t, err)
	require.Len(t, eth, 1)
	assert.False(t, eth[0].CreateOrders)

	none, err := p.ForPair("DOGEUSDT")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFileProviderReloadsOnEveryCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategies.yaml")
	writeDefs(t, path, `
strategies:
  - symbol: BTCUSDT
    interval: 1h
    signal: rsi
`)

	p := NewFileProvider(path)
	defs, err := p.ForPair("BTCUSDT")
	require.NoError(t, err)
	require.Len(t, defs, 1)

	// edit goes live without a restart
	writeDefs(t, path, `
strategies:
  - symbol: BTCUSDT
    interval: 1h
    signal: rsi
  - symbol: BTCUSDT
    interval: 4h
    signal: macd
`)
	defs, err = p.ForPair("BTCUSDT")
	require.NoError(t, err)
	assert.Len(t, defs, 2)
}

func TestFileProviderMissingFile(t *testing.T) {
	p := NewFileProvider(filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := p.ForPair("BTCUSDT")
	assert.Error(t, err)
}

func TestStaticProvider(t *testing.T) {
	s := Static{
		{Symbol: "BTCUSDT", Signal: "rsi"},
		{Symbol: "ETHUSDT", Signal: "macd"},
	}
	defs, err := s.ForPair("ETHUSDT")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "macd", defs[0].Signal)
}
