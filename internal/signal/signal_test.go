package signal

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candle_bot/internal/indicator"
	"candle_bot/internal/series"
)

func TestNormalize(t *testing.T) {
	got := Normalize([]float64{1, -1, 0.5, math.NaN(), 0, 2})
	assert.Equal(t, []float64{Buy, Sell, Hold, Hold, Hold, Hold}, got)
}

func TestRemoveRepeated(t *testing.T) {
	cases := []struct {
		name string
		in   []float64
		want []float64
	}{
		{
			"held buy fires once",
			[]float64{0, 1, 1, 1, -1, -1, 0},
			[]float64{0, 1, 0, 0, -1, 0, 0},
		},
		{
			"zeros after nonzero do not retrigger",
			[]float64{0, 1, 0, 0, -1, 0, 1},
			[]float64{0, 1, 0, 0, -1, 0, 1},
		},
		{
			"all hold stays hold",
			[]float64{0, 0, 0},
			[]float64{0, 0, 0},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, RemoveRepeated(c.in))
		})
	}
}

func TestRemoveRepeatedNoConsecutiveNonzero(t *testing.T) {
	in := []float64{0, 1, 1, -1, -1, 1, 0, 0, -1, -1, -1, 1, 1}
	out := RemoveRepeated(in)
	for i := 1; i < len(out); i++ {
		if out[i] != Hold {
			// scan back to the previous nonzero; it must differ
			for j := i - 1; j >= 0; j-- {
				if out[j] != Hold {
					assert.NotEqual(t, out[j], out[i], "position %d", i)
					break
				}
			}
		}
	}
}

func frameFromCloses(closes []float64) *indicator.Frame {
	s := series.New()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		s.Append(series.Candle{
			OpenTime: base.Add(time.Duration(i) * time.Minute),
			Open:     c,
			High:     c,
			Low:      c,
			Close:    c,
			Volume:   1,
		})
	}
	return indicator.NewFrame(s)
}

func TestCross(t *testing.T) {
	fast := func(f *indicator.Frame) []float64 { return []float64{1, 3, 1, 3} }
	slow := func(f *indicator.Frame) []float64 { return []float64{2, 2, 2, 2} }

	sig := Cross(fast, slow)(frameFromCloses([]float64{0, 0, 0, 0}))
	assert.Equal(t, []float64{Sell, Buy, Sell, Buy}, sig)
}

func TestCrossHoldsDuringWarmup(t *testing.T) {
	fast := func(f *indicator.Frame) []float64 { return []float64{1, 3} }
	slow := func(f *indicator.Frame) []float64 { return []float64{math.NaN(), 2} }

	sig := Cross(fast, slow)(frameFromCloses([]float64{0, 0}))
	assert.Equal(t, []float64{Hold, Buy}, sig)
}

func TestThresholdAndHeld(t *testing.T) {
	col := func(f *indicator.Frame) []float64 { return []float64{50, 25, 50, 75, 50} }
	frame := frameFromCloses([]float64{0, 0, 0, 0, 0})

	plain := Threshold(col, 30, 70)(frame)
	assert.Equal(t, []float64{0, Buy, 0, Sell, 0}, plain)

	held := ThresholdHeld(col, 30, 70)(frame)
	assert.Equal(t, []float64{0, Buy, Buy, Sell, Sell}, held)
}

func TestThresholdRecross(t *testing.T) {
	// dips below 30 then recrosses up: buy on the recross, not the dip
	col := func(f *indicator.Frame) []float64 { return []float64{50, 25, 35, 80, 65, 40} }
	frame := frameFromCloses(make([]float64, 6))

	sig := ThresholdRecross(col, 30, 70)(frame)
	assert.Equal(t, []float64{0, 0, Buy, 0, Sell, 0}, sig)
}

func TestBandBreakoutEdgeTriggered(t *testing.T) {
	price := func(f *indicator.Frame) []float64 { return []float64{5, 9, 15, 31, 25, 24} }
	upper := func(f *indicator.Frame) []float64 { return []float64{30, 30, 30, 30, 30, 30} }
	lower := func(f *indicator.Frame) []float64 { return []float64{10, 10, 10, 10, 10, 10} }
	frame := frameFromCloses(make([]float64, 6))

	sig := BandBreakout(price, upper, lower)(frame)
	// buy at the upward lower-band cross, sell at the downward upper-band
	// cross, nothing while simply inside or outside the bands
	assert.Equal(t, []float64{0, 0, Buy, 0, Sell, 0}, sig)
}

func TestCompositeAllLegsRequired(t *testing.T) {
	a := GreaterThan(func(f *indicator.Frame) []float64 { return []float64{1, 1, 0} }, 0.5)
	b := GreaterThan(func(f *indicator.Frame) []float64 { return []float64{0, 1, 1} }, 0.5)
	frame := frameFromCloses(make([]float64, 3))

	sig := Composite([]Condition{a, b}, nil)(frame)
	assert.Equal(t, []float64{0, Buy, 0}, sig)
}

func TestMomentum5mStateFold(t *testing.T) {
	// rising prices push close above the EMA with positive histogram, the
	// later drop closes the position exactly once
	closes := make([]float64, 0, 60)
	v := 100.0
	for i := 0; i < 40; i++ {
		v += 1
		closes = append(closes, v)
	}
	for i := 0; i < 20; i++ {
		v -= 3
		closes = append(closes, v)
	}
	sig := Momentum5m(20)(frameFromCloses(closes))

	buys, sells := 0, 0
	lastBuy, lastSell := -1, -1
	for i, s := range sig {
		switch s {
		case Buy:
			buys++
			lastBuy = i
		case Sell:
			sells++
			lastSell = i
		}
	}
	require.GreaterOrEqual(t, buys, 1)
	require.GreaterOrEqual(t, sells, 1)
	// strictly alternating entries and exits
	assert.Equal(t, buys, sells)
	assert.Less(t, lastBuy, lastSell)
}

func TestRegistryAppliesSuppression(t *testing.T) {
	r := NewRegistry()
	r.Register("const_buy", func(f *indicator.Frame) []float64 {
		out := make([]float64, f.Len())
		for i := range out {
			out[i] = Buy
		}
		return out
	})

	fn, err := r.Get("const_buy")
	require.NoError(t, err)

	sig := fn(frameFromCloses([]float64{1, 2, 3, 4}))
	assert.Equal(t, []float64{Buy, 0, 0, 0}, sig)
}

func TestRegistryUnknownName(t *testing.T) {
	_, err := NewRegistry().Get("no_such_signal")
	assert.Error(t, err)
}

func TestRegistryDefaultNamesPresent(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{
		"price_sma_50", "cross_sma_10_50", "cross_ema_9_21", "macd",
		"rsi", "rsi_hold", "rsi_plus", "stoch", "bbands",
		"rsi_adx", "dmi", "adx_macd", "macd_rvi",
		"momo_5m", "sma_macd",
	} {
		_, err := r.Get(name)
		assert.NoError(t, err, name)
	}
}
