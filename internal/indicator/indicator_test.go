package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	out := SMA([]float64{1, 2, 3, 4, 5}, 3)
	require.Len(t, out, 5)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.Equal(t, 2.0, out[2])
	assert.Equal(t, 3.0, out[3])
	assert.Equal(t, 4.0, out[4])
}

func TestSMATooShort(t *testing.T) {
	for _, v := range SMA([]float64{1, 2}, 3) {
		assert.True(t, math.IsNaN(v))
	}
}

func TestEMAConstantSeries(t *testing.T) {
	out := EMA([]float64{5, 5, 5, 5}, 3)
	for _, v := range out {
		assert.Equal(t, 5.0, v)
	}
}

func TestWilderSmoothingSeed(t *testing.T) {
	x := []float64{math.NaN(), math.NaN(), 2, 4, 6, 8}
	out := WilderSmoothing(x, 3)

	// seed lands period-1 after the first valid input
	assert.True(t, math.IsNaN(out[2]))
	assert.True(t, math.IsNaN(out[3]))
	assert.Equal(t, 4.0, out[4]) // mean of 2, 4, 6
	assert.InDelta(t, (4.0*2+8)/3, out[5], 1e-12)
}

func TestWilderSmoothingConstantStaysConstant(t *testing.T) {
	x := []float64{3, 3, 3, 3, 3, 3}
	out := WilderSmoothing(x, 4)
	for i := 3; i < len(out); i++ {
		assert.InDelta(t, 3.0, out[i], 1e-12)
	}
}

func TestRSIClamps(t *testing.T) {
	up := []float64{1, 2, 3, 4, 5, 6}
	for _, v := range RSI(up, 3)[1:] {
		assert.Equal(t, 100.0, v)
	}

	down := []float64{6, 5, 4, 3, 2, 1}
	for _, v := range RSI(down, 3)[1:] {
		assert.Equal(t, 0.0, v)
	}

	// flat series has zero gain and zero loss; the gain clamp wins
	flat := []float64{5, 5, 5, 5}
	for _, v := range RSI(flat, 3)[1:] {
		assert.Equal(t, 0.0, v)
	}
}

func TestRSIWarmup(t *testing.T) {
	out := RSI([]float64{1, 2, 1, 2, 1}, 2)
	assert.True(t, math.IsNaN(out[0]))
	for _, v := range out[1:] {
		assert.False(t, math.IsNaN(v))
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestBollingerUsesSampleStddev(t *testing.T) {
	close := []float64{2, 4, 6, 8}
	upper, mid, lower := Bollinger(close, 3, 2)

	assert.Equal(t, 4.0, mid[2])
	// sample stddev of {2,4,6} is 2
	assert.InDelta(t, 8.0, upper[2], 1e-12)
	assert.InDelta(t, 0.0, lower[2], 1e-12)
	assert.True(t, math.IsNaN(mid[0]))
}

func TestATRConstantRange(t *testing.T) {
	n := 20
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	for i := range high {
		high[i] = 11
		low[i] = 9
		close[i] = 10
	}
	out := ATR(high, low, close, 5)
	assert.InDelta(t, 2.0, out[n-1], 1e-9)
}

func TestADXDirectionalBias(t *testing.T) {
	n := 40
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	for i := range high {
		v := float64(i)
		high[i] = v + 1
		low[i] = v
		close[i] = v + 0.5
	}
	diPlus, diMinus, adx := ADX(high, low, close, 14)

	last := n - 1
	require.False(t, math.IsNaN(diPlus[last]))
	require.False(t, math.IsNaN(diMinus[last]))
	assert.Greater(t, diPlus[last], diMinus[last])
	assert.False(t, math.IsNaN(adx[last]))
	assert.Greater(t, adx[last], 0.0)
}

func TestMomentum(t *testing.T) {
	out := Momentum([]float64{1, 2, 4, 7}, 2)
	assert.True(t, math.IsNaN(out[1]))
	assert.Equal(t, 3.0, out[2])
	assert.Equal(t, 5.0, out[3])
}
