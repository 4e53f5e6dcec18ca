package indicator

import "math"

func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func firstValid(x []float64) int {
	for i, v := range x {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}

// SMA is the simple moving average over the trailing period.
func SMA(x []float64, period int) []float64 {
	out := nans(len(x))
	if period <= 0 || len(x) < period {
		return out
	}
	var sum float64
	for i, v := range x {
		sum += v
		if i >= period {
			sum -= x[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA is the exponential moving average with span smoothing
// (alpha = 2/(period+1)), seeded at the first valid input.
func EMA(x []float64, period int) []float64 {
	out := nans(len(x))
	start := firstValid(x)
	if start < 0 || period <= 0 {
		return out
	}
	alpha := 2.0 / float64(period+1)
	out[start] = x[start]
	for i := start + 1; i < len(x); i++ {
		out[i] = out[i-1] + alpha*(x[i]-out[i-1])
	}
	return out
}

// MACD returns the 12/26 convergence-divergence line, its 9-period signal
// line and the histogram (macd - signal).
func MACD(close []float64) (macd, signal, hist []float64) {
	short := EMA(close, 12)
	long := EMA(close, 26)

	macd = make([]float64, len(close))
	for i := range macd {
		macd[i] = short[i] - long[i]
	}
	signal = EMA(macd, 9)

	hist = make([]float64, len(close))
	for i := range hist {
		hist[i] = macd[i] - signal[i]
	}
	return macd, signal, hist
}

// RSI computes the relative strength index with alpha=1/period smoothing
// of gains and losses. Clamps: zero average gain yields 0, zero average
// loss yields 100.
func RSI(close []float64, period int) []float64 {
	out := nans(len(close))
	if len(close) < 2 || period <= 0 {
		return out
	}
	alpha := 1.0 / float64(period)

	var avgGain, avgLoss float64
	for i := 1; i < len(close); i++ {
		change := close[i] - close[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		if i == 1 {
			avgGain, avgLoss = gain, loss
		} else {
			avgGain = (1-alpha)*avgGain + alpha*gain
			avgLoss = (1-alpha)*avgLoss + alpha*loss
		}

		switch {
		case avgGain == 0:
			out[i] = 0
		case avgLoss == 0:
			out[i] = 100
		default:
			rs := avgGain / avgLoss
			out[i] = 100 - (100 / (1 + rs))
		}
	}
	return out
}

// WilderSmoothing seeds index start+period-1 with the simple mean of the
// first period valid values, then recurses
// w[i] = (w[i-1]*(period-1) + x[i]) / period. Positions before the seed
// stay NaN, as do fully-NaN inputs.
func WilderSmoothing(x []float64, period int) []float64 {
	out := nans(len(x))
	start := firstValid(x)
	if start < 0 || start+period > len(x) {
		return out
	}

	var sum float64
	for i := start; i < start+period; i++ {
		sum += x[i]
	}
	out[start+period-1] = sum / float64(period)

	for i := start + period; i < len(x); i++ {
		out[i] = (out[i-1]*float64(period-1) + x[i]) / float64(period)
	}
	return out
}

// ADX returns +DI, -DI and the average directional index, all Wilder
// smoothed. Directional movement for a bar whose previous bar is undefined
// is undefined as well, not zero.
func ADX(high, low, close []float64, period int) (diPlus, diMinus, adx []float64) {
	n := len(close)
	tr := nans(n)
	dmPlus := nans(n)
	dmMinus := nans(n)

	for i := 1; i < n; i++ {
		hl := high[i] - low[i]
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))

		upMove := high[i] - high[i-1]
		downMove := low[i-1] - low[i]

		dmPlus[i] = 0
		if upMove > downMove && upMove > 0 {
			dmPlus[i] = upMove
		}
		dmMinus[i] = 0
		if downMove > upMove && downMove > 0 {
			dmMinus[i] = downMove
		}
	}

	smPlus := WilderSmoothing(dmPlus, period)
	smMinus := WilderSmoothing(dmMinus, period)
	smTR := WilderSmoothing(tr, period)

	diPlus = nans(n)
	diMinus = nans(n)
	dx := nans(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(smTR[i]) || smTR[i] == 0 {
			continue
		}
		diPlus[i] = smPlus[i] / smTR[i] * 100
		diMinus[i] = smMinus[i] / smTR[i] * 100
		if diPlus[i]+diMinus[i] != 0 {
			dx[i] = math.Abs((diPlus[i]-diMinus[i])/(diPlus[i]+diMinus[i])) * 100
		}
	}

	adx = WilderSmoothing(dx, period)
	return diPlus, diMinus, adx
}

// Bollinger returns the upper, middle and lower bands: SMA(period) offset
// by mult sample standard deviations.
func Bollinger(close []float64, period int, mult float64) (upper, mid, lower []float64) {
	n := len(close)
	mid = SMA(close, period)
	upper = nans(n)
	lower = nans(n)
	if period < 2 {
		return upper, mid, lower
	}

	for i := period - 1; i < n; i++ {
		var ss float64
		for j := i - period + 1; j <= i; j++ {
			d := close[j] - mid[i]
			ss += d * d
		}
		std := math.Sqrt(ss / float64(period-1))
		upper[i] = mid[i] + std*mult
		lower[i] = mid[i] - std*mult
	}
	return upper, mid, lower
}

// ATR smooths the true range exponentially with alpha = 1/period.
func ATR(high, low, close []float64, period int) []float64 {
	n := len(close)
	tr := nans(n)
	for i := 1; i < n; i++ {
		hl := high[i] - low[i]
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}

	out := nans(n)
	start := firstValid(tr)
	if start < 0 {
		return out
	}
	alpha := 1.0 / float64(period)
	out[start] = tr[start]
	for i := start + 1; i < n; i++ {
		out[i] = (1-alpha)*out[i-1] + alpha*tr[i]
	}
	return out
}

// RVI relates average candle body direction to average candle range over
// the period: SMA(close-open) / SMA(high-low). Positive values mean the
// period's bodies lean bullish.
func RVI(open, high, low, close []float64, period int) []float64 {
	n := len(close)
	body := make([]float64, n)
	rng := make([]float64, n)
	for i := 0; i < n; i++ {
		body[i] = close[i] - open[i]
		rng[i] = high[i] - low[i]
	}
	num := SMA(body, period)
	den := SMA(rng, period)

	out := nans(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(num[i]) || math.IsNaN(den[i]) || den[i] == 0 {
			continue
		}
		out[i] = num[i] / den[i]
	}
	return out
}

// Stochastic returns the %K oscillator over kPeriod and its dPeriod SMA.
func Stochastic(high, low, close []float64, kPeriod, dPeriod int) (k, d []float64) {
	n := len(close)
	k = nans(n)
	for i := kPeriod - 1; i < n; i++ {
		hi, lo := high[i], low[i]
		for j := i - kPeriod + 1; j <= i; j++ {
			hi = math.Max(hi, high[j])
			lo = math.Min(lo, low[j])
		}
		if hi == lo {
			continue
		}
		k[i] = (close[i] - lo) / (hi - lo) * 100
	}
	d = SMA(k, dPeriod)
	return k, d
}

// Momentum is the fractional n-bar price change: close/close[-n] - 1.
func Momentum(close []float64, n int) []float64 {
	out := nans(len(close))
	for i := n; i < len(close); i++ {
		if close[i-n] == 0 {
			continue
		}
		out[i] = close[i]/close[i-n] - 1
	}
	return out
}

// SMARatio is the deviation of price from its own n-bar mean.
func SMARatio(close []float64, n int) []float64 {
	sma := SMA(close, n)
	out := nans(len(close))
	for i := range close {
		if math.IsNaN(sma[i]) || sma[i] == 0 {
			continue
		}
		out[i] = close[i]/sma[i] - 1
	}
	return out
}

// BollingerWidth is the band spread normalized by the middle band,
// low values flagging consolidation before a move.
func BollingerWidth(upper, lower, mid []float64) []float64 {
	out := nans(len(mid))
	for i := range mid {
		if math.IsNaN(mid[i]) || mid[i] == 0 {
			continue
		}
		out[i] = (upper[i] - lower[i]) / mid[i]
	}
	return out
}

// BollingerB locates price within the bands on a 0-100 scale.
func BollingerB(close, upper, lower []float64) []float64 {
	out := nans(len(close))
	for i := range close {
		w := upper[i] - lower[i]
		if math.IsNaN(w) || w == 0 {
			continue
		}
		out[i] = (close[i] - lower[i]) / w * 100
	}
	return out
}
