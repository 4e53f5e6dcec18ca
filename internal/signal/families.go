package signal

import (
	"candle_bot/internal/indicator"
)

// Column produces one indicator column from a frame.
type Column func(f *indicator.Frame) []float64

// Func evaluates one named strategy over a frame.
type Func func(f *indicator.Frame) []float64

// Cross holds +1 while fast > slow and -1 while fast <= slow, 0 while the
// slow column is still undefined. The held value flips exactly when the
// columns cross.
func Cross(fast, slow Column) Func {
	return func(f *indicator.Frame) []float64 {
		a := fast(f)
		b := slow(f)
		sig := make([]float64, f.Len())
		for i := range sig {
			switch {
			case nan(a[i]) || nan(b[i]):
				sig[i] = Hold
			case a[i] > b[i]:
				sig[i] = Buy
			default:
				sig[i] = Sell
			}
		}
		return Normalize(sig)
	}
}

// Threshold buys below the oversold bound and sells above the overbought
// bound, holding 0 in between.
func Threshold(col Column, oversold, overbought float64) Func {
	return func(f *indicator.Frame) []float64 {
		x := col(f)
		sig := make([]float64, f.Len())
		for i, v := range x {
			switch {
			case nan(v):
				sig[i] = Hold
			case v < oversold:
				sig[i] = Buy
			case v > overbought:
				sig[i] = Sell
			default:
				sig[i] = Hold
			}
		}
		return Normalize(sig)
	}
}

// ThresholdHeld is the state-held Threshold variant: between the bounds the
// last nonzero signal persists instead of resetting, representing
// "currently long" vs "currently flat".
func ThresholdHeld(col Column, oversold, overbought float64) Func {
	plain := Threshold(col, oversold, overbought)
	return func(f *indicator.Frame) []float64 {
		sig := plain(f)
		last := Hold
		for i, v := range sig {
			if v != Hold {
				last = v
			}
			sig[i] = last
		}
		return sig
	}
}

// BandBreakout is edge-triggered: +1 on an upward crossing of the lower
// band, -1 on a downward crossing of the upper band, comparing the
// previous bar against the previous band value.
func BandBreakout(price, upper, lower Column) Func {
	return func(f *indicator.Frame) []float64 {
		p := price(f)
		up := upper(f)
		lo := lower(f)
		sig := make([]float64, f.Len())
		for i := 1; i < f.Len(); i++ {
			if nan(up[i]) || nan(lo[i]) || nan(up[i-1]) || nan(lo[i-1]) {
				continue
			}
			if p[i-1] < lo[i-1] && p[i] >= lo[i] {
				sig[i] = Buy
			}
			if p[i-1] > up[i-1] && p[i] <= up[i] {
				sig[i] = Sell
			}
		}
		return Normalize(sig)
	}
}

// Condition is one leg of a composite signal.
type Condition func(f *indicator.Frame) []bool

// Composite ANDs the buy conditions to +1 and the sell conditions to -1,
// 0 otherwise.
func Composite(buy, sell []Condition) Func {
	return func(f *indicator.Frame) []float64 {
		n := f.Len()
		sig := make([]float64, n)

		evalAll := func(conds []Condition) [][]bool {
			out := make([][]bool, len(conds))
			for i, c := range conds {
				out[i] = c(f)
			}
			return out
		}
		buys := evalAll(buy)
		sells := evalAll(sell)

		all := func(rows [][]bool, i int) bool {
			for _, r := range rows {
				if !r[i] {
					return false
				}
			}
			return len(rows) > 0
		}

		for i := 0; i < n; i++ {
			switch {
			case all(buys, i):
				sig[i] = Buy
			case all(sells, i):
				sig[i] = Sell
			}
		}
		return Normalize(sig)
	}
}

// GreaterThan builds a Condition comparing a column against a constant.
// NaN never satisfies the condition.
func GreaterThan(col Column, bound float64) Condition {
	return func(f *indicator.Frame) []bool {
		x := col(f)
		out := make([]bool, len(x))
		for i, v := range x {
			out[i] = !nan(v) && v > bound
		}
		return out
	}
}

// LessThan builds a strict lower-bound Condition.
func LessThan(col Column, bound float64) Condition {
	return func(f *indicator.Frame) []bool {
		x := col(f)
		out := make([]bool, len(x))
		for i, v := range x {
			out[i] = !nan(v) && v < bound
		}
		return out
	}
}

// LessOrEqual is the complement leg used by sell sides of composites.
func LessOrEqual(col Column, bound float64) Condition {
	return func(f *indicator.Frame) []bool {
		x := col(f)
		out := make([]bool, len(x))
		for i, v := range x {
			out[i] = !nan(v) && v <= bound
		}
		return out
	}
}

// ColGreater compares two columns elementwise.
func ColGreater(a, b Column) Condition {
	return func(f *indicator.Frame) []bool {
		xa := a(f)
		xb := b(f)
		out := make([]bool, len(xa))
		for i := range xa {
			out[i] = !nan(xa[i]) && !nan(xb[i]) && xa[i] > xb[i]
		}
		return out
	}
}

// ColLessOrEqual compares two columns elementwise.
func ColLessOrEqual(a, b Column) Condition {
	return func(f *indicator.Frame) []bool {
		xa := a(f)
		xb := b(f)
		out := make([]bool, len(xa))
		for i := range xa {
			out[i] = !nan(xa[i]) && !nan(xb[i]) && xa[i] <= xb[i]
		}
		return out
	}
}

type posState int

const (
	flat posState = iota
	long
)

// Momentum5m is the five-minute-momentum style stateful signal: enter long
// when price is above the EMA with a positive MACD histogram, exit when
// price falls back under the EMA while long. Exit depends on entry state,
// so this is a left-to-right FLAT/LONG fold, not a vector expression.
func Momentum5m(emaPeriod int) Func {
	return func(f *indicator.Frame) []float64 {
		ema := indicator.EMA(f.Close, emaPeriod)
		_, _, hist := indicator.MACD(f.Close)

		sig := make([]float64, f.Len())
		state := flat
		for i := 0; i < f.Len(); i++ {
			if nan(ema[i]) {
				continue
			}
			if state == flat && f.Close[i] > ema[i] && hist[i] > 0 {
				sig[i] = Buy
				state = long
				continue
			}
			if state == long && f.Close[i] < ema[i] {
				sig[i] = Sell
				state = flat
			}
		}
		return Normalize(sig)
	}
}

// SMAMACD enters long when price is above both moving averages and the
// MACD line has been positive for fewer than six bars (older runs are
// treated as exhausted); exits when price drops below the short average.
func SMAMACD(shortPeriod, longPeriod int) Func {
	return func(f *indicator.Frame) []float64 {
		short := indicator.SMA(f.Close, shortPeriod)
		longSMA := indicator.SMA(f.Close, longPeriod)
		macd, _, _ := indicator.MACD(f.Close)

		sig := make([]float64, f.Len())
		state := flat
		for i := 0; i < f.Len(); i++ {
			if nan(short[i]) || nan(longSMA[i]) {
				continue
			}
			if state == flat && f.Close[i] > short[i] && f.Close[i] > longSMA[i] {
				run := 0
				for pos := i; pos > 0 && macd[pos] > 0; pos-- {
					run++
				}
				if run > 0 && run < 6 {
					sig[i] = Buy
					state = long
					continue
				}
			}
			if state == long && f.Close[i] < short[i] {
				sig[i] = Sell
				state = flat
			}
		}
		return Normalize(sig)
	}
}

// ThresholdRecross is edge-triggered on re-entry into the band: sell when
// the column falls back through the overbought bound while long, buy when
// it rises back through the oversold bound while flat.
func ThresholdRecross(col Column, oversold, overbought float64) Func {
	return func(f *indicator.Frame) []float64 {
		x := col(f)
		sig := make([]float64, f.Len())
		state := flat
		for i := 1; i < f.Len(); i++ {
			if nan(x[i]) || nan(x[i-1]) {
				continue
			}
			if state == long && x[i-1] > overbought && x[i] <= overbought {
				sig[i] = Sell
				state = flat
				continue
			}
			if state == flat && x[i-1] < oversold && x[i] >= oversold {
				sig[i] = Buy
				state = long
			}
		}
		return Normalize(sig)
	}
}
