package signal

import (
	"fmt"

	"candle_bot/internal/indicator"
)

// Registry dispatches strategies by the name referenced in a strategy
// definition's signal column. Repeated-signal suppression is applied
// uniformly to every registered strategy, so a nonzero value appears only
// at the instant the signal changes.
type Registry struct {
	m map[string]Func
}

func NewRegistry() *Registry {
	r := &Registry{m: make(map[string]Func)}
	r.registerDefaults()
	return r
}

// Register wraps fn with the suppression pass and stores it under name.
func (r *Registry) Register(name string, fn Func) {
	r.m[name] = func(f *indicator.Frame) []float64 {
		return RemoveRepeated(fn(f))
	}
}

func (r *Registry) Get(name string) (Func, error) {
	fn, ok := r.m[name]
	if !ok {
		return nil, fmt.Errorf("unknown signal %q", name)
	}
	return fn, nil
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	return out
}

func closeCol(f *indicator.Frame) []float64 { return f.Close }

func smaCol(period int) Column {
	return func(f *indicator.Frame) []float64 { return indicator.SMA(f.Close, period) }
}

func emaCol(period int) Column {
	return func(f *indicator.Frame) []float64 { return indicator.EMA(f.Close, period) }
}

func rsiCol(period int) Column {
	return func(f *indicator.Frame) []float64 { return indicator.RSI(f.Close, period) }
}

func macdCol(f *indicator.Frame) []float64 {
	macd, _, _ := indicator.MACD(f.Close)
	return macd
}

func macdSignalCol(f *indicator.Frame) []float64 {
	_, sig, _ := indicator.MACD(f.Close)
	return sig
}

func macdHistCol(f *indicator.Frame) []float64 {
	_, _, hist := indicator.MACD(f.Close)
	return hist
}

func diPlusCol(f *indicator.Frame) []float64 {
	plus, _, _ := indicator.ADX(f.High, f.Low, f.Close, 14)
	return plus
}

func diMinusCol(f *indicator.Frame) []float64 {
	_, minus, _ := indicator.ADX(f.High, f.Low, f.Close, 14)
	return minus
}

func adxCol(f *indicator.Frame) []float64 {
	_, _, adx := indicator.ADX(f.High, f.Low, f.Close, 14)
	return adx
}

func rviCol(f *indicator.Frame) []float64 {
	return indicator.RVI(f.Open, f.High, f.Low, f.Close, 10)
}

func stochCol(f *indicator.Frame) []float64 {
	k, _ := indicator.Stochastic(f.High, f.Low, f.Close, 14, 3)
	return k
}

func bbUpperCol(f *indicator.Frame) []float64 {
	up, _, _ := indicator.Bollinger(f.Close, 20, 2)
	return up
}

func bbLowerCol(f *indicator.Frame) []float64 {
	_, _, lo := indicator.Bollinger(f.Close, 20, 2)
	return lo
}

func (r *Registry) registerDefaults() {
	// cross family
	r.Register("price_sma_50", Cross(closeCol, smaCol(50)))
	r.Register("cross_sma_10_50", Cross(smaCol(10), smaCol(50)))
	r.Register("cross_sma_50_100", Cross(smaCol(50), smaCol(100)))
	r.Register("cross_ema_9_21", Cross(emaCol(9), emaCol(21)))
	r.Register("macd", Cross(macdCol, macdSignalCol))

	// threshold family
	r.Register("rsi", Threshold(rsiCol(14), 30, 70))
	r.Register("rsi_hold", ThresholdHeld(rsiCol(14), 30, 70))
	r.Register("rsi_plus", ThresholdRecross(rsiCol(14), 30, 70))
	r.Register("stoch", Threshold(stochCol, 20, 80))

	// band family
	r.Register("bbands", BandBreakout(closeCol, bbUpperCol, bbLowerCol))

	// composite family
	r.Register("rsi_adx", Composite(
		[]Condition{LessThan(rsiCol(14), 30), GreaterThan(adxCol, 25)},
		[]Condition{GreaterThan(rsiCol(14), 70), GreaterThan(adxCol, 25)},
	))
	r.Register("dmi", Composite(
		[]Condition{ColGreater(diPlusCol, diMinusCol), GreaterThan(adxCol, 25)},
		[]Condition{ColLessOrEqual(diPlusCol, diMinusCol), GreaterThan(adxCol, 25)},
	))
	r.Register("adx_macd", Composite(
		[]Condition{GreaterThan(macdCol, 0), ColGreater(diPlusCol, diMinusCol), GreaterThan(adxCol, 20)},
		[]Condition{LessOrEqual(macdCol, 0), ColLessOrEqual(diPlusCol, diMinusCol), GreaterThan(adxCol, 20)},
	))
	r.Register("macd_rvi", Composite(
		[]Condition{GreaterThan(macdHistCol, 0), GreaterThan(rviCol, 0)},
		[]Condition{LessOrEqual(macdHistCol, 0), LessOrEqual(rviCol, 0)},
	))

	// stateful family
	r.Register("momo_5m", Momentum5m(20))
	r.Register("sma_macd", SMAMACD(50, 100))
}
