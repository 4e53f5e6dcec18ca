// Package signal maps indicator columns to discrete trading signals.
// A signal column holds -1 (sell), 0 (hold) or +1 (buy) per bar. Strategy
// families are parameterized constructors; concrete strategies are
// registered by name in a Registry and dispatched from the strategy
// definition's signal column.
package signal

import "math"

const (
	Buy  = 1.0
	Sell = -1.0
	Hold = 0.0
)

// Normalize zeroes every element that is not exactly +1 or -1, including
// NaN warmup positions. Applied as the final pass of every family.
func Normalize(sig []float64) []float64 {
	for i, v := range sig {
		if v != Buy && v != Sell {
			sig[i] = Hold
		}
	}
	return sig
}

// RemoveRepeated keeps nonzero values only at the instant of change.
// Zeros after a nonzero signal first inherit the last nonzero value
// (forward fill), then every element equal to its predecessor is zeroed.
// The processor's trigger is "signal changed between the last two bars";
// without this pass every bar of a held position would re-trigger.
func RemoveRepeated(sig []float64) []float64 {
	held := make([]float64, len(sig))
	last := Hold
	for i, v := range sig {
		if v != Hold {
			last = v
		}
		held[i] = last
	}

	out := make([]float64, len(sig))
	for i, v := range held {
		if i > 0 && v == held[i-1] {
			out[i] = Hold
			continue
		}
		out[i] = v
	}
	return out
}

func nan(v float64) bool { return math.IsNaN(v) }
