package helper

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Trunc cuts value at the decimal position implied by step, toward zero.
// Trunc(5.999, 0.01) = 5.99, never 6.00. Negative values truncate toward
// zero too: Trunc(-5.991, 0.01) = -5.99. A step >= 1 (or a step without a
// '1' digit in its fraction) truncates to a whole number.
func Trunc(value, step float64) float64 {
	if step <= 0 {
		return value
	}

	v := decimal.NewFromFloat(value)
	s := decimal.NewFromFloat(step)

	if s.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		out, _ := v.Truncate(0).Float64()
		return out
	}

	places := stepDecimalPlaces(s)
	out, _ := v.Truncate(places).Float64()
	return out
}

// stepDecimalPlaces finds the position of the '1' digit in the step's
// fraction: 0.01 -> 2, 0.001 -> 3. Steps without a '1' digit collapse to 0.
func stepDecimalPlaces(step decimal.Decimal) int32 {
	str := step.String()
	dot := strings.IndexByte(str, '.')
	if dot < 0 {
		return 0
	}
	one := strings.IndexByte(str[dot+1:], '1')
	if one < 0 {
		return 0
	}
	return int32(one) + 1
}

func RoundDownToTick(px, tick float64) float64 {
	if tick <= 0 {
		return px
	}
	steps := math.Floor(px/tick + 1e-12)
	return steps * tick
}

func RoundUpToTick(px, tick float64) float64 {
	if tick <= 0 {
		return px
	}
	steps := math.Ceil(px/tick - 1e-12)
	return steps * tick
}
