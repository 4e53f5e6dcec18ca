package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrunc(t *testing.T) {
	cases := []struct {
		name  string
		value float64
		step  float64
		want  float64
	}{
		{"cuts below", 5.999, 0.01, 5.99},
		{"negative toward zero", -5.991, 0.01, -5.99},
		{"three places", 0.123456, 0.001, 0.123},
		{"whole step", 17.8, 1.0, 17.0},
		{"step above one", 123.9, 10.0, 123.0},
		{"exact stays", 5.99, 0.01, 5.99},
		{"zero value", 0, 0.01, 0},
		{"no step", 5.999, 0, 5.999},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Trunc(c.value, c.step))
		})
	}
}

func TestTruncIdempotent(t *testing.T) {
	for _, v := range []float64{5.991, -5.991, 0.123456, 100.0001} {
		once := Trunc(v, 0.01)
		assert.Equal(t, once, Trunc(once, 0.01), "value %v", v)
	}
}

func TestRoundToTick(t *testing.T) {
	assert.InDelta(t, 99.95, RoundDownToTick(99.957, 0.01), 1e-9)
	assert.InDelta(t, 99.96, RoundUpToTick(99.951, 0.01), 1e-9)
	// already aligned prices must not move
	assert.InDelta(t, 99.95, RoundDownToTick(99.95, 0.01), 1e-9)
	assert.InDelta(t, 99.95, RoundUpToTick(99.95, 0.01), 1e-9)
}
