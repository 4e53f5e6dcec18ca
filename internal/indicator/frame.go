// Package indicator computes technical indicator columns over an OHLCV
// frame. Every function is pure: it takes float64 columns and returns
// aligned columns, with math.NaN() marking positions before an indicator
// has enough history.
package indicator

import (
	"time"

	"candle_bot/internal/series"
)

// Frame is a resampled series in columnar form, the working view the
// signal engine evaluates against. It is rebuilt from scratch on every
// evaluation, never updated incrementally.
type Frame struct {
	Time   []time.Time
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

func NewFrame(s *series.Series) *Frame {
	n := s.Len()
	f := &Frame{
		Time:   make([]time.Time, n),
		Open:   make([]float64, n),
		High:   make([]float64, n),
		Low:    make([]float64, n),
		Close:  make([]float64, n),
		Volume: make([]float64, n),
	}
	for i, c := range s.Candles() {
		f.Time[i] = c.OpenTime
		f.Open[i] = c.Open
		f.High[i] = c.High
		f.Low[i] = c.Low
		f.Close[i] = c.Close
		f.Volume[i] = c.Volume
	}
	return f
}

func (f *Frame) Len() int {
	return len(f.Close)
}
