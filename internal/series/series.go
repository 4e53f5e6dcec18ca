// Package series holds the per-pair OHLCV time series and its derived views.
package series

import (
	"sort"
	"time"
)

// Candle is one closed OHLCV bar. Identified uniquely by OpenTime.
type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// Series is an ordered sequence of candles for one pair at the base
// granularity (1 minute). OpenTime is strictly increasing. A Series is
// owned by exactly one processing context; it is not safe for concurrent
// mutation.
type Series struct {
	candles []Candle
}

func New() *Series {
	return &Series{}
}

// FromCandles builds a Series from an arbitrary slice: sorts by OpenTime
// and drops exact-timestamp duplicates, keeping the first occurrence.
func FromCandles(cs []Candle) *Series {
	out := make([]Candle, len(cs))
	copy(out, cs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OpenTime.Before(out[j].OpenTime) })

	dedup := out[:0]
	for _, c := range out {
		if len(dedup) > 0 && !c.OpenTime.After(dedup[len(dedup)-1].OpenTime) {
			continue
		}
		dedup = append(dedup, c)
	}
	return &Series{candles: dedup}
}

func (s *Series) Len() int {
	return len(s.candles)
}

func (s *Series) At(i int) Candle {
	return s.candles[i]
}

func (s *Series) First() (Candle, bool) {
	if len(s.candles) == 0 {
		return Candle{}, false
	}
	return s.candles[0], true
}

func (s *Series) Last() (Candle, bool) {
	if len(s.candles) == 0 {
		return Candle{}, false
	}
	return s.candles[len(s.candles)-1], true
}

// Append adds a candle at the tail. Candles at or before the current last
// OpenTime are ignored; live reconnects replay bars the series already has.
func (s *Series) Append(c Candle) bool {
	if last, ok := s.Last(); ok && !c.OpenTime.After(last.OpenTime) {
		return false
	}
	s.candles = append(s.candles, c)
	return true
}

// Candles returns the backing slice. Callers must not mutate it.
func (s *Series) Candles() []Candle {
	return s.candles
}

// Merge assembles [before, local, after] into one series. Rows of before
// at or past local's first timestamp and rows of after at or preceding
// local's last timestamp are discarded, so on timestamp conflict the local
// candle always wins.
func Merge(before, local, after *Series) *Series {
	if local.Len() == 0 {
		merged := append(append([]Candle{}, before.candles...), after.candles...)
		return FromCandles(merged)
	}

	first := local.candles[0].OpenTime
	last := local.candles[local.Len()-1].OpenTime

	out := make([]Candle, 0, before.Len()+local.Len()+after.Len())
	for _, c := range before.candles {
		if c.OpenTime.Before(first) {
			out = append(out, c)
		}
	}
	out = append(out, local.candles...)
	for _, c := range after.candles {
		if c.OpenTime.After(last) {
			out = append(out, c)
		}
	}
	return FromCandles(out)
}
