package series

import "time"

// Resample aggregates the base series into interval-aligned buckets:
// open = first, high = max, low = min, close = last, volume = sum.
// Buckets with no candles simply do not appear. The final bucket is always
// dropped because it is the still-forming, not-yet-closed one; a series
// too short to fill a single closed bucket resamples to empty.
func Resample(s *Series, iv Interval) *Series {
	if iv.IsBase() {
		return FromCandles(s.Candles())
	}
	if s.Len() == 0 {
		return New()
	}

	out := make([]Candle, 0, s.Len())
	var cur Candle
	open := false

	for _, c := range s.Candles() {
		start := iv.BucketStart(c.OpenTime)
		if open && start.Equal(cur.OpenTime) {
			if c.High > cur.High {
				cur.High = c.High
			}
			if c.Low < cur.Low {
				cur.Low = c.Low
			}
			cur.Close = c.Close
			cur.Volume += c.Volume
			continue
		}
		if open {
			out = append(out, cur)
		}
		cur = Candle{
			OpenTime: start,
			Open:     c.Open,
			High:     c.High,
			Low:      c.Low,
			Close:    c.Close,
			Volume:   c.Volume,
		}
		open = true
	}
	// the last bucket is the incomplete one and is discarded; the buckets
	// already flushed are exactly the closed ones
	return &Series{candles: out}
}

// IsIntervalClosed reports whether the most recently appended base candle
// completes a bucket boundary for iv. Boundary rules by unit:
//
//	minute: last open-time minute is a multiple of N
//	hour:   hour component changed from the previous candle, and for
//	        multi-hour intervals the previous hour is a multiple of N
//	1d:     day component changed
//	3d/1w:  (days elapsed since the series start - 1) % N == 0; this is
//	        anchored to the series' first timestamp, not a calendar epoch,
//	        and is preserved as observed behavior
//	1M:     month component changed
//
// The base interval is always closed.
func IsIntervalClosed(s *Series, iv Interval) bool {
	if iv.IsBase() {
		return true
	}
	last, ok := s.Last()
	if !ok {
		return false
	}

	switch iv.Unit {
	case UnitMinute:
		return last.OpenTime.UTC().Minute()%iv.N == 0

	case UnitHour:
		if s.Len() < 2 {
			return false
		}
		prev := s.At(s.Len() - 2)
		if last.OpenTime.UTC().Hour() == prev.OpenTime.UTC().Hour() {
			return false
		}
		if iv.N > 1 {
			return prev.OpenTime.UTC().Hour()%iv.N == 0
		}
		return true

	case UnitDay:
		if iv.N == 1 {
			if s.Len() < 2 {
				return false
			}
			prev := s.At(s.Len() - 2)
			return last.OpenTime.UTC().Day() != prev.OpenTime.UTC().Day()
		}
		return daysAnchoredClosed(s, iv.N)

	case UnitWeek:
		return daysAnchoredClosed(s, 7*iv.N)

	default: // month
		if s.Len() < 2 {
			return false
		}
		prev := s.At(s.Len() - 2)
		return last.OpenTime.UTC().Month() != prev.OpenTime.UTC().Month()
	}
}

func daysAnchoredClosed(s *Series, n int) bool {
	first, ok := s.First()
	if !ok {
		return false
	}
	last, _ := s.Last()

	elapsed := int(last.OpenTime.UTC().Truncate(24*time.Hour).
		Sub(first.OpenTime.UTC().Truncate(24*time.Hour)).Hours() / 24)
	if elapsed < 1 {
		return false
	}
	return (elapsed-1)%n == 0
}
