package series

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type IntervalUnit int

const (
	UnitMinute IntervalUnit = iota
	UnitHour
	UnitDay
	UnitWeek
	UnitMonth
)

// Interval is a trading timeframe: 1m, 3m, 5m, 15m, 30m, 1h..12h, 1d, 3d,
// 1w, 1M. Base granularity is 1m.
type Interval struct {
	N    int
	Unit IntervalUnit
}

func (iv Interval) String() string {
	switch iv.Unit {
	case UnitMinute:
		return fmt.Sprintf("%dm", iv.N)
	case UnitHour:
		return fmt.Sprintf("%dh", iv.N)
	case UnitDay:
		return fmt.Sprintf("%dd", iv.N)
	case UnitWeek:
		return fmt.Sprintf("%dw", iv.N)
	default:
		return fmt.Sprintf("%dM", iv.N)
	}
}

func (iv Interval) IsBase() bool {
	return iv.Unit == UnitMinute && iv.N == 1
}

// ParseInterval accepts the exchange timeframe notation. "min" suffixes
// ("3min", "15min") are accepted alongside the short form.
func ParseInterval(raw string) (Interval, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Interval{}, fmt.Errorf("empty interval")
	}

	// capital M is months, lower m is minutes
	var unit IntervalUnit
	var num string
	switch {
	case strings.HasSuffix(s, "min"):
		unit, num = UnitMinute, s[:len(s)-3]
	case strings.HasSuffix(s, "M"):
		unit, num = UnitMonth, s[:len(s)-1]
	case strings.HasSuffix(strings.ToLower(s), "m"):
		unit, num = UnitMinute, s[:len(s)-1]
	case strings.HasSuffix(strings.ToLower(s), "h"):
		unit, num = UnitHour, s[:len(s)-1]
	case strings.HasSuffix(strings.ToLower(s), "d"):
		unit, num = UnitDay, s[:len(s)-1]
	case strings.HasSuffix(strings.ToLower(s), "w"):
		unit, num = UnitWeek, s[:len(s)-1]
	default:
		return Interval{}, fmt.Errorf("unknown interval %q", raw)
	}

	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 {
		return Interval{}, fmt.Errorf("invalid interval %q", raw)
	}
	return Interval{N: n, Unit: unit}, nil
}

// BucketStart maps a candle open time to the start of its aggregation
// bucket. Minute, hour and day buckets align to the clock in UTC. Week
// buckets fall back to 7-day spans from the Unix epoch day; multi-day
// buckets likewise. Month buckets are calendar months.
func (iv Interval) BucketStart(t time.Time) time.Time {
	t = t.UTC()
	switch iv.Unit {
	case UnitMinute:
		return t.Truncate(time.Duration(iv.N) * time.Minute)
	case UnitHour:
		return t.Truncate(time.Duration(iv.N) * time.Hour)
	case UnitDay:
		return t.Truncate(time.Duration(iv.N) * 24 * time.Hour)
	case UnitWeek:
		return t.Truncate(time.Duration(iv.N) * 7 * 24 * time.Hour)
	default: // month
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}
