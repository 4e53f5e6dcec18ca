// Package store persists the per-pair OHLCV series and reconciles it with
// freshly fetched exchange history.
package store

import (
	"context"
	"time"

	"candle_bot/internal/series"
)

// Store loads and saves the full candle series for a pair. Load returns an
// empty series when nothing is persisted yet (cold start is not an error).
type Store interface {
	Load(pair string) (*series.Series, error)
	Save(pair string, s *series.Series) error
}

// HistoryFetcher is the slice of the exchange client reconciliation needs.
type HistoryFetcher interface {
	Klines(ctx context.Context, pair, interval string, since time.Time) (*series.Series, error)
	EarliestTime(ctx context.Context, pair, interval string) (time.Time, error)
}

// Reconcile merges local history with a fresh remote fetch. The remote
// fetch starts at max(last local timestamp, earliest available remote
// timestamp), its final (still open) bar is discarded, and the result is
// split around the local range so that on a timestamp conflict the local
// candle wins. Handles both cold start (empty local, pure remote) and gap
// backfill after a disconnect.
func Reconcile(ctx context.Context, local *series.Series, pair, interval string, f HistoryFetcher) (*series.Series, error) {
	earliest, err := f.EarliestTime(ctx, pair, interval)
	if err != nil {
		return nil, err
	}

	since := earliest
	if last, ok := local.Last(); ok && last.OpenTime.After(since) {
		since = last.OpenTime
	}

	remote, err := f.Klines(ctx, pair, interval, since)
	if err != nil {
		return nil, err
	}
	// the final remote bar is the one still forming
	candles := remote.Candles()
	if len(candles) > 0 {
		remote = series.FromCandles(candles[:len(candles)-1])
	}

	if local.Len() == 0 {
		return remote, nil
	}

	first, _ := local.First()
	last, _ := local.Last()

	var before, after []series.Candle
	for _, c := range remote.Candles() {
		switch {
		case c.OpenTime.Before(first.OpenTime):
			before = append(before, c)
		case c.OpenTime.After(last.OpenTime):
			after = append(after, c)
		}
	}
	return series.Merge(series.FromCandles(before), local, series.FromCandles(after)), nil
}
