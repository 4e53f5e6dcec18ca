// Package pg mirrors the candle series into Postgres. Selected instead of
// the CSV files when the process config carries a database DSN.
package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"candle_bot/internal/series"
	"candle_bot/pkg/db"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS ohlcv (
		pair       TEXT             NOT NULL,
		open_time  TIMESTAMPTZ      NOT NULL,
		open       DOUBLE PRECISION NOT NULL,
		high       DOUBLE PRECISION NOT NULL,
		low        DOUBLE PRECISION NOT NULL,
		close      DOUBLE PRECISION NOT NULL,
		volume     DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (pair, open_time)
	)`

	upsertSQL = `INSERT INTO ohlcv (pair, open_time, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (pair, open_time) DO NOTHING`

	selectSQL = `SELECT open_time, open, high, low, close, volume
		FROM ohlcv WHERE pair = $1 ORDER BY open_time`
)

type Store struct {
	ctx context.Context
	tm  *db.PgTxManager
}

func NewStore(ctx context.Context, tm *db.PgTxManager) (*Store, error) {
	s := &Store{ctx: ctx, tm: tm}
	if _, err := tm.Conn().Exec(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("create ohlcv table: %w", err)
	}
	return s, nil
}

func (s *Store) Load(pair string) (*series.Series, error) {
	rows, err := s.tm.Conn().Query(s.ctx, selectSQL, pair)
	if err != nil {
		return nil, fmt.Errorf("select ohlcv: %w", err)
	}
	defer rows.Close()

	var candles []series.Candle
	for rows.Next() {
		var c series.Candle
		if err := rows.Scan(&c.OpenTime, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan ohlcv row: %w", err)
		}
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ohlcv rows: %w", err)
	}
	return series.FromCandles(candles), nil
}

// Save upserts the whole series in one transaction; existing timestamps
// are left untouched (local rows already won during reconciliation).
func (s *Store) Save(pair string, sr *series.Series) error {
	return s.tm.RunMaster(s.ctx, func(ctx context.Context, tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, c := range sr.Candles() {
			batch.Queue(upsertSQL, pair, c.OpenTime, c.Open, c.High, c.Low, c.Close, c.Volume)
		}
		res := tx.SendBatch(ctx, batch)
		defer func() {
			_ = res.Close()
		}()
		for range sr.Candles() {
			if _, err := res.Exec(); err != nil {
				return fmt.Errorf("upsert candle: %w", err)
			}
		}
		return nil
	})
}
