package store

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"candle_bot/internal/series"
)

const timeLayout = "2006-01-02 15:04:05"

var header = []string{"OpenTime", "OpenPrice", "HighPrice", "LowPrice", "ClosePrice", "Volume"}

// CSVStore keeps one all-history file per pair plus a truncated shareable
// file starting at ShareSince. Both files are rewritten wholesale on every
// save; there is no append-only mode.
type CSVStore struct {
	dir        string
	shareSince time.Time
}

func NewCSVStore(dir string, shareSince time.Time) *CSVStore {
	return &CSVStore{dir: dir, shareSince: shareSince}
}

func (s *CSVStore) path(pair string) string {
	return filepath.Join(s.dir, pair+"-binance.csv")
}

func (s *CSVStore) sharePath(pair string) string {
	return filepath.Join(s.dir, pair+"-since-"+s.shareSince.UTC().Format("2006-01-02")+".csv")
}

func (s *CSVStore) Load(pair string) (*series.Series, error) {
	f, err := os.Open(s.path(pair))
	if err != nil {
		if os.IsNotExist(err) {
			// cold start
			return series.New(), nil
		}
		return nil, errors.Wrap(err, "open candle file")
	}
	defer func() {
		_ = f.Close()
	}()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read candle file")
	}

	candles := make([]series.Candle, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 6 {
			continue
		}
		c, err := parseRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "candle file row %d", i)
		}
		candles = append(candles, c)
	}
	return series.FromCandles(candles), nil
}

func (s *CSVStore) Save(pair string, sr *series.Series) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, "create data dir")
	}
	if err := s.writeFile(s.path(pair), sr, time.Time{}); err != nil {
		return err
	}
	return s.writeFile(s.sharePath(pair), sr, s.shareSince)
}

func (s *CSVStore) writeFile(path string, sr *series.Series, since time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create candle file")
	}
	defer func() {
		_ = f.Close()
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "write candle header")
	}
	for _, c := range sr.Candles() {
		if !since.IsZero() && c.OpenTime.Before(since) {
			continue
		}
		row := []string{
			c.OpenTime.UTC().Format(timeLayout),
			formatPrice(c.Open),
			formatPrice(c.High),
			formatPrice(c.Low),
			formatPrice(c.Close),
			formatPrice(c.Volume),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "write candle row")
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "flush candle file")
}

func parseRow(row []string) (series.Candle, error) {
	t, err := time.ParseInLocation(timeLayout, row[0], time.UTC)
	if err != nil {
		return series.Candle{}, err
	}
	vals := make([]float64, 5)
	for i := 0; i < 5; i++ {
		vals[i], err = strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return series.Candle{}, err
		}
	}
	return series.Candle{
		OpenTime: t,
		Open:     vals[0],
		High:     vals[1],
		Low:      vals[2],
		Close:    vals[3],
		Volume:   vals[4],
	}, nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
