// Package strategydefs loads strategy definition rows. The file is re-read
// on every candle event so strategies can be edited live without a restart;
// the processor depends only on the Provider interface, not on file I/O.
package strategydefs

import (
	"fmt"

	"github.com/spf13/viper"
)

// Definition is one configured (pair, interval, signal) strategy row.
type Definition struct {
	Symbol        string  `mapstructure:"symbol"`
	Interval      string  `mapstructure:"interval"`
	Signal        string  `mapstructure:"signal"`
	Message       string  `mapstructure:"message"`
	CreateOrders  bool    `mapstructure:"create_orders"`
	IsPercentBuy  bool    `mapstructure:"is_percent_buy"`
	BuyAmount     float64 `mapstructure:"buy_amount"`
	IsPercentSell bool    `mapstructure:"is_percent_sell"`
	SellAmount    float64 `mapstructure:"sell_amount"`
	OCO           bool    `mapstructure:"oco"`
}

type Provider interface {
	// ForPair returns the definitions for one symbol, freshly loaded.
	ForPair(symbol string) ([]Definition, error)
}

// FileProvider reads the whole definitions file on each call.
type FileProvider struct {
	path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) ForPair(symbol string) ([]Definition, error) {
	all, err := p.load()
	if err != nil {
		return nil, err
	}
	out := make([]Definition, 0, len(all))
	for _, d := range all {
		if d.Symbol == symbol {
			out = append(out, d)
		}
	}
	return out, nil
}

func (p *FileProvider) load() ([]Definition, error) {
	v := viper.New()
	v.SetConfigFile(p.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read strategies file: %w", err)
	}

	var out struct {
		Strategies []Definition `mapstructure:"strategies"`
	}
	if err := v.Unmarshal(&out); err != nil {
		return nil, fmt.Errorf("decode strategies file: %w", err)
	}
	return out.Strategies, nil
}

// Static serves a fixed set of definitions; used by tests.
type Static []Definition

func (s Static) ForPair(symbol string) ([]Definition, error) {
	out := make([]Definition, 0, len(s))
	for _, d := range s {
		if d.Symbol == symbol {
			out = append(out, d)
		}
	}
	return out, nil
}
