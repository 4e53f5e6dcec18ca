// Package cli implements the interactive console: a tiny stdin loop for
// inspecting the bot and shutting it down cleanly.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/fx"

	"candle_bot/internal/config"
	"candle_bot/internal/processor"
	"candle_bot/pkg/logger"
)

// exitGrace lets in-flight order placement settle before fx teardown.
const exitGrace = 2 * time.Second

type Console struct {
	cfg  *config.Config
	proc *processor.Processor
	sd   fx.Shutdowner
}

func New(cfg *config.Config, proc *processor.Processor, sd fx.Shutdowner) *Console {
	return &Console{cfg: cfg, proc: proc, sd: sd}
}

// Run reads commands from stdin until "e" or EOF. It is meant to be run
// on its own goroutine.
func (c *Console) Run() {
	c.help()
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		switch strings.TrimSpace(sc.Text()) {
		case "":
		case "h":
			c.help()
		case "p":
			c.printLast()
		case "e":
			fmt.Println("shutting down...")
			time.Sleep(exitGrace)
			if err := c.sd.Shutdown(); err != nil {
				logger.Error("shutdown: %v", err)
			}
			return
		default:
			fmt.Println("unknown command, h for help")
		}
	}
	if err := sc.Err(); err != nil {
		logger.Error("console input: %v", err)
	}
}

func (c *Console) help() {
	fmt.Println("commands:")
	fmt.Println("  h  this help")
	fmt.Println("  p  last candle per pair")
	fmt.Println("  e  exit")
}

func (c *Console) printLast() {
	for _, pair := range c.cfg.Pairs {
		candle, ok := c.proc.LastCandle(pair.Symbol)
		if !ok {
			fmt.Printf("%s: no data yet\n", pair.Symbol)
			continue
		}
		fmt.Printf("%s: %s O=%.8f H=%.8f L=%.8f C=%.8f V=%.8f\n",
			pair.Symbol, candle.OpenTime.UTC().Format("2006-01-02 15:04:05"),
			candle.Open, candle.High, candle.Low, candle.Close, candle.Volume)
	}
}
