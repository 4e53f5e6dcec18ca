package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	chatTelegramENV   = "TELEGRAM_CHAT_ID"
	apiKeyENV         = "BINANCE_API_KEY"
	apiSecretENV      = "BINANCE_API_SECRET"
	databaseDSN       = "DATABASE_DSN"
)

// Pair is one traded symbol with its asset split.
type Pair struct {
	Symbol string `yaml:"symbol" validate:"required"`
	Base   string `yaml:"base" validate:"required"`
	Quote  string `yaml:"quote" validate:"required"`
}

// Config is loaded once at startup. Strategy definitions live in their own
// hot-reloaded file (StrategiesFile); everything here is fixed for the
// process lifetime. Invalid config is fatal before the event loop starts.
type Config struct {
	Mode       string `yaml:"mode" validate:"oneof=interactive headless"`
	Interval   string `yaml:"interval" validate:"required"`
	Live       bool   `yaml:"live"`
	OCORolling bool   `yaml:"oco_rolling"`

	Pairs []Pair `yaml:"pairs" validate:"min=1,dive"`

	DataDir        string `yaml:"data_dir" validate:"required"`
	ShareSince     string `yaml:"share_since"` // YYYY-MM-DD, per-pair shareable file cutoff
	StrategiesFile string `yaml:"strategies_file" validate:"required"`
	DB             string `yaml:"db_dsn"`

	Binance struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
	} `yaml:"binance"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Service struct {
		AdminPort int `yaml:"admin_port"`
	} `yaml:"service"`

	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`
}

func (c *Config) ShareSinceTime() time.Time {
	if c.ShareSince == "" {
		return time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	t, err := time.ParseInLocation("2006-01-02", c.ShareSince, time.UTC)
	if err != nil {
		return time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config file")
	}
	defer func() {
		_ = file.Close()
	}()

	config := Config{
		Mode:     "headless",
		Interval: "1m",
	}
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, errors.Wrap(err, "failed to decode config file")
	}

	if v := os.Getenv(tokenTelegramENV); v != "" {
		config.Telegram.Token = v
	}
	if v := os.Getenv(chatTelegramENV); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Telegram.ChatID = id
		}
	}
	if v := os.Getenv(apiKeyENV); v != "" {
		config.Binance.APIKey = v
	}
	if v := os.Getenv(apiSecretENV); v != "" {
		config.Binance.APISecret = v
	}
	if v := os.Getenv(databaseDSN); v != "" {
		config.DB = v
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &config, nil
}
