package config

import (
	"golang-stock-sentiment/pkg/config"
)

// Feeds holds the configuration for the stock news feed source.
type Feeds struct {
	BaseURL string `mapstructure:"base_url"`
	Region  string `mapstructure:"region"`
	Lang    string `mapstructure:"lang"`
}

// MarketData holds the configuration for the daily market data API.
type MarketData struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Macro holds the configuration for the FRED macro data API.
type Macro struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	VixSeriesID string `mapstructure:"vix_series_id"`
}

// Sentiment holds configuration for sentiment scoring providers.
type Sentiment struct {
	Provider string `mapstructure:"provider"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Analysis holds the tunables of the alignment and composite score engines.
type Analysis struct {
	ClosingHour     int      `mapstructure:"closing_hour"`
	ClosingMinute   int      `mapstructure:"closing_minute"`
	SentimentWeight float64  `mapstructure:"sentiment_weight"`
	VixWeight       float64  `mapstructure:"vix_weight"`
	DefaultStocks   []string `mapstructure:"default_stocks"`
	HistoricalDays  int      `mapstructure:"historical_days"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Scheduler holds configuration for scheduled pipeline runs.
type Scheduler struct {
	CronExpression string `mapstructure:"cron_expression"`
}

// Config holds the full configuration for the API service.
type Config struct {
	App        config.App      `mapstructure:"app"`
	Logger     config.Logger   `mapstructure:"logger"`
	Database   config.Database `mapstructure:"database"`
	Redis      config.Redis    `mapstructure:"redis"`
	API        config.API      `mapstructure:"api"`
	Feeds      Feeds           `mapstructure:"feeds"`
	MarketData MarketData      `mapstructure:"market_data"`
	Macro      Macro           `mapstructure:"macro"`
	Sentiment  Sentiment       `mapstructure:"sentiment"`
	Gemini     Gemini          `mapstructure:"gemini"`
	Analysis   Analysis        `mapstructure:"analysis"`
	Telegram   Telegram        `mapstructure:"telegram"`
	Scheduler  Scheduler       `mapstructure:"scheduler"`
}

// Load loads the API service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Analysis.ClosingHour == 0 && cfg.Analysis.ClosingMinute == 0 {
		cfg.Analysis.ClosingHour = 20
	}
	if cfg.Analysis.SentimentWeight == 0 && cfg.Analysis.VixWeight == 0 {
		cfg.Analysis.SentimentWeight = 0.8
		cfg.Analysis.VixWeight = 0.2
	}
	if cfg.Analysis.HistoricalDays == 0 {
		cfg.Analysis.HistoricalDays = 7
	}
	if cfg.Macro.VixSeriesID == "" {
		cfg.Macro.VixSeriesID = "VIXCLS"
	}
	if cfg.MarketData.MaxRequestPerMinute == 0 {
		cfg.MarketData.MaxRequestPerMinute = 60
	}
	if cfg.Gemini.MaxRequestPerMinute == 0 {
		cfg.Gemini.MaxRequestPerMinute = 15
	}
}
