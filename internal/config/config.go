package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"ReversalScanner/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Data struct {
		Dir       string `yaml:"dir" validate:"required"`
		NamesFile string `yaml:"names_file" validate:"required"`
	} `yaml:"data"`
	Output struct {
		Dir      string `yaml:"dir" validate:"required"`
		Format   string `yaml:"format" validate:"oneof=csv json parquet"`
		Timezone string `yaml:"timezone"`
	} `yaml:"output"`
	Scan struct {
		Workers      int    `yaml:"workers" validate:"gte=0"`
		RiskMarker   string `yaml:"risk_marker"`
		ShrinkPolicy string `yaml:"shrink_policy" validate:"omitempty,oneof=first last"`

		CandlestickExcludePrefixes []string `yaml:"candlestick_exclude_prefixes"`
		ShadowExcludePrefixes      []string `yaml:"shadow_exclude_prefixes"`
		OversoldExcludePrefixes    []string `yaml:"oversold_exclude_prefixes"`
	} `yaml:"scan"`
	Oversold strategy.OversoldConfig `yaml:"oversold"`
	Tracker  struct {
		strategy.TrackerConfig `yaml:",inline"`
		SourcePrefix           string `yaml:"source_prefix" validate:"required"`
	} `yaml:"tracker"`
	Schedule struct {
		CandlestickCron string `yaml:"candlestick_cron"`
		ShadowCron      string `yaml:"shadow_cron"`
		OversoldCron    string `yaml:"oversold_cron"`
		TrackCron       string `yaml:"track_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy    string `yaml:"proxy"`
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

// Default returns the configuration used when neither file nor environment set a value.
func Default() *Config {
	cfg := &Config{}
	cfg.Data.Dir = "stock_data"
	cfg.Data.NamesFile = "stock_names.csv"
	cfg.Output.Dir = "results"
	cfg.Output.Format = "csv"
	cfg.Output.Timezone = "Asia/Shanghai"
	cfg.Scan.RiskMarker = "ST"
	cfg.Scan.ShrinkPolicy = string(strategy.ShrinkLast)
	cfg.Scan.CandlestickExcludePrefixes = []string{"30", "68"}
	cfg.Scan.ShadowExcludePrefixes = []string{"30"}
	cfg.Oversold = strategy.DefaultOversoldConfig()
	cfg.Tracker.TrackerConfig = strategy.DefaultTrackerConfig()
	cfg.Tracker.SourcePrefix = "pick"
	cfg.Schedule.CandlestickCron = "0 30 15 * * 1-5"
	cfg.Schedule.ShadowCron = "0 35 15 * * 1-5"
	cfg.Schedule.OversoldCron = "0 40 15 * * 1-5"
	cfg.Schedule.TrackCron = "0 45 14 * * 1-5"
	cfg.LogLevel = "info"
	return cfg
}

// Load reads config from a YAML file over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("NAMES_FILE"); v != "" {
		cfg.Data.NamesFile = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("SAVE_FORMAT"); v != "" {
		cfg.Output.Format = strings.ToLower(v)
	}
	if v := os.Getenv("SCAN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scan.Workers = n
		}
	}
	if v := os.Getenv("SHRINK_POLICY"); v != "" {
		cfg.Scan.ShrinkPolicy = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := strategy.ParseShrinkPolicy(c.Scan.ShrinkPolicy); err != nil {
		return err
	}
	return nil
}

// Policy returns the configured shrink-candle policy.
func (c *Config) Policy() strategy.ShrinkPolicy {
	p, err := strategy.ParseShrinkPolicy(c.Scan.ShrinkPolicy)
	if err != nil {
		return strategy.ShrinkLast
	}
	return p
}
