// Package config provides configuration management for the simulator.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"paper-trader/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Store     StoreConfig     `mapstructure:"store"`
	Log       LogConfig       `mapstructure:"log"`
}

// SimulatorConfig holds portfolio ledger configuration.
type SimulatorConfig struct {
	InitialBalance  float64       `mapstructure:"initial_balance"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	SellPricePolicy string        `mapstructure:"sell_price_policy"` // "mark", "quote"
	TradeRetention  int           `mapstructure:"trade_retention"`   // persisted trade-log cap, 0 = unbounded
	Session         string        `mapstructure:"session"`
}

// FeedConfig holds live price feed configuration.
// When APIKey is empty the simulator runs on the static catalog instead.
type FeedConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	QuoteTTL   time.Duration `mapstructure:"quote_ttl"`
	BatchSize  int           `mapstructure:"batch_size"`
	BatchDelay time.Duration `mapstructure:"batch_delay"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/paper-trader"
	}
	return filepath.Join(home, ".config", "paper-trader")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
		// Missing config file is fine, defaults apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("simulator.initial_balance", 10000.0)
	v.SetDefault("simulator.sweep_interval", 3*time.Second)
	v.SetDefault("simulator.sell_price_policy", "mark")
	v.SetDefault("simulator.trade_retention", 1000)
	v.SetDefault("simulator.session", "default")

	v.SetDefault("feed.base_url", "")
	v.SetDefault("feed.api_key", "")
	v.SetDefault("feed.quote_ttl", 5*time.Second)
	v.SetDefault("feed.batch_size", 30)
	v.SetDefault("feed.batch_delay", 200*time.Millisecond)
	v.SetDefault("feed.timeout", 10*time.Second)

	v.SetDefault("store.path", filepath.Join(configDir, "portfolio.db"))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("log.file", true)
	v.SetDefault("log.file_path", filepath.Join(configDir, "logs", "trader.log"))
	v.SetDefault("log.max_size", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FEED_BASE_URL"); v != "" {
		cfg.Feed.BaseURL = v
	}
	if v := os.Getenv("FEED_API_KEY"); v != "" {
		cfg.Feed.APIKey = v
	}
	if v := os.Getenv("PAPER_TRADER_SESSION"); v != "" {
		cfg.Simulator.Session = v
	}
	if v := os.Getenv("PAPER_TRADER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Simulator.InitialBalance <= 0 {
		return errors.NewValidationError("simulator.initial_balance", c.Simulator.InitialBalance, "must be positive")
	}
	if c.Simulator.SweepInterval <= 0 {
		return errors.NewValidationError("simulator.sweep_interval", c.Simulator.SweepInterval, "must be positive")
	}
	if p := c.Simulator.SellPricePolicy; p != "mark" && p != "quote" {
		return errors.NewValidationError("simulator.sell_price_policy", p, "must be 'mark' or 'quote'")
	}
	if c.Simulator.TradeRetention < 0 {
		return errors.NewValidationError("simulator.trade_retention", c.Simulator.TradeRetention, "must be non-negative")
	}
	if c.Feed.BatchSize <= 0 {
		return errors.NewValidationError("feed.batch_size", c.Feed.BatchSize, "must be positive")
	}
	return nil
}

// HasLiveFeed returns true if a live price feed is configured.
func (c *Config) HasLiveFeed() bool {
	return c.Feed.BaseURL != ""
}
