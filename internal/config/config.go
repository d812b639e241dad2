// Package config handles configuration loading for reeltally.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration. It is built once
// at process start and passed into the sync engine; no other package reads
// process environment directly.
type Config struct {
	Year        int               `mapstructure:"year"        yaml:"year"`
	Source      SourceConfig      `mapstructure:"source"      yaml:"source"`
	Ledger      LedgerConfig      `mapstructure:"ledger"      yaml:"ledger"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard" yaml:"leaderboard"`
	Fetch       FetchConfig       `mapstructure:"fetch"       yaml:"fetch"`
	Logging     LoggingConfig     `mapstructure:"logging"     yaml:"logging"`
}

// SourceConfig selects and parameterizes the raw data source.
type SourceConfig struct {
	Mode       string `mapstructure:"mode"        yaml:"mode"` // "bulk" or "scrape"
	DatasetURL string `mapstructure:"dataset_url" yaml:"dataset_url"`
	ScrapeURL  string `mapstructure:"scrape_url"  yaml:"scrape_url"`
}

// LedgerConfig holds the ledger store location and the raw tab parameters.
type LedgerConfig struct {
	Path        string `mapstructure:"path"         yaml:"path"` // sqlite database file
	RawTab      string `mapstructure:"raw_tab"      yaml:"raw_tab"`
	AppendBatch int    `mapstructure:"append_batch" yaml:"append_batch"`
}

// LeaderboardConfig holds the publication tab parameters.
type LeaderboardConfig struct {
	Tab   string `mapstructure:"tab"   yaml:"tab"`
	Limit int    `mapstructure:"limit" yaml:"limit"` // ranked rows kept for publication
}

// FetchConfig holds retry, backoff, and politeness settings for the
// live-scrape source.
type FetchConfig struct {
	MaxAttempts   int `mapstructure:"max_attempts"    yaml:"max_attempts"`
	BackoffSec    int `mapstructure:"backoff_sec"     yaml:"backoff_sec"`      // base delay between retries
	BackoffMaxSec int `mapstructure:"backoff_max_sec" yaml:"backoff_max_sec"`  // cap on the retry delay
	DelayMS       int `mapstructure:"delay_ms"        yaml:"delay_ms"`         // politeness pause after each successful fetch
	RatePerSec    int `mapstructure:"rate_per_sec"    yaml:"rate_per_sec"`     // hard request-rate bound, retries included
	TimeoutSec    int `mapstructure:"timeout_sec"     yaml:"timeout_sec"`
}

// Backoff returns the retry backoff policy as durations.
func (f FetchConfig) Backoff() (base, max time.Duration) {
	return time.Duration(f.BackoffSec) * time.Second, time.Duration(f.BackoffMaxSec) * time.Second
}

// Delay returns the politeness delay as a duration.
func (f FetchConfig) Delay() time.Duration {
	return time.Duration(f.DelayMS) * time.Millisecond
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // "debug", "info", "warn", "error"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.reeltally/config.yaml (home directory)
//  3. /etc/reeltally/config.yaml (system)
//
// Environment variables override config file values.
// Format: REELTALLY_<SECTION>_<KEY>, e.g., REELTALLY_LEDGER_PATH
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".reeltally"))
	v.AddConfigPath("/etc/reeltally")

	v.SetEnvPrefix("REELTALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("REELTALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the engine cannot run with. All failures
// here are fatal before any I/O side effect.
func (c *Config) Validate() error {
	if c.Year < 1900 || c.Year > 2200 {
		return fmt.Errorf("config: year %d out of range", c.Year)
	}
	switch c.Source.Mode {
	case "bulk":
		if c.Source.DatasetURL == "" {
			return fmt.Errorf("config: source.dataset_url is required in bulk mode")
		}
	case "scrape":
		if c.Source.ScrapeURL == "" {
			return fmt.Errorf("config: source.scrape_url is required in scrape mode")
		}
	default:
		return fmt.Errorf("config: source.mode must be %q or %q, got %q", "bulk", "scrape", c.Source.Mode)
	}
	if c.Ledger.Path == "" {
		return fmt.Errorf("config: ledger.path is required")
	}
	if c.Ledger.RawTab == "" || c.Leaderboard.Tab == "" {
		return fmt.Errorf("config: ledger.raw_tab and leaderboard.tab are required")
	}
	if c.Ledger.RawTab == c.Leaderboard.Tab {
		return fmt.Errorf("config: raw and leaderboard tabs must differ, both are %q", c.Ledger.RawTab)
	}
	if c.Ledger.AppendBatch < 1 {
		return fmt.Errorf("config: ledger.append_batch must be positive, got %d", c.Ledger.AppendBatch)
	}
	if c.Leaderboard.Limit < 1 {
		return fmt.Errorf("config: leaderboard.limit must be positive, got %d", c.Leaderboard.Limit)
	}
	if c.Fetch.MaxAttempts < 1 {
		return fmt.Errorf("config: fetch.max_attempts must be positive, got %d", c.Fetch.MaxAttempts)
	}
	if c.Fetch.BackoffSec < 0 || c.Fetch.BackoffMaxSec < c.Fetch.BackoffSec {
		return fmt.Errorf("config: fetch backoff cap (%ds) below base (%ds)", c.Fetch.BackoffMaxSec, c.Fetch.BackoffSec)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("year", time.Now().Year())

	v.SetDefault("source.mode", "bulk")
	v.SetDefault("source.dataset_url",
		"https://github.com/tjwaterman99/boxofficemojo-scraper/releases/latest/download/revenues_per_day.csv.gz")
	v.SetDefault("source.scrape_url", "https://www.boxofficemojo.com/date")

	// Ledger defaults
	v.SetDefault("ledger.path", "reeltally.db")
	v.SetDefault("ledger.raw_tab", "raw")
	v.SetDefault("ledger.append_batch", 500)

	// Leaderboard defaults
	v.SetDefault("leaderboard.tab", "leaderboard")
	v.SetDefault("leaderboard.limit", 50)

	// Fetch defaults (scrape mode)
	v.SetDefault("fetch.max_attempts", 4)
	v.SetDefault("fetch.backoff_sec", 2)
	v.SetDefault("fetch.backoff_max_sec", 30)
	v.SetDefault("fetch.delay_ms", 1000)
	v.SetDefault("fetch.rate_per_sec", 2)
	v.SetDefault("fetch.timeout_sec", 30)

	// Logging defaults
	v.SetDefault("logging.level", "info")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
