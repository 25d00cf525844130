// Package config provides configuration management for the rank tracker.
// Settings are loaded once and passed by value into every core call; the
// engine never reads configuration from ambient global state.
package config

import "time"

// Scheduler interval names accepted for scrape_interval.
var knownIntervals = map[string]bool{
	"never":     true,
	"hourly":    true,
	"daily":     true,
	"other_day": true,
	"weekly":    true,
	"monthly":   true,
}

// Settings holds process-wide configuration.
type Settings struct {
	// Scraping
	ScraperType        string `mapstructure:"scraper_type" yaml:"scraper_type"`                 // Backend identifier; "none" disables scraping
	ScrapeDelaySeconds int    `mapstructure:"scrape_delay_seconds" yaml:"scrape_delay_seconds"` // Inter-request spacing; 0 = no delay
	ScrapeRetry        bool   `mapstructure:"scrape_retry" yaml:"scrape_retry"`                 // Queue failed keywords for hourly replay

	ScrapeTimeout time.Duration `mapstructure:"scrape_timeout" yaml:"scrape_timeout"` // Per-call backend timeout
	UserAgent     string        `mapstructure:"user_agent" yaml:"user_agent"`

	// Backend credentials, resolved/decrypted before they reach this
	// process. Never persisted or logged by the engine.
	ScraperAPIKey string `mapstructure:"scraper_api_key" yaml:"-"`
	ScraperAPIURL string `mapstructure:"scraper_api_url" yaml:"scraper_api_url"` // Base URL for proxy-style backends

	// Scheduling
	ScrapeInterval string `mapstructure:"scrape_interval" yaml:"scrape_interval"`

	// Persistence
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	// Observability
	MetricsAddr string `mapstructure:"metrics_addr" yaml:"metrics_addr"` // Empty disables the /metrics listener
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() Settings {
	return Settings{
		ScraperType:        "none",
		ScrapeDelaySeconds: 0,
		ScrapeRetry:        false,
		ScrapeTimeout:      60 * time.Second,
		UserAgent:          "SerpTrack/1.0",
		ScrapeInterval:     "daily",
		DatabasePath:       "./serptrack.db",
		MetricsAddr:        "",
		LogLevel:           "info",
	}
}

// ScrapeDelay returns the inter-request delay as a duration. Zero means
// the delay policy is disabled.
func (s Settings) ScrapeDelay() time.Duration {
	if s.ScrapeDelaySeconds <= 0 {
		return 0
	}
	return time.Duration(s.ScrapeDelaySeconds) * time.Second
}

// Validate checks if the settings are valid.
func (s Settings) Validate() error {
	if s.DatabasePath == "" {
		return ErrEmptyDatabasePath
	}

	if s.ScrapeTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if s.ScrapeDelaySeconds < 0 {
		return ErrInvalidDelay
	}

	if s.ScrapeInterval != "" && !knownIntervals[s.ScrapeInterval] {
		return ErrUnknownInterval
	}

	return nil
}
