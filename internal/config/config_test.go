package config

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings.ScraperType != "none" {
		t.Errorf("Expected scraper type 'none', got %q", settings.ScraperType)
	}
	if settings.ScrapeDelaySeconds != 0 {
		t.Errorf("Expected zero delay, got %d", settings.ScrapeDelaySeconds)
	}
	if settings.ScrapeRetry {
		t.Error("Expected retry disabled by default")
	}
	if settings.ScrapeTimeout != 60*time.Second {
		t.Errorf("Expected 60s timeout, got %v", settings.ScrapeTimeout)
	}
	if settings.ScrapeInterval != "daily" {
		t.Errorf("Expected daily interval, got %q", settings.ScrapeInterval)
	}
	if err := settings.Validate(); err != nil {
		t.Errorf("Default settings should validate: %v", err)
	}
}

func TestScrapeDelay(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    time.Duration
	}{
		{"disabled", 0, 0},
		{"negative treated as disabled", -5, 0},
		{"thirty seconds", 30, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings()
			settings.ScrapeDelaySeconds = tt.seconds
			if got := settings.ScrapeDelay(); got != tt.want {
				t.Errorf("ScrapeDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr error
	}{
		{"valid", func(s *Settings) {}, nil},
		{"empty database path", func(s *Settings) { s.DatabasePath = "" }, ErrEmptyDatabasePath},
		{"zero timeout", func(s *Settings) { s.ScrapeTimeout = 0 }, ErrInvalidTimeout},
		{"negative delay", func(s *Settings) { s.ScrapeDelaySeconds = -1 }, ErrInvalidDelay},
		{"unknown interval", func(s *Settings) { s.ScrapeInterval = "fortnightly" }, ErrUnknownInterval},
		{"empty interval allowed", func(s *Settings) { s.ScrapeInterval = "" }, nil},
		{"never interval allowed", func(s *Settings) { s.ScrapeInterval = "never" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings()
			tt.mutate(&settings)
			err := settings.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
