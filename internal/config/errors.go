package config

import "errors"

var (
	// ErrEmptyDatabasePath is returned when database path is empty
	ErrEmptyDatabasePath = errors.New("database_path cannot be empty")
	// ErrInvalidTimeout is returned when scrape timeout is not greater than 0
	ErrInvalidTimeout = errors.New("scrape_timeout must be greater than 0")
	// ErrInvalidDelay is returned when the scrape delay is negative
	ErrInvalidDelay = errors.New("scrape_delay_seconds cannot be negative")
	// ErrUnknownInterval is returned when scrape_interval is not a known interval name
	ErrUnknownInterval = errors.New("scrape_interval must be one of: never, hourly, daily, other_day, weekly, monthly")
)
