// Package tracker implements the rank-scraping orchestration engine.
// It drives batches of tracked keywords through a pluggable scraping
// backend, merges each outcome into the keyword's position history, and
// maintains a deduplicated retry queue for transient failures.
package tracker

import (
	"context"

	"serptrack/internal/config"
)

// Scraper is a pluggable backend able to determine a keyword's current
// search-result position. Implementations are registered at process start.
type Scraper interface {
	// ID is the identifier used in settings to select this backend.
	ID() string

	// Name is the human-readable backend name.
	Name() string

	// SupportsCity reports whether the backend honours city-level targeting.
	SupportsCity() bool

	// Scrape determines the keyword's current position. A returned error is
	// converted by the dispatcher into a failure outcome; it never aborts
	// the batch.
	Scrape(ctx context.Context, keyword Keyword, settings config.Settings) (ScrapeOutcome, error)
}

// KeywordStore handles keyword persistence. The core always reads a fresh
// prior state before merging; there is no in-process caching layer.
type KeywordStore interface {
	GetKeywords(ctx context.Context, ids []int64) ([]Keyword, error)
	ListKeywords(ctx context.Context, domain string) ([]Keyword, error)
	UpdateKeyword(ctx context.Context, keyword Keyword) error
	SetUpdating(ctx context.Context, ids []int64, updating bool) error
}

// RetryQueue is a persisted, deduplicated set of keyword identifiers
// awaiting replay. Enqueue and Dequeue are idempotent: enqueueing a present
// id and dequeuing an absent id are both no-ops, never errors.
type RetryQueue interface {
	Enqueue(ctx context.Context, keywordID int64) error
	Dequeue(ctx context.Context, keywordID int64) error
	Members(ctx context.Context) ([]int64, error)
}
