package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"serptrack/internal/config"
)

// ScraperNone is the reserved backend identifier meaning "no scraper
// configured". Resolving it never fails and never calls out anywhere.
const ScraperNone = "none"

// ErrNoScraperConfigured is the fixed message carried by outcomes produced
// when no usable backend is configured.
const ErrNoScraperConfigured = "No scraper configured"

// ErrUnknownScraper is returned when resolving a backend identifier that
// has not been registered.
var ErrUnknownScraper = errors.New("unknown scraper backend")

// Registry maps backend identifiers to compiled-in Scraper
// implementations. Backends are registered once at process start;
// resolution at dispatch time is a plain map lookup, once per batch.
type Registry struct {
	mu       sync.RWMutex
	scrapers map[string]Scraper
}

// NewRegistry creates an empty registry. The reserved "none" backend is
// always resolvable without registration.
func NewRegistry() *Registry {
	return &Registry{scrapers: make(map[string]Scraper)}
}

// Register adds a backend under its own identifier. Registering the
// reserved "none" identifier is rejected.
func (r *Registry) Register(s Scraper) error {
	if s.ID() == ScraperNone {
		return fmt.Errorf("scraper id %q is reserved", ScraperNone)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scrapers[s.ID()]; exists {
		return fmt.Errorf("scraper %q already registered", s.ID())
	}
	r.scrapers[s.ID()] = s
	return nil
}

// Resolve returns the backend for the given identifier. The identifier
// "none" (or an empty identifier) resolves to the built-in no-op backend.
// An unknown identifier fails with ErrUnknownScraper; callers resolve once
// per batch and must not crash the batch on failure.
func (r *Registry) Resolve(id string) (Scraper, error) {
	if id == "" || id == ScraperNone {
		return NoneScraper{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.scrapers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScraper, id)
	}
	return s, nil
}

// IDs returns the identifiers of all registered backends.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.scrapers))
	for id := range r.scrapers {
		ids = append(ids, id)
	}
	return ids
}

// NoneScraper is the reserved capability for the "none" identifier. It
// always reports position 0 with a fixed error message and performs no
// network calls.
type NoneScraper struct{}

// ID implements Scraper.
func (NoneScraper) ID() string { return ScraperNone }

// Name implements Scraper.
func (NoneScraper) Name() string { return "None" }

// SupportsCity implements Scraper.
func (NoneScraper) SupportsCity() bool { return false }

// Scrape implements Scraper. It never fails; the outcome itself carries
// the "not configured" error.
func (NoneScraper) Scrape(ctx context.Context, keyword Keyword, settings config.Settings) (ScrapeOutcome, error) {
	return ScrapeOutcome{
		Position: 0,
		URL:      "",
		Result:   []SERPItem{},
		Error:    ErrNoScraperConfigured,
	}, nil
}
