package tracker

import (
	"context"
	"errors"
	"testing"

	"serptrack/internal/config"
)

type stubScraper struct {
	id      string
	outcome ScrapeOutcome
	err     error
	calls   int
}

func (s *stubScraper) ID() string         { return s.id }
func (s *stubScraper) Name() string       { return s.id }
func (s *stubScraper) SupportsCity() bool { return false }

func (s *stubScraper) Scrape(ctx context.Context, keyword Keyword, settings config.Settings) (ScrapeOutcome, error) {
	s.calls++
	return s.outcome, s.err
}

func TestRegistryResolve(t *testing.T) {
	registry := NewRegistry()
	scraper := &stubScraper{id: "stub"}
	if err := registry.Register(scraper); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("known backend", func(t *testing.T) {
		resolved, err := registry.Resolve("stub")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if resolved.ID() != "stub" {
			t.Errorf("Resolved wrong scraper: %s", resolved.ID())
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := registry.Resolve("missing")
		if !errors.Is(err, ErrUnknownScraper) {
			t.Errorf("Expected ErrUnknownScraper, got %v", err)
		}
	})

	t.Run("none is always resolvable", func(t *testing.T) {
		resolved, err := registry.Resolve("none")
		if err != nil {
			t.Fatalf("Resolve('none') failed: %v", err)
		}
		if _, ok := resolved.(NoneScraper); !ok {
			t.Errorf("Expected NoneScraper, got %T", resolved)
		}
	})

	t.Run("empty identifier resolves to none", func(t *testing.T) {
		resolved, err := registry.Resolve("")
		if err != nil {
			t.Fatalf("Resolve('') failed: %v", err)
		}
		if _, ok := resolved.(NoneScraper); !ok {
			t.Errorf("Expected NoneScraper, got %T", resolved)
		}
	})
}

func TestRegistryRejectsDuplicatesAndReserved(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(&stubScraper{id: "stub"}); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}
	if err := registry.Register(&stubScraper{id: "stub"}); err == nil {
		t.Error("Expected error registering duplicate identifier")
	}
	if err := registry.Register(&stubScraper{id: "none"}); err == nil {
		t.Error("Expected error registering reserved identifier")
	}
}

func TestNoneScraperOutcome(t *testing.T) {
	outcome, err := NoneScraper{}.Scrape(context.Background(), Keyword{ID: 1, Position: 12}, config.DefaultSettings())
	if err != nil {
		t.Fatalf("NoneScraper must not fail: %v", err)
	}

	if outcome.Position != 0 {
		t.Errorf("Expected position 0, got %d", outcome.Position)
	}
	if outcome.URL != "" {
		t.Errorf("Expected empty URL, got %q", outcome.URL)
	}
	if len(outcome.Result) != 0 {
		t.Errorf("Expected empty result list, got %d items", len(outcome.Result))
	}
	if outcome.Error != ErrNoScraperConfigured {
		t.Errorf("Expected fixed 'No scraper configured' error, got %q", outcome.Error)
	}
}
