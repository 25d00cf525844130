package scrapers

import (
	"log/slog"
	"time"

	"serptrack/internal/tracker"
)

// clientTimeout is a hard upper bound on backend calls. The effective
// per-call deadline is the dispatcher's scrape timeout.
const clientTimeout = 120 * time.Second

// DefaultRegistry builds the registry with every compiled-in backend
// registered, sharing one HTTP client. Called once at process start.
func DefaultRegistry(userAgent string) *tracker.Registry {
	client := NewHTTPClient(userAgent, clientTimeout)

	registry := tracker.NewRegistry()
	for _, s := range []tracker.Scraper{
		NewSerpAPI(client),
		NewSpaceSerp(client),
		NewProxyPage(client),
	} {
		if err := registry.Register(s); err != nil {
			// Duplicate registration is a programming error caught in tests.
			slog.Error("Failed to register scraper", "scraper", s.ID(), "error", err)
		}
	}
	return registry
}
