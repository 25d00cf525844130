package tracker

import (
	"context"
	"log/slog"
	"time"

	"serptrack/internal/config"
)

// Dispatcher drives a batch of keywords through the configured backend.
// Processing is strictly sequential: scraping backends front rate-limited
// and ban-sensitive endpoints, so concurrent requests would amplify ban
// risk and break per-keyword delay accounting.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a dispatcher resolving backends from the given
// registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch scrapes every keyword in input order and returns exactly one
// outcome per keyword, keyed by keyword ID. It never returns an error:
// backend failures, timeouts and configuration problems are converted
// into failure outcomes so one keyword can never abort its siblings.
func (d *Dispatcher) Dispatch(ctx context.Context, keywords []Keyword, settings config.Settings) map[int64]ScrapeOutcome {
	outcomes := make(map[int64]ScrapeOutcome, len(keywords))
	if len(keywords) == 0 {
		return outcomes
	}

	start := time.Now()
	slog.Info("Starting scrape batch", "keywords", len(keywords), "backend", settings.ScraperType)

	// The backend is resolved once per batch. An unknown identifier is a
	// configuration problem, not a batch failure: every keyword gets the
	// "not configured" outcome for this run.
	scraper, err := d.registry.Resolve(settings.ScraperType)
	if err != nil {
		slog.Error("Scraper resolution failed, treating batch as unconfigured", "backend", settings.ScraperType, "error", err)
		scraper = NoneScraper{}
	}

	delay := NewDelayPolicy(settings.ScrapeDelay())

	for _, keyword := range keywords {
		// Suspension point between consecutive calls. The first wait is
		// immediate and there is no trailing delay after the last keyword.
		if err := delay.Wait(ctx); err != nil {
			outcomes[keyword.ID] = failureOutcome(keyword, err.Error())
			continue
		}

		outcome := d.scrapeOne(ctx, scraper, keyword, settings)
		outcomes[keyword.ID] = outcome

		if outcome.Failed() {
			slog.Warn("Keyword scrape failed", "keyword_id", keyword.ID, "keyword", keyword.Keyword, "backend", scraper.ID(), "error", outcome.Error)
		} else {
			slog.Debug("Keyword scraped", "keyword_id", keyword.ID, "keyword", keyword.Keyword, "position", outcome.Position)
		}
	}

	slog.Info("Scrape batch completed", "keywords", len(keywords), "duration", time.Since(start))
	return outcomes
}

// scrapeOne invokes the backend for a single keyword under the per-call
// timeout. Any raised error becomes a failure outcome carrying the
// keyword's last known position; a hung backend cannot stall the batch
// beyond the timeout.
func (d *Dispatcher) scrapeOne(ctx context.Context, scraper Scraper, keyword Keyword, settings config.Settings) ScrapeOutcome {
	callCtx := ctx
	if settings.ScrapeTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, settings.ScrapeTimeout)
		defer cancel()
	}

	outcome, err := scraper.Scrape(callCtx, keyword, settings)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "Unknown scraping error"
		}
		return failureOutcome(keyword, msg)
	}
	return outcome
}

// failureOutcome builds the outcome for a keyword whose scrape raised:
// the prior known position is preserved so a failure never erases rank.
func failureOutcome(keyword Keyword, message string) ScrapeOutcome {
	return ScrapeOutcome{
		Position: keyword.Position,
		URL:      "",
		Result:   []SERPItem{},
		Error:    message,
	}
}
