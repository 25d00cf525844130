package tracker

import (
	"context"
	"log/slog"
	"time"

	"serptrack/internal/config"
	"serptrack/internal/metrics"
)

// Orchestrator composes the dispatcher, merger, keyword store and retry
// queue into the refresh pipeline. Its public contract is "always
// completes": no error from processing a single keyword escapes to abort
// siblings or reject the batch; partial success is reported implicitly
// through each keyword's own error descriptor.
type Orchestrator struct {
	store      KeywordStore
	queue      RetryQueue
	dispatcher *Dispatcher
}

// NewOrchestrator creates an orchestrator over the given store, queue and
// backend registry.
func NewOrchestrator(store KeywordStore, queue RetryQueue, registry *Registry) *Orchestrator {
	return &Orchestrator{
		store:      store,
		queue:      queue,
		dispatcher: NewDispatcher(registry),
	}
}

// Refresh scrapes every keyword, merges each outcome into the keyword's
// record, persists it and applies the retry-queue policy. The merged
// in-memory states are returned even when an individual write failed, so
// the caller's view may be more current than durable storage; that
// trade-off is deliberate and logged rather than masked.
func (o *Orchestrator) Refresh(ctx context.Context, keywords []Keyword, settings config.Settings) ([]Keyword, RefreshStats) {
	stats := RefreshStats{Keywords: len(keywords), StartTime: time.Now()}
	if len(keywords) == 0 {
		return nil, stats
	}

	slog.Info("Starting refresh", "keywords", len(keywords), "backend", settings.ScraperType)
	metrics.RecordBatch()

	ids := make([]int64, len(keywords))
	for i, keyword := range keywords {
		ids[i] = keyword.ID
	}
	if err := o.store.SetUpdating(ctx, ids, true); err != nil {
		slog.Error("Failed to flag keywords as updating", "error", err)
	}

	outcomes := o.dispatcher.Dispatch(ctx, keywords, settings)

	updated := make([]Keyword, 0, len(keywords))
	for _, keyword := range keywords {
		outcome, ok := outcomes[keyword.ID]
		if !ok {
			// The dispatcher guarantees one outcome per input keyword;
			// treat a missing entry as an internal failure.
			outcome = failureOutcome(keyword, "no outcome produced for keyword")
		}

		merged := Merge(keyword, outcome, settings, time.Now())
		metrics.RecordScrape(settings.ScraperType, outcome.Failed())
		if outcome.Failed() {
			stats.Failed++
		}

		if err := o.store.UpdateKeyword(ctx, merged); err != nil {
			// Persistence failures do not roll back the in-memory result
			// and do not block the remaining keywords.
			slog.Error("Failed to persist keyword", "keyword_id", keyword.ID, "keyword", keyword.Keyword, "error", err)
		}

		o.applyRetryPolicy(ctx, keyword.ID, outcome, settings)
		updated = append(updated, merged)
	}

	stats.Duration = time.Since(stats.StartTime)
	slog.Info("Refresh completed", "keywords", stats.Keywords, "failed", stats.Failed, "duration", stats.Duration)
	return updated, stats
}

// RefreshByID loads fresh keyword state for the given identifiers and
// refreshes exactly those keywords. Identifiers unknown to the store are
// skipped. This is the entry point used by the hourly retry replay.
func (o *Orchestrator) RefreshByID(ctx context.Context, ids []int64, settings config.Settings) ([]Keyword, RefreshStats) {
	if len(ids) == 0 {
		return nil, RefreshStats{StartTime: time.Now()}
	}

	keywords, err := o.store.GetKeywords(ctx, ids)
	if err != nil {
		slog.Error("Failed to load keywords for refresh", "ids", len(ids), "error", err)
		return nil, RefreshStats{StartTime: time.Now()}
	}
	return o.Refresh(ctx, keywords, settings)
}

// ReplayRetryQueue reads the full queue membership and refreshes exactly
// those keywords. The regular enqueue/dequeue policy then runs on the new
// outcomes, which is how retries converge without a separate retry-count
// mechanism.
func (o *Orchestrator) ReplayRetryQueue(ctx context.Context, settings config.Settings) ([]Keyword, RefreshStats) {
	ids, err := o.queue.Members(ctx)
	if err != nil {
		slog.Error("Failed to read retry queue", "error", err)
		return nil, RefreshStats{StartTime: time.Now()}
	}
	if len(ids) == 0 {
		slog.Debug("Retry queue empty, nothing to replay")
		return nil, RefreshStats{StartTime: time.Now()}
	}

	slog.Info("Replaying retry queue", "keywords", len(ids))
	return o.RefreshByID(ctx, ids, settings)
}

// applyRetryPolicy enqueues a keyword on a retryable failure and dequeues
// it on success or whenever retry is disabled. Both operations are
// idempotent set mutations; queue errors are logged, never propagated.
func (o *Orchestrator) applyRetryPolicy(ctx context.Context, keywordID int64, outcome ScrapeOutcome, settings config.Settings) {
	if outcome.Failed() && settings.ScrapeRetry {
		if err := o.queue.Enqueue(ctx, keywordID); err != nil {
			slog.Error("Failed to enqueue keyword for retry", "keyword_id", keywordID, "error", err)
		}
		return
	}

	if err := o.queue.Dequeue(ctx, keywordID); err != nil {
		slog.Error("Failed to dequeue keyword from retry queue", "keyword_id", keywordID, "error", err)
	}
}
