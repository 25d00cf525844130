package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"serptrack/internal/config"
	"serptrack/internal/tracker"
)

// Scheduler runs the recurring jobs of the tracker: the full keyword
// refresh at the configured scrape interval and the hourly retry replay.
// Each job invokes the orchestrator; overlapping invocations are not
// serialized here, the storage layer's set operations keep queue updates
// lost-update-free.
type Scheduler struct {
	orchestrator *tracker.Orchestrator
	store        tracker.KeywordStore
	settings     config.Settings
}

// New creates a scheduler driving the given orchestrator.
func New(orchestrator *tracker.Orchestrator, store tracker.KeywordStore, settings config.Settings) *Scheduler {
	return &Scheduler{
		orchestrator: orchestrator,
		store:        store,
		settings:     settings,
	}
}

// Run blocks until the context is cancelled, firing jobs at their
// scheduled instants.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup

	if s.settings.ScrapeInterval != "" && s.settings.ScrapeInterval != IntervalNever {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runJob(ctx, "refresh", s.settings.ScrapeInterval, s.refreshAll)
		}()
	} else {
		slog.Info("Scheduled refresh disabled", "scrape_interval", s.settings.ScrapeInterval)
	}

	// The retry replay always runs hourly, independent of the refresh
	// cadence: it only does work when the queue has members.
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.runJob(ctx, "retry_replay", IntervalHourly, s.replayQueue)
	}()

	wg.Wait()
}

// runJob fires fn at every instant the interval produces until the
// context is cancelled.
func (s *Scheduler) runJob(ctx context.Context, name, interval string, fn func(context.Context)) {
	slog.Info("Scheduled job started", "job", name, "interval", interval)

	for {
		next, ok := NextRun(interval, time.Now())
		if !ok {
			slog.Error("Unknown schedule interval, stopping job", "job", name, "interval", interval)
			return
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("Scheduled job stopped", "job", name)
			return
		case <-timer.C:
			fn(ctx)
		}
	}
}

func (s *Scheduler) refreshAll(ctx context.Context) {
	keywords, err := s.store.ListKeywords(ctx, "")
	if err != nil {
		slog.Error("Scheduled refresh failed to list keywords", "error", err)
		return
	}
	if len(keywords) == 0 {
		slog.Debug("No keywords tracked, skipping scheduled refresh")
		return
	}

	s.orchestrator.Refresh(ctx, keywords, s.settings)
}

func (s *Scheduler) replayQueue(ctx context.Context) {
	s.orchestrator.ReplayRetryQueue(ctx, s.settings)
}
