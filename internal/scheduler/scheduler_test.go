package scheduler

import (
	"context"
	"testing"
	"time"

	"serptrack/internal/config"
	"serptrack/internal/tracker"
)

type fakeStore struct {
	keywords []tracker.Keyword
	updated  []int64
}

func (s *fakeStore) GetKeywords(ctx context.Context, ids []int64) ([]tracker.Keyword, error) {
	var out []tracker.Keyword
	for _, kw := range s.keywords {
		for _, id := range ids {
			if kw.ID == id {
				out = append(out, kw)
			}
		}
	}
	return out, nil
}

func (s *fakeStore) ListKeywords(ctx context.Context, domain string) ([]tracker.Keyword, error) {
	return s.keywords, nil
}

func (s *fakeStore) UpdateKeyword(ctx context.Context, kw tracker.Keyword) error {
	s.updated = append(s.updated, kw.ID)
	return nil
}

func (s *fakeStore) SetUpdating(ctx context.Context, ids []int64, updating bool) error {
	return nil
}

type fakeQueue struct {
	members []int64
}

func (q *fakeQueue) Enqueue(ctx context.Context, id int64) error { return nil }
func (q *fakeQueue) Dequeue(ctx context.Context, id int64) error { return nil }
func (q *fakeQueue) Members(ctx context.Context) ([]int64, error) {
	return q.members, nil
}

type fixedScraper struct{}

func (fixedScraper) ID() string         { return "fixed" }
func (fixedScraper) Name() string       { return "Fixed" }
func (fixedScraper) SupportsCity() bool { return false }
func (fixedScraper) Scrape(ctx context.Context, keyword tracker.Keyword, settings config.Settings) (tracker.ScrapeOutcome, error) {
	return tracker.ScrapeOutcome{Position: 1}, nil
}

func testScheduler(t *testing.T, store *fakeStore, queue *fakeQueue) *Scheduler {
	t.Helper()

	registry := tracker.NewRegistry()
	if err := registry.Register(fixedScraper{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	settings := config.DefaultSettings()
	settings.ScraperType = "fixed"
	settings.ScrapeInterval = IntervalDaily

	orchestrator := tracker.NewOrchestrator(store, queue, registry)
	return New(orchestrator, store, settings)
}

func TestRefreshAllProcessesEveryKeyword(t *testing.T) {
	store := &fakeStore{keywords: []tracker.Keyword{
		{ID: 1, Keyword: "a", Domain: "example.com", History: map[string]int{}},
		{ID: 2, Keyword: "b", Domain: "example.com", History: map[string]int{}},
	}}
	scheduler := testScheduler(t, store, &fakeQueue{})

	scheduler.refreshAll(context.Background())

	if len(store.updated) != 2 {
		t.Errorf("Expected 2 keywords persisted, got %v", store.updated)
	}
}

func TestReplayQueueRefreshesQueuedIDs(t *testing.T) {
	store := &fakeStore{keywords: []tracker.Keyword{
		{ID: 1, Keyword: "a", Domain: "example.com", History: map[string]int{}},
		{ID: 2, Keyword: "b", Domain: "example.com", History: map[string]int{}},
	}}
	queue := &fakeQueue{members: []int64{2}}
	scheduler := testScheduler(t, store, queue)

	scheduler.replayQueue(context.Background())

	if len(store.updated) != 1 || store.updated[0] != 2 {
		t.Errorf("Expected only the queued keyword refreshed, got %v", store.updated)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	scheduler := testScheduler(t, &fakeStore{}, &fakeQueue{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
