package scheduler

import (
	"testing"
	"time"
)

func TestNextRun(t *testing.T) {
	// A Thursday afternoon on an odd-numbered day.
	from := time.Date(2026, time.March, 5, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name     string
		interval string
		want     time.Time
		ok       bool
	}{
		{"hourly", IntervalHourly, time.Date(2026, time.March, 5, 15, 0, 0, 0, time.UTC), true},
		{"daily", IntervalDaily, time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC), true},
		{"daily morning", IntervalDailyMorning, time.Date(2026, time.March, 6, 3, 0, 0, 0, time.UTC), true},
		{"other day", IntervalOtherDay, time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC), true},
		{"weekly next monday", IntervalWeekly, time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC), true},
		{"monthly first of next month", IntervalMonthly, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), true},
		{"never", IntervalNever, time.Time{}, false},
		{"unknown", "fortnightly", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextRun(tt.interval, from)
			if ok != tt.ok {
				t.Fatalf("NextRun(%q) ok = %v, want %v", tt.interval, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("NextRun(%q) = %v, want %v", tt.interval, got, tt.want)
			}
		})
	}
}

func TestNextRunStrictlyAfter(t *testing.T) {
	intervals := []string{
		IntervalHourly, IntervalDaily, IntervalDailyMorning,
		IntervalOtherDay, IntervalWeekly, IntervalMonthly,
	}

	// Instants sitting exactly on schedule boundaries.
	boundaries := []time.Time{
		time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),  // Monday midnight, even day
		time.Date(2026, time.March, 5, 3, 0, 0, 0, time.UTC),  // 3am morning slot
		time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),  // First of month
	}

	for _, interval := range intervals {
		for _, from := range boundaries {
			next, ok := NextRun(interval, from)
			if !ok {
				t.Fatalf("NextRun(%q) unexpectedly not ok", interval)
			}
			if !next.After(from) {
				t.Errorf("NextRun(%q, %v) = %v, not strictly after", interval, from, next)
			}
		}
	}
}

func TestNextRunMorningBeforeSlot(t *testing.T) {
	from := time.Date(2026, time.March, 5, 1, 15, 0, 0, time.UTC)
	next, ok := NextRun(IntervalDailyMorning, from)
	if !ok {
		t.Fatal("Expected a next run")
	}
	want := time.Date(2026, time.March, 5, 3, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("Expected same-day morning slot %v, got %v", want, next)
	}
}

func TestNextRunOtherDayLandsOnEvenDay(t *testing.T) {
	// From an even day the next trigger skips the odd day in between.
	from := time.Date(2026, time.March, 6, 10, 0, 0, 0, time.UTC)
	next, ok := NextRun(IntervalOtherDay, from)
	if !ok {
		t.Fatal("Expected a next run")
	}
	want := time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("Expected %v, got %v", want, next)
	}
}

func TestNextRunMonthlyYearRollover(t *testing.T) {
	from := time.Date(2026, time.December, 15, 9, 0, 0, 0, time.UTC)
	next, ok := NextRun(IntervalMonthly, from)
	if !ok {
		t.Fatal("Expected a next run")
	}
	want := time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("Expected %v, got %v", want, next)
	}
}
