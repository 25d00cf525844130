// Package scheduler triggers refresh and retry-replay runs on named
// intervals. The tracking engine itself is agnostic to scheduling; it
// only reacts to invocation.
package scheduler

import "time"

// Named intervals accepted by NextRun. "daily_morning" is the fixed
// early-morning slot used for daily notification-style jobs.
const (
	IntervalHourly       = "hourly"
	IntervalDaily        = "daily"
	IntervalOtherDay     = "other_day"
	IntervalDailyMorning = "daily_morning"
	IntervalWeekly       = "weekly"
	IntervalMonthly      = "monthly"
	IntervalNever        = "never"
)

// NextRun computes the next trigger instant strictly after from for a
// named interval, using a static lookup of schedule rules. The second
// return value is false for "never" and unknown names.
func NextRun(interval string, from time.Time) (time.Time, bool) {
	switch interval {
	case IntervalHourly:
		return from.Truncate(time.Hour).Add(time.Hour), true

	case IntervalDaily:
		year, month, day := from.Date()
		return time.Date(year, month, day+1, 0, 0, 0, 0, from.Location()), true

	case IntervalDailyMorning:
		year, month, day := from.Date()
		next := time.Date(year, month, day, 3, 0, 0, 0, from.Location())
		if !next.After(from) {
			next = next.AddDate(0, 0, 1)
		}
		return next, true

	case IntervalOtherDay:
		// Midnight on even-numbered calendar days.
		year, month, day := from.Date()
		next := time.Date(year, month, day+1, 0, 0, 0, 0, from.Location())
		for next.Day()%2 != 0 {
			next = next.AddDate(0, 0, 1)
		}
		return next, true

	case IntervalWeekly:
		year, month, day := from.Date()
		next := time.Date(year, month, day+1, 0, 0, 0, 0, from.Location())
		for next.Weekday() != time.Monday {
			next = next.AddDate(0, 0, 1)
		}
		return next, true

	case IntervalMonthly:
		year, month, _ := from.Date()
		return time.Date(year, month+1, 1, 0, 0, 0, 0, from.Location()), true
	}

	return time.Time{}, false
}
