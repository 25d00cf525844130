package tracker

import (
	"time"

	"serptrack/internal/config"
)

// HistoryDateFormat is the layout of history keys: local calendar date,
// year-month-day with no leading zeros (e.g. "2026-8-31"). The exact
// literal written here is also what every read compares against, so this
// layout is a persisted key contract and must not change.
const HistoryDateFormat = "2006-1-2"

// DateKey returns the history key for the given instant, using the
// invoking process's local calendar.
func DateKey(t time.Time) string {
	return t.Format(HistoryDateFormat)
}

// Merge folds a scrape outcome into a keyword's persisted state and
// returns the updated record. It is pure with respect to its inputs: the
// prior keyword is not mutated and no hidden state is consulted, so it
// can be tested in isolation from persistence.
//
// Today's history entry is overwritten, never appended: a second scrape
// on the same calendar day replaces that day's position. On failure the
// last-updated timestamp is left untouched so a failed scrape can never
// make a keyword look freshly confirmed.
func Merge(prior Keyword, outcome ScrapeOutcome, settings config.Settings, now time.Time) Keyword {
	updated := prior
	updated.Updating = false
	updated.Position = outcome.Position
	updated.URL = outcome.URL
	updated.LastResult = outcome.Result

	history := make(map[string]int, len(prior.History)+1)
	for day, position := range prior.History {
		history[day] = position
	}
	history[DateKey(now)] = outcome.Position
	updated.History = history

	if outcome.Failed() {
		updated.LastError = &ScrapeError{
			Date:    now,
			Message: outcome.Error,
			Backend: settings.ScraperType,
		}
	} else {
		updated.LastUpdated = now
		updated.LastError = nil
	}

	return updated
}
