package tracker

import "time"

// Device values accepted for a tracked keyword.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
)

// Keyword is a tracked search term scoped to a domain, device and country.
type Keyword struct {
	ID       int64  // Immutable once created
	Keyword  string // The search term
	Device   string // 'desktop' or 'mobile'
	Country  string // ISO country code (e.g. "US")
	City     string // Optional city for backends that support it
	Domain   string // Domain whose rank is tracked
	Position int    // Current rank; 0 means not yet determined

	// History maps a calendar-date key (see HistoryDateFormat) to the
	// position recorded on that day. One entry per distinct day.
	History map[string]int

	URL        string     // Ranking URL from the most recent scrape
	LastResult []SERPItem // Raw result list from the most recent scrape
	Tags       []string
	Sticky     bool // Opt-out of pruning
	Updating   bool // True while a scrape is in flight

	LastUpdated time.Time    // Last successful scrape; zero if never
	LastError   *ScrapeError // Nil when the last scrape succeeded
	Added       time.Time
}

// SERPItem is a single structured entry from a scraped results page.
type SERPItem struct {
	Position int    `json:"position"`
	URL      string `json:"url"`
	Title    string `json:"title"`
}

// ScrapeError describes the most recent failed scrape of a keyword.
// The JSON field names are a persisted contract shared with older records.
type ScrapeError struct {
	Date    time.Time `json:"date"`
	Message string    `json:"error"`
	Backend string    `json:"scraper"`
}

// ScrapeOutcome is the ephemeral result of one scrape attempt for one
// keyword. It is never persisted directly; the merger folds it into the
// keyword record.
type ScrapeOutcome struct {
	Position int        // 0 = rank not found / unknown
	URL      string     // Canonical ranking URL, empty when unranked
	Result   []SERPItem // Full structured result list, may be empty
	Error    string     // Empty on success
}

// Failed reports whether the outcome carries an error.
func (o ScrapeOutcome) Failed() bool {
	return o.Error != ""
}

// RefreshStats summarizes one orchestrator invocation.
type RefreshStats struct {
	Keywords  int
	Failed    int
	StartTime time.Time
	Duration  time.Duration
}
