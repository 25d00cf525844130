package scrapers

import (
	"net/url"
	"strings"

	"serptrack/internal/tracker"
)

// findRank locates the first result belonging to the keyword's domain and
// returns its position and canonical URL. Position 0 means the domain was
// not found in the result list; 0 is reserved for "unknown" and is never
// a real rank.
func findRank(items []tracker.SERPItem, domain string) (int, string) {
	want := normalizeHost(domain)
	if want == "" {
		return 0, ""
	}

	for _, item := range items {
		parsed, err := url.Parse(item.URL)
		if err != nil {
			continue
		}
		host := normalizeHost(parsed.Host)
		if host == want || strings.HasSuffix(host, "."+want) {
			return item.Position, item.URL
		}
	}
	return 0, ""
}

// normalizeHost lowercases a hostname and strips a leading "www." so
// tracked domains match regardless of how the result URL is written.
func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimPrefix(host, "www.")
	return host
}

// outcomeFromResults builds a successful outcome from a parsed result
// list. An empty list is a valid outcome: the keyword is simply unranked.
func outcomeFromResults(items []tracker.SERPItem, domain string) tracker.ScrapeOutcome {
	if items == nil {
		items = []tracker.SERPItem{}
	}
	position, rankedURL := findRank(items, domain)
	return tracker.ScrapeOutcome{
		Position: position,
		URL:      rankedURL,
		Result:   items,
	}
}
