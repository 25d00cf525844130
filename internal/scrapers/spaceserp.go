package scrapers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"serptrack/internal/config"
	"serptrack/internal/tracker"
)

const spaceSerpEndpoint = "https://api.spaceserp.com/google/search"

// SpaceSerp is a JSON-API backend with city-level targeting.
type SpaceSerp struct {
	client   *HTTPClient
	endpoint string
}

// NewSpaceSerp creates the spaceserp backend over the shared HTTP client.
func NewSpaceSerp(client *HTTPClient) *SpaceSerp {
	return &SpaceSerp{client: client, endpoint: spaceSerpEndpoint}
}

// ID implements tracker.Scraper.
func (s *SpaceSerp) ID() string { return "spaceserp" }

// Name implements tracker.Scraper.
func (s *SpaceSerp) Name() string { return "SpaceSerp" }

// SupportsCity implements tracker.Scraper.
func (s *SpaceSerp) SupportsCity() bool { return true }

type spaceSerpResponse struct {
	Message        string `json:"message"`
	OrganicResults []struct {
		Position int    `json:"position"`
		Link     string `json:"link"`
		Title    string `json:"title"`
	} `json:"organic_results"`
}

// Scrape implements tracker.Scraper.
func (s *SpaceSerp) Scrape(ctx context.Context, keyword tracker.Keyword, settings config.Settings) (tracker.ScrapeOutcome, error) {
	if settings.ScraperAPIKey == "" {
		return tracker.ScrapeOutcome{}, fmt.Errorf("spaceserp: missing API key")
	}

	params := url.Values{}
	params.Set("apiKey", settings.ScraperAPIKey)
	params.Set("q", keyword.Keyword)
	params.Set("pageSize", "100")
	params.Set("gl", strings.ToLower(keyword.Country))
	params.Set("device", keyword.Device)
	params.Set("resultBlocks", "organic_results")
	if keyword.City != "" {
		params.Set("location", keyword.City+","+keyword.Country)
	}

	body, status, err := s.client.Get(ctx, s.endpoint+"?"+params.Encode())
	if err != nil {
		return tracker.ScrapeOutcome{}, fmt.Errorf("spaceserp: %w", err)
	}
	if status != 200 {
		return tracker.ScrapeOutcome{}, fmt.Errorf("spaceserp: unexpected status %d", status)
	}

	var parsed spaceSerpResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return tracker.ScrapeOutcome{}, fmt.Errorf("spaceserp: malformed response: %w", err)
	}
	if len(parsed.OrganicResults) == 0 && parsed.Message != "" {
		return tracker.ScrapeOutcome{}, fmt.Errorf("spaceserp: %s", parsed.Message)
	}

	items := make([]tracker.SERPItem, 0, len(parsed.OrganicResults))
	for _, r := range parsed.OrganicResults {
		items = append(items, tracker.SERPItem{Position: r.Position, URL: r.Link, Title: r.Title})
	}

	return outcomeFromResults(items, keyword.Domain), nil
}
