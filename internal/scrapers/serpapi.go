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

const serpAPIEndpoint = "https://serpapi.com/search.json"

// SerpAPI is a JSON-API backend. The API key arrives already resolved in
// settings and is sent as a request parameter only; it is never logged or
// persisted here.
type SerpAPI struct {
	client   *HTTPClient
	endpoint string
}

// NewSerpAPI creates the serpapi backend over the shared HTTP client.
func NewSerpAPI(client *HTTPClient) *SerpAPI {
	return &SerpAPI{client: client, endpoint: serpAPIEndpoint}
}

// ID implements tracker.Scraper.
func (s *SerpAPI) ID() string { return "serpapi" }

// Name implements tracker.Scraper.
func (s *SerpAPI) Name() string { return "SerpApi.com" }

// SupportsCity implements tracker.Scraper.
func (s *SerpAPI) SupportsCity() bool { return true }

type serpAPIResponse struct {
	Error          string `json:"error"`
	OrganicResults []struct {
		Position int    `json:"position"`
		Link     string `json:"link"`
		Title    string `json:"title"`
	} `json:"organic_results"`
}

// Scrape implements tracker.Scraper.
func (s *SerpAPI) Scrape(ctx context.Context, keyword tracker.Keyword, settings config.Settings) (tracker.ScrapeOutcome, error) {
	if settings.ScraperAPIKey == "" {
		return tracker.ScrapeOutcome{}, fmt.Errorf("serpapi: missing API key")
	}

	params := url.Values{}
	params.Set("q", keyword.Keyword)
	params.Set("num", "100")
	params.Set("gl", strings.ToLower(keyword.Country))
	params.Set("device", keyword.Device)
	params.Set("api_key", settings.ScraperAPIKey)
	if keyword.City != "" {
		params.Set("location", keyword.City+","+keyword.Country)
	}

	body, status, err := s.client.Get(ctx, s.endpoint+"?"+params.Encode())
	if err != nil {
		return tracker.ScrapeOutcome{}, fmt.Errorf("serpapi: %w", err)
	}
	if status != 200 {
		return tracker.ScrapeOutcome{}, fmt.Errorf("serpapi: unexpected status %d", status)
	}

	var parsed serpAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return tracker.ScrapeOutcome{}, fmt.Errorf("serpapi: malformed response: %w", err)
	}
	if parsed.Error != "" {
		return tracker.ScrapeOutcome{}, fmt.Errorf("serpapi: %s", parsed.Error)
	}

	items := make([]tracker.SERPItem, 0, len(parsed.OrganicResults))
	for _, r := range parsed.OrganicResults {
		items = append(items, tracker.SERPItem{Position: r.Position, URL: r.Link, Title: r.Title})
	}

	return outcomeFromResults(items, keyword.Domain), nil
}
