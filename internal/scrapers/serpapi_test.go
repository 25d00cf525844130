package scrapers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"serptrack/internal/config"
	"serptrack/internal/tracker"
)

func testKeyword() tracker.Keyword {
	return tracker.Keyword{
		ID:      1,
		Keyword: "coffee grinder",
		Device:  tracker.DeviceDesktop,
		Country: "US",
		Domain:  "example.com",
	}
}

func apiSettings(key string) config.Settings {
	settings := config.DefaultSettings()
	settings.ScraperAPIKey = key
	return settings
}

func TestSerpAPIScrape(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"organic_results": [
				{"position": 1, "link": "https://other.net/grinders", "title": "Grinders"},
				{"position": 2, "link": "https://www.example.com/grinder", "title": "Best Grinder"}
			]
		}`))
	}))
	defer server.Close()

	scraper := NewSerpAPI(NewHTTPClient("test-agent", 5*time.Second))
	scraper.endpoint = server.URL

	outcome, err := scraper.Scrape(context.Background(), testKeyword(), apiSettings("secret"))
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}

	if outcome.Position != 2 {
		t.Errorf("Expected position 2, got %d", outcome.Position)
	}
	if outcome.URL != "https://www.example.com/grinder" {
		t.Errorf("Unexpected ranked URL: %q", outcome.URL)
	}
	if len(outcome.Result) != 2 {
		t.Errorf("Expected 2 results, got %d", len(outcome.Result))
	}

	for _, want := range []string{"q=coffee+grinder", "gl=us", "device=desktop", "num=100"} {
		if !containsParam(gotQuery, want) {
			t.Errorf("Request query missing %q: %s", want, gotQuery)
		}
	}
}

func TestSerpAPIScrapeErrors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		scraper := NewSerpAPI(NewHTTPClient("test-agent", 5*time.Second))
		_, err := scraper.Scrape(context.Background(), testKeyword(), apiSettings(""))
		if err == nil {
			t.Fatal("Expected error for missing API key")
		}
	})

	t.Run("api-level error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error": "Your searches for the month are exhausted"}`))
		}))
		defer server.Close()

		scraper := NewSerpAPI(NewHTTPClient("test-agent", 5*time.Second))
		scraper.endpoint = server.URL

		_, err := scraper.Scrape(context.Background(), testKeyword(), apiSettings("secret"))
		if err == nil {
			t.Fatal("Expected error from API error field")
		}
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		scraper := NewSerpAPI(NewHTTPClient("test-agent", 5*time.Second))
		scraper.endpoint = server.URL

		_, err := scraper.Scrape(context.Background(), testKeyword(), apiSettings("secret"))
		if err == nil {
			t.Fatal("Expected error for HTTP 429")
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>not json</html>`))
		}))
		defer server.Close()

		scraper := NewSerpAPI(NewHTTPClient("test-agent", 5*time.Second))
		scraper.endpoint = server.URL

		_, err := scraper.Scrape(context.Background(), testKeyword(), apiSettings("secret"))
		if err == nil {
			t.Fatal("Expected error for malformed JSON")
		}
	})
}

func TestSerpAPICityLocation(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"organic_results": []}`))
	}))
	defer server.Close()

	scraper := NewSerpAPI(NewHTTPClient("test-agent", 5*time.Second))
	scraper.endpoint = server.URL

	keyword := testKeyword()
	keyword.City = "Austin"

	if _, err := scraper.Scrape(context.Background(), keyword, apiSettings("secret")); err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if !containsParam(gotQuery, "location=Austin%2CUS") {
		t.Errorf("Expected city location parameter, got %s", gotQuery)
	}
}

func containsParam(query, param string) bool {
	for _, part := range strings.Split(query, "&") {
		if part == param {
			return true
		}
	}
	return false
}
