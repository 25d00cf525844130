// Package scrapers contains the pluggable scraping backends and the HTTP
// plumbing they share. Each backend implements tracker.Scraper and is
// registered into the registry at process start.
package scrapers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseSize caps how much of a backend response is read. SERP API
// responses are small; anything larger is malformed.
const maxResponseSize = 10 << 20 // 10MB

// HTTPClient is the shared HTTP transport for scraping backends. The
// per-call deadline comes from the caller's context; the client timeout
// is only a hard upper bound.
type HTTPClient struct {
	client    *http.Client
	userAgent string
}

// NewHTTPClient creates a new HTTP client for backend calls.
func NewHTTPClient(userAgent string, timeout time.Duration) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	return &HTTPClient{client: client, userAgent: userAgent}
}

// Get performs a GET request and returns the response body and status
// code. Bodies larger than maxResponseSize are truncated.
func (h *HTTPClient) Get(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}
