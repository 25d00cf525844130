package scrapers

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"serptrack/internal/config"
	"serptrack/internal/tracker"
)

// ProxyPage fetches the raw results page through a configured proxy
// endpoint and extracts organic results from the HTML itself. It is the
// backend of last resort for deployments without a SERP API subscription.
type ProxyPage struct {
	client *HTTPClient
}

// NewProxyPage creates the proxy-page backend over the shared HTTP client.
func NewProxyPage(client *HTTPClient) *ProxyPage {
	return &ProxyPage{client: client}
}

// ID implements tracker.Scraper.
func (p *ProxyPage) ID() string { return "proxypage" }

// Name implements tracker.Scraper.
func (p *ProxyPage) Name() string { return "Proxy Page" }

// SupportsCity implements tracker.Scraper.
func (p *ProxyPage) SupportsCity() bool { return false }

// Scrape implements tracker.Scraper.
func (p *ProxyPage) Scrape(ctx context.Context, keyword tracker.Keyword, settings config.Settings) (tracker.ScrapeOutcome, error) {
	if settings.ScraperAPIURL == "" {
		return tracker.ScrapeOutcome{}, fmt.Errorf("proxypage: scraper_api_url is not configured")
	}

	target := "https://www.google.com/search?" + url.Values{
		"q":   {keyword.Keyword},
		"num": {"100"},
		"gl":  {strings.ToLower(keyword.Country)},
	}.Encode()

	params := url.Values{}
	params.Set("url", target)
	if settings.ScraperAPIKey != "" {
		params.Set("key", settings.ScraperAPIKey)
	}

	body, status, err := p.client.Get(ctx, strings.TrimSuffix(settings.ScraperAPIURL, "/")+"/?"+params.Encode())
	if err != nil {
		return tracker.ScrapeOutcome{}, fmt.Errorf("proxypage: %w", err)
	}
	if status != 200 {
		return tracker.ScrapeOutcome{}, fmt.Errorf("proxypage: unexpected status %d", status)
	}

	items, err := parseResultsPage(body)
	if err != nil {
		return tracker.ScrapeOutcome{}, fmt.Errorf("proxypage: %w", err)
	}

	return outcomeFromResults(items, keyword.Domain), nil
}

// parseResultsPage extracts organic results from a results page. An
// organic result is an anchor wrapping a heading; anything without both
// is navigation chrome and is skipped.
func parseResultsPage(page []byte) ([]tracker.SERPItem, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	items := []tracker.SERPItem{}
	var traverse func(n *html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attrValue(n, "href")
			title := headingText(n)
			if link := resultLink(href); link != "" && title != "" {
				items = append(items, tracker.SERPItem{
					Position: len(items) + 1,
					URL:      link,
					Title:    title,
				})
				return // Nested anchors inside a result block are duplicates
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	return items, nil
}

// resultLink normalizes an anchor href into an absolute result URL.
// Redirect-style hrefs ("/url?q=...") are unwrapped; relative and
// javascript hrefs are rejected.
func resultLink(href string) string {
	if strings.HasPrefix(href, "/url?") {
		parsed, err := url.Parse(href)
		if err != nil {
			return ""
		}
		href = parsed.Query().Get("q")
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return ""
}

// headingText returns the text of the first heading element beneath n,
// or empty when the anchor wraps no heading.
func headingText(n *html.Node) string {
	var heading *html.Node
	var find func(n *html.Node)
	find = func(n *html.Node) {
		if heading != nil {
			return
		}
		if n.Type == html.ElementNode && (n.Data == "h3" || n.Data == "h2") {
			heading = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(n)

	if heading == nil {
		return ""
	}

	var text strings.Builder
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(heading)

	return strings.TrimSpace(text.String())
}

// attrValue returns the value of the named attribute, or empty.
func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}
