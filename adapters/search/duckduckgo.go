package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"polypath/domain/scrape"
	"polypath/ports"
)

const (
	ddgResultCap = 4
	// The html endpoint is static markup, far easier to scrape than the
	// dynamic JS site.
	ddgUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// DuckDuckGoProvider scrapes the html.duckduckgo.com results page. It needs
// no credentials but is fragile to upstream markup changes, so any parse
// trouble degrades to an empty result rather than an error.
type DuckDuckGoProvider struct {
	baseURL string
	client  *http.Client
}

// NewDuckDuckGoProvider creates the scraper adapter.
func NewDuckDuckGoProvider() *DuckDuckGoProvider {
	return &DuckDuckGoProvider{
		baseURL: "https://html.duckduckgo.com/html/",
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *DuckDuckGoProvider) Name() string { return "duckduckgo" }

// Search fetches the results page and extracts up to ddgResultCap result
// anchors, unwrapping redirect-wrapper URLs when present.
func (p *DuckDuckGoProvider) Search(ctx context.Context, q scrape.Query, sink ports.Sink) []scrape.Resource {
	results, err := p.search(ctx, q.Text)
	if err != nil {
		sink.Appendf("DuckDuckGo failed: %v", err)
		return nil
	}

	sink.Appendf("DuckDuckGo scraped %d results.", len(results))
	return results
}

func (p *DuckDuckGoProvider) search(ctx context.Context, query string) ([]scrape.Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", ddgUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ddg request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ddg blocked request (http %d)", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	var results []scrape.Resource
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(results) >= ddgResultCap {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			href := attr(n, "href")
			title := strings.TrimSpace(textContent(n))
			if href != "" && title != "" {
				results = append(results, scrape.Resource{
					Title:  title,
					URL:    unwrapRedirect(href),
					Source: scrape.SourceDuckDuckGo,
					// Snippets are harder to map 1:1 with the anchor walk.
					Snippet: "Found via DuckDuckGo Search",
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return results, nil
}

// unwrapRedirect decodes DDG's redirect wrapper (/l/?...&uddg=<encoded>)
// back to the destination URL. Unwrappable hrefs are returned as-is.
func unwrapRedirect(href string) string {
	if !strings.Contains(href, "uddg=") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if dest := u.Query().Get("uddg"); dest != "" {
		return dest
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
