package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"polypath/domain/scrape"
	"polypath/ports"
)

const braveResultCap = 5 // free tier friendly

// BraveProvider queries the Brave web search API with a subscription token
// header and maps the response envelope to scraped resources.
type BraveProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewBraveProvider creates a Brave search adapter. An empty apiKey is
// allowed; the adapter then degrades every search to an empty result.
func NewBraveProvider(apiKey string) *BraveProvider {
	return &BraveProvider{
		apiKey:  apiKey,
		baseURL: "https://api.search.brave.com/res/v1/web/search",
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *BraveProvider) Name() string { return "brave" }

// Search issues one GET against the web search endpoint and returns up to
// braveResultCap resources. All failures degrade to an empty list.
func (p *BraveProvider) Search(ctx context.Context, q scrape.Query, sink ports.Sink) []scrape.Resource {
	if p.apiKey == "" {
		sink.Appendf("Brave API key missing. Skipping.")
		return nil
	}

	results, err := p.search(ctx, q.Text)
	if err != nil {
		sink.Appendf("Brave Search failed: %v", err)
		return nil
	}

	sink.Appendf("Brave returned %d results.", len(results))
	return results
}

func (p *BraveProvider) search(ctx context.Context, query string) ([]scrape.Resource, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", fmt.Sprintf("%d", braveResultCap))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brave request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave responded with %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// Brave response envelope: {"web": {"results": [{title, url, description}]}}
	type braveResult struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
	}
	type braveEnvelope struct {
		Web struct {
			Results []braveResult `json:"results"`
		} `json:"web"`
	}

	var decoded braveEnvelope
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	rows := decoded.Web.Results
	if len(rows) > braveResultCap {
		rows = rows[:braveResultCap]
	}

	out := make([]scrape.Resource, 0, len(rows))
	for _, r := range rows {
		out = append(out, scrape.Resource{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Description,
			Source:  scrape.SourceBrave,
		})
	}
	return out, nil
}
