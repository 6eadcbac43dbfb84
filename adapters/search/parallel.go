package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"polypath/domain/scrape"
	"polypath/internal/retry"
	"polypath/ports"
)

const (
	parallelMatchLimit   = 5
	parallelPollAttempts = 10
	parallelPollInterval = 2500 * time.Millisecond // ~25s ceiling
	parallelBetaFlag     = "findall-2025-09-15"
)

// ParallelProvider runs a FindAll deep entity search: submit an objective,
// poll the run status on a bounded schedule, then fetch verified candidates.
type ParallelProvider struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
	pollAttempts int
}

// NewParallelProvider creates a Parallel FindAll adapter. An empty apiKey is
// allowed; the adapter then degrades every search to an empty result.
func NewParallelProvider(apiKey string) *ParallelProvider {
	return &ParallelProvider{
		apiKey:       apiKey,
		baseURL:      "https://api.parallel.ai/v1beta/findall",
		client:       &http.Client{Timeout: 15 * time.Second},
		pollInterval: parallelPollInterval,
		pollAttempts: parallelPollAttempts,
	}
}

func (p *ParallelProvider) Name() string { return "parallel" }

// Search submits a FindAll run for the topic and collects its candidates.
// Exhausted polling, terminal failure and transport errors all degrade to an
// empty list with one diagnostic line.
func (p *ParallelProvider) Search(ctx context.Context, q scrape.Query, sink ports.Sink) []scrape.Resource {
	if p.apiKey == "" {
		sink.Appendf("Parallel API key missing. Skipping.")
		return nil
	}

	topic := q.Topic
	if topic == "" {
		topic = q.Text
	}

	runID, err := p.startRun(ctx, topic)
	if err != nil {
		sink.Appendf("Parallel error: %v", err)
		return nil
	}

	err = retry.Poll(ctx, p.pollAttempts, p.pollInterval, func(ctx context.Context) (retry.Status, error) {
		return p.checkRun(ctx, runID)
	})
	if err == retry.ErrExhausted {
		sink.Appendf("Parallel timed out.")
		return nil
	}
	if err != nil {
		sink.Appendf("Parallel error: %v", err)
		return nil
	}

	results, err := p.fetchResults(ctx, runID)
	if err != nil {
		sink.Appendf("Parallel error: %v", err)
		return nil
	}

	sink.Appendf("Parallel found %d verified entities.", len(results))
	return results
}

func (p *ParallelProvider) startRun(ctx context.Context, topic string) (string, error) {
	body := map[string]any{
		"objective":   fmt.Sprintf("Find the best free documentation, video courses, and tutorials for learning %s.", topic),
		"entity_type": "learning_resource",
		"match_conditions": []map[string]string{
			{"name": "relevance", "description": fmt.Sprintf("Must be about %s", topic)},
			{"name": "quality", "description": "Must be high quality or official documentation"},
		},
		"generator":   "core",
		"match_limit": parallelMatchLimit,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal run request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/runs", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build run request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("start run: http %d", resp.StatusCode)
	}

	var decoded struct {
		FindallID string `json:"findall_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode run response: %w", err)
	}
	if decoded.FindallID == "" {
		return "", fmt.Errorf("run response missing findall_id")
	}
	return decoded.FindallID, nil
}

func (p *ParallelProvider) checkRun(ctx context.Context, runID string) (retry.Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/runs/"+runID, nil)
	if err != nil {
		return retry.StatusPending, fmt.Errorf("build status request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return retry.StatusPending, fmt.Errorf("check run: %w", err)
	}
	defer resp.Body.Close()

	var decoded struct {
		Status struct {
			Status string `json:"status"`
		} `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return retry.StatusPending, fmt.Errorf("decode status response: %w", err)
	}

	switch decoded.Status.Status {
	case "completed":
		return retry.StatusDone, nil
	case "failed":
		return retry.StatusFailed, fmt.Errorf("run failed internally")
	default:
		return retry.StatusPending, nil
	}
}

func (p *ParallelProvider) fetchResults(ctx context.Context, runID string) ([]scrape.Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/runs/"+runID+"/result", nil)
	if err != nil {
		return nil, fmt.Errorf("build result request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch results: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read result response: %w", err)
	}

	var decoded struct {
		Candidates []struct {
			Name        string `json:"name"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode result response: %w", err)
	}

	out := make([]scrape.Resource, 0, len(decoded.Candidates))
	for _, c := range decoded.Candidates {
		out = append(out, scrape.Resource{
			Title:   c.Name,
			URL:     c.URL,
			Snippet: c.Description,
			Source:  scrape.SourceParallel,
		})
	}
	return out, nil
}

func (p *ParallelProvider) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("parallel-beta", parallelBetaFlag)
	req.Header.Set("Content-Type", "application/json")
}
