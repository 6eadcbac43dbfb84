package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"polypath/domain/jobs"
	"polypath/internal/config"
	apperrors "polypath/internal/errors"
	"polypath/internal/logsink"
	"polypath/ports"
)

const (
	jobSandboxTimeout = 120 * time.Second
	jobScriptTimeout  = 60 * time.Second
)

// JobSearchRequest asks for job listings matching a role. Notes only
// matter when the outcome is attached to a roadmap.
type JobSearchRequest struct {
	UserID   string   `json:"userId"`
	Role     string   `json:"role"`
	Location string   `json:"location,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// JobSearchResponse carries discovered listings. JobMatchID is empty when
// persistence was skipped.
type JobSearchResponse struct {
	Results    []jobs.Result `json:"results"`
	JobMatchID string        `json:"jobMatchId,omitempty"`
	SandboxID  string        `json:"sandboxId,omitempty"`
	Logs       []string      `json:"logs"`
}

// JobAttachResponse carries the job block written onto a roadmap record.
type JobAttachResponse struct {
	Jobs      jobs.Block `json:"jobs"`
	SandboxID string     `json:"sandboxId,omitempty"`
	Logs      []string   `json:"logs"`
}

// JobSearchService runs job discovery inside an ephemeral sandbox with a
// Firecrawl-backed search, then persists the outcome best-effort.
type JobSearchService struct {
	sandbox  ports.SandboxProvider
	repo     ports.JobMatchRepository
	roadmaps ports.RoadmapRepository
	cfg      config.SandboxConfig
}

// NewJobSearchService creates a job search service
func NewJobSearchService(sandbox ports.SandboxProvider, repo ports.JobMatchRepository, roadmaps ports.RoadmapRepository, cfg config.SandboxConfig) *JobSearchService {
	return &JobSearchService{sandbox: sandbox, repo: repo, roadmaps: roadmaps, cfg: cfg}
}

// Search discovers job listings for a role. The sandbox is created for this
// call and closed before returning; an unavailable sandbox yields an empty
// result set, not an error.
func (s *JobSearchService) Search(ctx context.Context, req JobSearchRequest) (*JobSearchResponse, error) {
	if req.UserID == "" || req.Role == "" {
		return nil, apperrors.ValidationError("userId and role are required")
	}

	sink := logsink.New()
	results, sandboxID := s.searchInSandbox(ctx, req, sink)

	var jobMatchID string
	if id, err := s.repo.Insert(ctx, &jobs.Match{
		UserID:   req.UserID,
		Role:     req.Role,
		Location: req.Location,
		Keywords: req.Keywords,
		Results:  results,
	}); err != nil {
		sink.Appendf("Job match insert skipped: %v", err)
		log.Printf("[JobSearch] insert failed for user %s: %v", req.UserID, err)
	} else {
		jobMatchID = id
	}

	return &JobSearchResponse{
		Results:    results,
		JobMatchID: jobMatchID,
		SandboxID:  sandboxID,
		Logs:       sink.Lines(),
	}, nil
}

// AttachToRoadmap runs the same sandboxed search and writes the outcome
// onto the roadmap record as its jobs block. Both the roadmap update and
// the job_matches insert are best-effort.
func (s *JobSearchService) AttachToRoadmap(ctx context.Context, roadmapID string, req JobSearchRequest) (*JobAttachResponse, error) {
	if roadmapID == "" {
		return nil, apperrors.ValidationError("roadmap id is required")
	}
	if req.UserID == "" || req.Role == "" {
		return nil, apperrors.ValidationError("userId and role are required")
	}

	sink := logsink.New()
	results, sandboxID := s.searchInSandbox(ctx, req, sink)

	block := jobs.Block{
		Role:      req.Role,
		Location:  req.Location,
		Keywords:  req.Keywords,
		Notes:     req.Notes,
		Results:   results,
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.roadmaps.UpdateJobs(ctx, roadmapID, block); err != nil {
		sink.Appendf("Roadmap jobs update failed: %v", err)
		log.Printf("[JobSearch] jobs update failed for roadmap %s: %v", roadmapID, err)
	}

	if _, err := s.repo.Insert(ctx, &jobs.Match{
		UserID:   req.UserID,
		Role:     req.Role,
		Location: req.Location,
		Keywords: req.Keywords,
		Results:  results,
	}); err != nil {
		sink.Appendf("Job match insert skipped: %v", err)
		log.Printf("[JobSearch] insert failed for user %s: %v", req.UserID, err)
	}

	return &JobAttachResponse{
		Jobs:      block,
		SandboxID: sandboxID,
		Logs:      sink.Lines(),
	}, nil
}

func (s *JobSearchService) searchInSandbox(ctx context.Context, req JobSearchRequest, sink ports.Sink) ([]jobs.Result, string) {
	session := s.sandbox.Create(ctx, s.cfg.Template, jobSandboxTimeout, sink)
	if !session.Ready {
		sink.Appendf("Skipping sandbox job search; returning empty results.")
		return []jobs.Result{}, ""
	}
	defer s.sandbox.Close(ctx, session, sink)

	s.sandbox.EnsureDocker(ctx, session, sink)

	firecrawlURL := s.cfg.FirecrawlAPIURL
	if firecrawlURL == "" {
		firecrawlURL = fmt.Sprintf("http://127.0.0.1:%s/v1/search", s.cfg.FirecrawlPort)
	}
	if strings.Contains(firecrawlURL, "127.0.0.1") || strings.Contains(firecrawlURL, "localhost") {
		s.sandbox.EnsureService(ctx, session, ports.ServiceSpec{
			Name:       s.cfg.FirecrawlContainer,
			Image:      s.cfg.FirecrawlImage,
			HostPort:   s.cfg.FirecrawlPort,
			TargetPort: s.cfg.FirecrawlTarget,
		}, sink)
	}

	query := buildJobQuery(req)
	command := fmt.Sprintf("FIRECRAWL_API_KEY=%q FIRECRAWL_API_URL=%q python - <<'PY'\n%s\nPY",
		s.cfg.FirecrawlAPIKey, firecrawlURL, buildJobSearchScript(query, req.Location))

	run := s.sandbox.Run(ctx, session, command, ports.RunOpts{Timeout: jobScriptTimeout})
	if run.ExitCode != 0 {
		sink.Appendf("Job search script failed: %s", strings.TrimSpace(run.Stderr))
		return []jobs.Result{}, session.ID
	}

	var results []jobs.Result
	if err := json.Unmarshal([]byte(strings.TrimSpace(run.Stdout)), &results); err != nil {
		sink.Appendf("Failed to parse job search output; returning empty list.")
		return []jobs.Result{}, session.ID
	}

	sink.Appendf("Job search found %d listings.", len(results))
	return results, session.ID
}

func buildJobQuery(req JobSearchRequest) string {
	parts := []string{req.Role}
	if req.Location != "" {
		parts = append(parts, req.Location)
	}
	for _, kw := range req.Keywords {
		if kw != "" {
			parts = append(parts, kw)
		}
	}
	return strings.Join(parts, " ")
}

// buildJobSearchScript emits the python program run inside the sandbox. It
// queries the Firecrawl search API and falls back to a single placeholder
// row so the flow stays alive when Firecrawl is unreachable.
func buildJobSearchScript(query, location string) string {
	queryJSON, _ := json.Marshal(query)
	locationJSON, _ := json.Marshal(orDefault(location, "Remote"))

	return fmt.Sprintf(`import json, os, sys, subprocess

try:
    import requests
except ImportError:
    subprocess.run([sys.executable, "-m", "pip", "install", "-q", "requests"],
                   check=True, stdout=subprocess.DEVNULL, stderr=subprocess.DEVNULL)
    import requests

query = %s
api_key = os.environ.get("FIRECRAWL_API_KEY", "")
api_url = os.environ.get("FIRECRAWL_API_URL", "https://api.firecrawl.dev/v1/search")
results = []

try:
    resp = requests.post(
        api_url,
        headers={"Authorization": f"Bearer {api_key}"},
        json={"query": query, "page": 1, "num_results": 6},
        timeout=30,
    )
    data = resp.json() if resp.content else {}
    hits = data.get("data") or data.get("results") or []
    for item in hits[:8]:
        results.append({
            "title": item.get("title") or item.get("name") or "",
            "company": item.get("company") or item.get("source") or "",
            "location": item.get("location") or %s,
            "url": item.get("url") or item.get("link") or "",
            "snippet": item.get("description") or item.get("summary") or "",
        })
except Exception as exc:
    sys.stderr.write(f"FIRECRAWL_HTTP_ERROR::{exc}\n")

if not results:
    results = [{
        "title": f"{query} - Lead Opportunity",
        "company": "ExampleCo",
        "location": %s,
        "url": "https://jobs.example.com/sample",
        "snippet": "Generated fallback listing while Firecrawl is unavailable.",
    }]

print(json.dumps(results))`, queryJSON, locationJSON, locationJSON)
}
