package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polypath/domain/roadmap"
	"polypath/internal/config"
	apperrors "polypath/internal/errors"
	"polypath/ports"
)

// scriptedSandbox extends fakeSandbox with canned command output and call
// recording for the job search flow.
type scriptedSandbox struct {
	fakeSandbox
	stdout   string
	exitCode int
	commands []string
	closed   bool
	services []ports.ServiceSpec
}

func (s *scriptedSandbox) Run(_ context.Context, session ports.SandboxSession, command string, _ ports.RunOpts) ports.CommandResult {
	if !session.Ready {
		return ports.CommandResult{ExitCode: -1, Stderr: "sandbox unavailable"}
	}
	s.commands = append(s.commands, command)
	return ports.CommandResult{ExitCode: s.exitCode, Stdout: s.stdout}
}

func (s *scriptedSandbox) EnsureService(_ context.Context, _ ports.SandboxSession, spec ports.ServiceSpec, _ ports.Sink) bool {
	s.services = append(s.services, spec)
	return true
}

func (s *scriptedSandbox) Close(_ context.Context, _ ports.SandboxSession, _ ports.Sink) {
	s.closed = true
}

func jobCfg() config.SandboxConfig {
	return config.SandboxConfig{
		Template:           "base",
		FirecrawlImage:     "ghcr.io/mendableai/firecrawl:latest",
		FirecrawlContainer: "firecrawl-api",
		FirecrawlPort:      "3002",
		FirecrawlTarget:    "3000",
	}
}

func TestJobSearchRunsScriptAndPersists(t *testing.T) {
	sandbox := &scriptedSandbox{
		fakeSandbox: fakeSandbox{session: ports.SandboxSession{ID: "sbx-j", Ready: true}, dockerOK: true},
		stdout:      `[{"title":"Go Engineer","company":"Acme","location":"Berlin","url":"https://jobs.acme/1","snippet":"Backend role"}]`,
	}
	repo := &memoryJobRepo{}
	svc := NewJobSearchService(sandbox, repo, newMemoryRepo(), jobCfg())

	resp, err := svc.Search(context.Background(), JobSearchRequest{
		UserID: "u-1", Role: "Go Engineer", Location: "Berlin", Keywords: []string{"backend", ""},
	})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Go Engineer", resp.Results[0].Title)
	assert.Equal(t, "sbx-j", resp.SandboxID)
	assert.Equal(t, "jm-1", resp.JobMatchID)
	assert.True(t, sandbox.closed, "sandbox must be closed after the search")

	// The composed query drops empty keywords.
	require.Len(t, sandbox.commands, 1)
	assert.Contains(t, sandbox.commands[0], `"Go Engineer Berlin backend"`)

	// Local firecrawl URL bootstraps the docker service.
	require.Len(t, sandbox.services, 1)
	assert.Equal(t, "firecrawl-api", sandbox.services[0].Name)

	require.Len(t, repo.inserted, 1)
	assert.Equal(t, "u-1", repo.inserted[0].UserID)
	assert.Len(t, repo.inserted[0].Results, 1)
}

func TestJobSearchValidation(t *testing.T) {
	svc := NewJobSearchService(&scriptedSandbox{}, &memoryJobRepo{}, newMemoryRepo(), jobCfg())

	_, err := svc.Search(context.Background(), JobSearchRequest{Role: "Go Engineer"})
	assert.Equal(t, apperrors.CodeValidationError, apperrors.GetCode(err))

	_, err = svc.Search(context.Background(), JobSearchRequest{UserID: "u-1"})
	assert.Equal(t, apperrors.CodeValidationError, apperrors.GetCode(err))
}

func TestJobSearchWithoutSandboxReturnsEmpty(t *testing.T) {
	sandbox := &scriptedSandbox{fakeSandbox: fakeSandbox{session: ports.SandboxSession{}}}
	repo := &memoryJobRepo{}
	svc := NewJobSearchService(sandbox, repo, newMemoryRepo(), jobCfg())

	resp, err := svc.Search(context.Background(), JobSearchRequest{UserID: "u-1", Role: "Go Engineer"})

	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Empty(t, resp.SandboxID)
	assert.Contains(t, resp.Logs, "Skipping sandbox job search; returning empty results.")
	// The empty outcome is still persisted.
	require.Len(t, repo.inserted, 1)
}

func TestJobSearchParseFailureDegrades(t *testing.T) {
	sandbox := &scriptedSandbox{
		fakeSandbox: fakeSandbox{session: ports.SandboxSession{ID: "sbx-j", Ready: true}},
		stdout:      "Traceback (most recent call last): boom",
	}
	svc := NewJobSearchService(sandbox, &memoryJobRepo{}, newMemoryRepo(), jobCfg())

	resp, err := svc.Search(context.Background(), JobSearchRequest{UserID: "u-1", Role: "Go Engineer"})

	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Contains(t, resp.Logs, "Failed to parse job search output; returning empty list.")
}

func TestJobSearchInsertFailureIsIsolated(t *testing.T) {
	sandbox := &scriptedSandbox{
		fakeSandbox: fakeSandbox{session: ports.SandboxSession{ID: "sbx-j", Ready: true}},
		stdout:      `[]`,
	}
	repo := &memoryJobRepo{err: errors.New("db down")}
	svc := NewJobSearchService(sandbox, repo, newMemoryRepo(), jobCfg())

	resp, err := svc.Search(context.Background(), JobSearchRequest{UserID: "u-1", Role: "Go Engineer"})

	require.NoError(t, err)
	assert.Empty(t, resp.JobMatchID)

	var sawSkip bool
	for _, line := range resp.Logs {
		if strings.Contains(line, "Job match insert skipped") {
			sawSkip = true
		}
	}
	assert.True(t, sawSkip)
}

func TestJobSearchRemoteFirecrawlSkipsService(t *testing.T) {
	cfg := jobCfg()
	cfg.FirecrawlAPIURL = "https://api.firecrawl.dev/v1/search"
	sandbox := &scriptedSandbox{
		fakeSandbox: fakeSandbox{session: ports.SandboxSession{ID: "sbx-j", Ready: true}},
		stdout:      `[]`,
	}
	svc := NewJobSearchService(sandbox, &memoryJobRepo{}, newMemoryRepo(), cfg)

	_, err := svc.Search(context.Background(), JobSearchRequest{UserID: "u-1", Role: "Go Engineer"})

	require.NoError(t, err)
	assert.Empty(t, sandbox.services, "a hosted firecrawl needs no in-sandbox container")
}

func TestAttachJobsWritesBlockOntoRoadmap(t *testing.T) {
	sandbox := &scriptedSandbox{
		fakeSandbox: fakeSandbox{session: ports.SandboxSession{ID: "sbx-j", Ready: true}},
		stdout:      `[{"title":"Go Engineer","company":"Acme","url":"https://jobs.acme/1"}]`,
	}
	jobRepo := &memoryJobRepo{}
	roadmaps := newMemoryRepo(&roadmap.Record{ID: "rm-1"})
	svc := NewJobSearchService(sandbox, jobRepo, roadmaps, jobCfg())

	resp, err := svc.AttachToRoadmap(context.Background(), "rm-1", JobSearchRequest{
		UserID: "u-1", Role: "Go Engineer", Location: "Berlin", Notes: "prefer remote-friendly teams",
	})

	require.NoError(t, err)
	assert.Equal(t, "Go Engineer", resp.Jobs.Role)
	assert.Equal(t, "prefer remote-friendly teams", resp.Jobs.Notes)
	require.Len(t, resp.Jobs.Results, 1)
	assert.False(t, resp.Jobs.UpdatedAt.IsZero())

	rec := roadmaps.records["rm-1"]
	require.NotNil(t, rec.Jobs)
	assert.Equal(t, "Go Engineer", rec.Jobs.Role)

	require.Len(t, jobRepo.inserted, 1)
	assert.Equal(t, "u-1", jobRepo.inserted[0].UserID)
}

func TestAttachJobsValidation(t *testing.T) {
	svc := NewJobSearchService(&scriptedSandbox{}, &memoryJobRepo{}, newMemoryRepo(), jobCfg())

	_, err := svc.AttachToRoadmap(context.Background(), "", JobSearchRequest{UserID: "u-1", Role: "r"})
	assert.Equal(t, apperrors.CodeValidationError, apperrors.GetCode(err))

	_, err = svc.AttachToRoadmap(context.Background(), "rm-1", JobSearchRequest{Role: "r"})
	assert.Equal(t, apperrors.CodeValidationError, apperrors.GetCode(err))
}

func TestAttachJobsRoadmapUpdateFailureIsIsolated(t *testing.T) {
	sandbox := &scriptedSandbox{
		fakeSandbox: fakeSandbox{session: ports.SandboxSession{ID: "sbx-j", Ready: true}},
		stdout:      `[]`,
	}
	roadmaps := newMemoryRepo()
	roadmaps.saveErr = errors.New("db down")
	svc := NewJobSearchService(sandbox, &memoryJobRepo{}, roadmaps, jobCfg())

	resp, err := svc.AttachToRoadmap(context.Background(), "rm-1", JobSearchRequest{UserID: "u-1", Role: "r"})

	require.NoError(t, err)
	var sawFailure bool
	for _, line := range resp.Logs {
		if strings.Contains(line, "Roadmap jobs update failed") {
			sawFailure = true
		}
	}
	assert.True(t, sawFailure)
}
