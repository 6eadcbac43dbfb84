package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polypath/adapters/llm"
	"polypath/app"
	"polypath/domain/jobs"
	"polypath/domain/resume"
	"polypath/domain/roadmap"
	"polypath/internal/config"
	apperrors "polypath/internal/errors"
	"polypath/ports"
)

type stubRepo struct {
	records map[string]*roadmap.Record
}

func (s *stubRepo) Insert(_ context.Context, rec *roadmap.Record) error {
	s.records[rec.ID] = rec
	return nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*roadmap.Record, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, apperrors.NotFound("roadmap")
	}
	return rec, nil
}

func (s *stubRepo) SaveRealization(_ context.Context, _ string, _ ports.RealizationUpdate) error {
	return nil
}

func (s *stubRepo) UpdateSelection(_ context.Context, id, agentID string, final roadmap.Roadmap) error {
	rec := s.records[id]
	rec.SelectedAgentID = agentID
	rec.FinalRoadmap = &final
	return nil
}

func (s *stubRepo) UpdateRefinement(_ context.Context, _, _ string, _ []roadmap.PersonaRoadmap, _ roadmap.Roadmap) error {
	return nil
}

func (s *stubRepo) UpdateJobs(_ context.Context, id string, block jobs.Block) error {
	rec, ok := s.records[id]
	if !ok {
		return apperrors.NotFound("roadmap")
	}
	rec.Jobs = &block
	return nil
}

func (s *stubRepo) ListByUser(_ context.Context, userID string) ([]ports.RecordSummary, error) {
	var out []ports.RecordSummary
	for _, rec := range s.records {
		if rec.Config.UserID == userID {
			out = append(out, ports.RecordSummary{ID: rec.ID, Config: rec.Config, Status: rec.Status})
		}
	}
	return out, nil
}

type stubJobRepo struct{}

func (stubJobRepo) Insert(_ context.Context, _ *jobs.Match) (string, error) { return "jm-1", nil }

type stubResumeRepo struct {
	latest *resume.Record
}

func (s *stubResumeRepo) Insert(_ context.Context, _ *resume.Record) (string, error) {
	return "res-1", nil
}

func (s *stubResumeRepo) LatestByUser(_ context.Context, _ string) (*resume.Record, error) {
	if s.latest == nil {
		return nil, apperrors.NotFound("resume")
	}
	return s.latest, nil
}

type stubSandbox struct {
	connectErr error
	result     ports.CommandResult
}

func (s *stubSandbox) Create(_ context.Context, _ string, _ time.Duration, _ ports.Sink) ports.SandboxSession {
	return ports.SandboxSession{}
}

func (s *stubSandbox) Connect(_ context.Context, id string) (ports.SandboxSession, error) {
	if s.connectErr != nil {
		return ports.SandboxSession{}, s.connectErr
	}
	return ports.SandboxSession{ID: id, Ready: true}, nil
}

func (s *stubSandbox) Run(_ context.Context, _ ports.SandboxSession, _ string, _ ports.RunOpts) ports.CommandResult {
	return s.result
}

func (s *stubSandbox) EnsureDocker(_ context.Context, _ ports.SandboxSession, _ ports.Sink) bool {
	return false
}

func (s *stubSandbox) EnsureService(_ context.Context, _ ports.SandboxSession, _ ports.ServiceSpec, _ ports.Sink) bool {
	return false
}

func (s *stubSandbox) Close(_ context.Context, _ ports.SandboxSession, _ ports.Sink) {}

func newTestServer(repo *stubRepo, gen ports.Generator, sandbox ports.SandboxProvider) *Server {
	cfg := config.SandboxConfig{Template: "base", FirecrawlPort: "3002"}
	agg := app.NewAggregator(nil, sandbox, "base")
	realize := app.NewRealizationService(repo, agg, app.NewPersonaEngine(gen, 2), gen)
	draft := app.NewDraftService(gen, repo)
	jobSearch := app.NewJobSearchService(sandbox, stubJobRepo{}, repo, cfg)
	resumeSvc := app.NewResumeService(sandbox, gen, &stubResumeRepo{}, repo, cfg)
	return NewServer(draft, realize, jobSearch, resumeSvc, repo, sandbox)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func seededRepo() *stubRepo {
	return &stubRepo{records: map[string]*roadmap.Record{
		"rm-1": {
			ID:     "rm-1",
			Config: roadmap.LearnerProfile{Topic: "Go", Level: "Beginner", UserID: "u-1"},
			Status: roadmap.StatusReady,
			AgentRoadmaps: []roadmap.PersonaRoadmap{
				{PersonaID: "systems-architect", PersonaName: "Systems Architect", Roadmap: roadmap.Fallback("Go", "a", 4)},
				{PersonaID: "project-hacker", PersonaName: "Project Hacker", Roadmap: roadmap.Fallback("Go", "b", 4)},
			},
		},
	}}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(seededRepo(), llm.NewMockClient(), &stubSandbox{})

	rr := doJSON(t, srv.Router(), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRealizeEndpoint(t *testing.T) {
	gen := llm.NewMockClient([]byte(`{"title":"Go Roadmap","summary":"s","weeks":[{"week":1,"focus":"f","goals":["g"],"resources":[]}]}`))
	srv := newTestServer(seededRepo(), gen, &stubSandbox{})

	rr := doJSON(t, srv.Router(), http.MethodPost, "/api/realize", map[string]any{
		"roadmapId": "rm-1",
		"strategy":  map[string]any{"name": "Sprint", "desc": "fast", "weeks": 2},
	})

	require.Equal(t, http.StatusOK, rr.Code)
	var resp app.RealizeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.AgentRoadmaps, 4)
	assert.Equal(t, "systems-architect", resp.SelectedAgentID)
	assert.Len(t, resp.FinalRoadmap.Weeks, 2)
}

func TestRealizeEndpointValidation(t *testing.T) {
	srv := newTestServer(seededRepo(), llm.NewMockClient(), &stubSandbox{})

	rr := doJSON(t, srv.Router(), http.MethodPost, "/api/realize", map[string]any{"roadmapId": "rm-1"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSelectAgentEndpoint(t *testing.T) {
	repo := seededRepo()
	srv := newTestServer(repo, llm.NewMockClient(), &stubSandbox{})

	rr := doJSON(t, srv.Router(), http.MethodPost, "/api/roadmaps/rm-1/select-agent", map[string]string{"agentId": "project-hacker"})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "project-hacker", repo.records["rm-1"].SelectedAgentID)

	rr = doJSON(t, srv.Router(), http.MethodPost, "/api/roadmaps/rm-1/select-agent", map[string]string{"agentId": "ghost"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetRoadmapEndpoint(t *testing.T) {
	srv := newTestServer(seededRepo(), llm.NewMockClient(), &stubSandbox{})

	rr := doJSON(t, srv.Router(), http.MethodGet, "/api/roadmaps/rm-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "rm-1", body["id"])
	assert.Equal(t, roadmap.StatusReady, body["status"])

	rr = doJSON(t, srv.Router(), http.MethodGet, "/api/roadmaps/rm-missing", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListRoadmapsEndpoint(t *testing.T) {
	srv := newTestServer(seededRepo(), llm.NewMockClient(), &stubSandbox{})

	rr := doJSON(t, srv.Router(), http.MethodGet, "/api/my-roadmaps?userId=u-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Roadmaps []ports.RecordSummary `json:"roadmaps"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Roadmaps, 1)
	assert.Equal(t, "rm-1", body.Roadmaps[0].ID)

	rr = doJSON(t, srv.Router(), http.MethodGet, "/api/my-roadmaps", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExecuteEndpoint(t *testing.T) {
	sandbox := &stubSandbox{result: ports.CommandResult{ExitCode: 0, Stdout: "hello\n"}}
	srv := newTestServer(seededRepo(), llm.NewMockClient(), sandbox)

	rr := doJSON(t, srv.Router(), http.MethodPost, "/api/execute", map[string]string{
		"sandboxId": "sbx-1", "code": "echo hello",
	})

	require.Equal(t, http.StatusOK, rr.Code)
	var resp executeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "hello\n", resp.Output)
	assert.Equal(t, 0, resp.ExitCode)
}

func TestExecuteEndpointValidation(t *testing.T) {
	srv := newTestServer(seededRepo(), llm.NewMockClient(), &stubSandbox{})

	rr := doJSON(t, srv.Router(), http.MethodPost, "/api/execute", map[string]string{"sandboxId": "sbx-1"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDraftEndpoint(t *testing.T) {
	gen := llm.NewMockClient([]byte(`[{"name":"Sprint","weeks":4,"desc":"d","demoUrl":"https://github.com/u/d"}]`))
	repo := seededRepo()
	srv := newTestServer(repo, gen, &stubSandbox{})

	rr := doJSON(t, srv.Router(), http.MethodPost, "/api/draft", map[string]any{
		"topic": "Go", "level": "Beginner", "style": "hands-on", "hours": 8,
	})

	require.Equal(t, http.StatusOK, rr.Code)
	var resp app.DraftResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Strategies, 1)
	require.NotEmpty(t, resp.RoadmapID)
	assert.Contains(t, repo.records, resp.RoadmapID)
}

func TestJobSearchEndpointValidation(t *testing.T) {
	srv := newTestServer(seededRepo(), llm.NewMockClient(), &stubSandbox{})

	rr := doJSON(t, srv.Router(), http.MethodPost, "/api/jobs/search", map[string]string{"role": "Go Engineer"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRoadmapJobsEndpointValidation(t *testing.T) {
	srv := newTestServer(seededRepo(), llm.NewMockClient(), &stubSandbox{})

	rr := doJSON(t, srv.Router(), http.MethodPost, "/api/roadmaps/rm-1/jobs", map[string]string{"userId": "u-1"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestResumeUploadEndpointValidation(t *testing.T) {
	srv := newTestServer(seededRepo(), llm.NewMockClient(), &stubSandbox{})

	rr := doJSON(t, srv.Router(), http.MethodPost, "/api/resume/upload", map[string]string{"userId": "u-1"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestResumeGenerateEndpointWithoutStoredResume(t *testing.T) {
	srv := newTestServer(seededRepo(), llm.NewMockClient(), &stubSandbox{})

	rr := doJSON(t, srv.Router(), http.MethodPost, "/api/resume/generate", map[string]string{
		"userId": "u-1", "role": "Go Engineer",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
