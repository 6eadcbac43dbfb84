package sandbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polypath/internal/logsink"
	"polypath/ports"
)

func newTestProvider(t *testing.T, handler http.Handler) *E2BProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p := NewE2BProvider("test-key")
	p.baseURL = srv.URL
	return p
}

func TestCreateReturnsReadySession(t *testing.T) {
	var gotKey, gotTemplate string
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/sandboxes", r.URL.Path)
		gotKey = r.Header.Get("X-API-Key")
		var req createSandboxRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotTemplate = req.TemplateID
		_ = json.NewEncoder(w).Encode(createSandboxResponse{SandboxID: "sbx-123"})
	}))
	sink := logsink.New()

	session := p.Create(context.Background(), "base", 60*time.Second, sink)

	assert.Equal(t, "sbx-123", session.ID)
	assert.True(t, session.Ready)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "base", gotTemplate)
	assert.Contains(t, sink.Lines(), "Sandbox created: sbx-123")
}

func TestCreateWithoutKeySkips(t *testing.T) {
	p := NewE2BProvider("")
	sink := logsink.New()

	session := p.Create(context.Background(), "base", time.Minute, sink)

	assert.Empty(t, session.ID)
	assert.False(t, session.Ready)
	assert.Contains(t, sink.Lines(), "E2B API key missing. Skipping sandbox.")
}

func TestCreateFailureDegrades(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	sink := logsink.New()

	session := p.Create(context.Background(), "base", time.Minute, sink)

	assert.False(t, session.Ready)
	require.Len(t, sink.Lines(), 1)
	assert.Contains(t, sink.Lines()[0], "Sandbox creation failed")
}

func TestRunOnNonReadySessionIsSynthetic(t *testing.T) {
	p := NewE2BProvider("test-key")

	result := p.Run(context.Background(), ports.SandboxSession{}, "ls", ports.RunOpts{})

	assert.Equal(t, -1, result.ExitCode)
	assert.Equal(t, "sandbox unavailable", result.Stderr)
}

func TestRunExecutesCommand(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sandboxes/sbx-9/commands", r.URL.Path)
		var req runCommandRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "uname -a", req.Command)
		assert.Equal(t, "root", req.User)
		_ = json.NewEncoder(w).Encode(runCommandResponse{ExitCode: 0, Stdout: "Linux"})
	}))

	result := p.Run(context.Background(), ports.SandboxSession{ID: "sbx-9", Ready: true}, "uname -a", ports.RunOpts{User: "root", Timeout: 10 * time.Second})

	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "Linux", result.Stdout)
}

func TestEnsureDockerSkipsInstallWhenPresent(t *testing.T) {
	var commands []string
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req runCommandRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		commands = append(commands, req.Command)
		_ = json.NewEncoder(w).Encode(runCommandResponse{ExitCode: 0, Stdout: "Docker version 26.0"})
	}))
	sink := logsink.New()

	ok := p.EnsureDocker(context.Background(), ports.SandboxSession{ID: "sbx-1", Ready: true}, sink)

	assert.True(t, ok)
	assert.Equal(t, []string{"docker --version"}, commands)
	assert.Contains(t, sink.Lines(), "Docker already present in sandbox.")
}

func TestEnsureDockerInstallsWhenMissing(t *testing.T) {
	var commands []string
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req runCommandRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		commands = append(commands, req.Command)
		if req.Command == "docker --version" {
			_ = json.NewEncoder(w).Encode(runCommandResponse{ExitCode: 127, Stderr: "docker: not found"})
			return
		}
		assert.Equal(t, "root", req.User)
		_ = json.NewEncoder(w).Encode(runCommandResponse{ExitCode: 0})
	}))
	sink := logsink.New()

	ok := p.EnsureDocker(context.Background(), ports.SandboxSession{ID: "sbx-1", Ready: true}, sink)

	assert.True(t, ok)
	require.Len(t, commands, 2)
	assert.Equal(t, "apt-get update && apt-get install -y docker.io", commands[1])
	assert.Contains(t, sink.Lines(), "Docker installed in sandbox.")
}

func TestEnsureServiceReusesRunningContainer(t *testing.T) {
	var commands []string
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req runCommandRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		commands = append(commands, req.Command)
		_ = json.NewEncoder(w).Encode(runCommandResponse{ExitCode: 0, Stdout: "Up 3 minutes\n"})
	}))
	sink := logsink.New()

	spec := ports.ServiceSpec{Name: "firecrawl", Image: "firecrawl/firecrawl", HostPort: "3002", TargetPort: "3002"}
	ok := p.EnsureService(context.Background(), ports.SandboxSession{ID: "sbx-1", Ready: true}, spec, sink)

	assert.True(t, ok)
	require.Len(t, commands, 1, "a running container should short-circuit the restart path")
	assert.Contains(t, sink.Lines(), "Service firecrawl already running.")
}

func TestCloseDeletesSandbox(t *testing.T) {
	var method, path string
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	sink := logsink.New()

	p.Close(context.Background(), ports.SandboxSession{ID: "sbx-del", Ready: true}, sink)

	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/sandboxes/sbx-del", path)
	assert.Contains(t, sink.Lines(), "Sandbox sbx-del closed.")
}
