package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"polypath/ports"
)

const (
	dockerProbeTimeout   = 10 * time.Second
	dockerInstallTimeout = 180 * time.Second
	serviceStartTimeout  = 120 * time.Second
)

// E2BProvider drives remote E2B sandboxes over their HTTP API. Every method
// degrades instead of failing: a missing key or a dead sandbox yields a
// non-ready session and synthetic command results, never an error that could
// abort a realization run.
type E2BProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewE2BProvider(apiKey string) *E2BProvider {
	return &E2BProvider{
		apiKey:  apiKey,
		baseURL: "https://api.e2b.dev",
		client:  &http.Client{Timeout: 200 * time.Second},
	}
}

type createSandboxRequest struct {
	TemplateID string `json:"templateID"`
	TimeoutMs  int64  `json:"timeoutMs"`
}

type createSandboxResponse struct {
	SandboxID string `json:"sandboxID"`
}

type runCommandRequest struct {
	Command   string `json:"command"`
	User      string `json:"user,omitempty"`
	TimeoutMs int64  `json:"timeoutMs,omitempty"`
}

type runCommandResponse struct {
	ExitCode int    `json:"exitCode"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// Create provisions a sandbox from the given template. On any failure it
// returns a zero-ID session the rest of the pipeline treats as absent.
func (p *E2BProvider) Create(ctx context.Context, template string, timeout time.Duration, sink ports.Sink) ports.SandboxSession {
	if p.apiKey == "" {
		sink.Appendf("E2B API key missing. Skipping sandbox.")
		return ports.SandboxSession{}
	}

	body, _ := json.Marshal(createSandboxRequest{TemplateID: template, TimeoutMs: timeout.Milliseconds()})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/sandboxes", bytes.NewReader(body))
	if err != nil {
		sink.Appendf("Sandbox creation failed: %v", err)
		return ports.SandboxSession{}
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		sink.Appendf("Sandbox creation failed: %v", err)
		return ports.SandboxSession{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		sink.Appendf("Sandbox creation failed: status %d: %s", resp.StatusCode, string(snippet))
		return ports.SandboxSession{}
	}

	var created createSandboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil || created.SandboxID == "" {
		sink.Appendf("Sandbox creation failed: malformed response")
		return ports.SandboxSession{}
	}

	sink.Appendf("Sandbox created: %s", created.SandboxID)
	return ports.SandboxSession{ID: created.SandboxID, Ready: true}
}

// Connect re-attaches to an existing sandbox by ID. Used by the execute
// endpoint, which runs commands in sandboxes created during realization.
func (p *E2BProvider) Connect(ctx context.Context, id string) (ports.SandboxSession, error) {
	if p.apiKey == "" {
		return ports.SandboxSession{}, fmt.Errorf("e2b api key not configured")
	}
	if id == "" {
		return ports.SandboxSession{}, fmt.Errorf("sandbox id is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/sandboxes/"+id, nil)
	if err != nil {
		return ports.SandboxSession{}, err
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return ports.SandboxSession{}, fmt.Errorf("connect to sandbox %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ports.SandboxSession{}, fmt.Errorf("sandbox %s not reachable: status %d", id, resp.StatusCode)
	}
	return ports.SandboxSession{ID: id, Ready: true}, nil
}

// Run executes a shell command inside the sandbox. A non-ready session gets
// a synthetic result instead of an HTTP call.
func (p *E2BProvider) Run(ctx context.Context, session ports.SandboxSession, command string, opts ports.RunOpts) ports.CommandResult {
	if !session.Ready || session.ID == "" {
		return ports.CommandResult{ExitCode: -1, Stderr: "sandbox unavailable"}
	}

	body, _ := json.Marshal(runCommandRequest{
		Command:   command,
		User:      opts.User,
		TimeoutMs: opts.Timeout.Milliseconds(),
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/sandboxes/"+session.ID+"/commands", bytes.NewReader(body))
	if err != nil {
		return ports.CommandResult{ExitCode: -1, Stderr: err.Error()}
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return ports.CommandResult{ExitCode: -1, Stderr: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return ports.CommandResult{ExitCode: -1, Stderr: fmt.Sprintf("status %d: %s", resp.StatusCode, string(snippet))}
	}

	var result runCommandResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ports.CommandResult{ExitCode: -1, Stderr: "malformed command response"}
	}
	return ports.CommandResult{ExitCode: result.ExitCode, Stdout: result.Stdout, Stderr: result.Stderr}
}

// EnsureDocker probes for a docker binary and installs one when the probe
// fails. Installation runs as root with a generous timeout since apt on a
// cold sandbox is slow.
func (p *E2BProvider) EnsureDocker(ctx context.Context, session ports.SandboxSession, sink ports.Sink) bool {
	if !session.Ready {
		return false
	}

	probe := p.Run(ctx, session, "docker --version", ports.RunOpts{Timeout: dockerProbeTimeout})
	if probe.ExitCode == 0 {
		sink.Appendf("Docker already present in sandbox.")
		return true
	}

	sink.Appendf("Docker not found. Installing...")
	install := p.Run(ctx, session, "apt-get update && apt-get install -y docker.io", ports.RunOpts{
		User:    "root",
		Timeout: dockerInstallTimeout,
	})
	if install.ExitCode != 0 {
		sink.Appendf("Docker install failed: %s", install.Stderr)
		return false
	}
	sink.Appendf("Docker installed in sandbox.")
	return true
}

// EnsureService makes a named docker container run inside the sandbox,
// replacing any stopped leftover with the same name.
func (p *E2BProvider) EnsureService(ctx context.Context, session ports.SandboxSession, spec ports.ServiceSpec, sink ports.Sink) bool {
	if !session.Ready {
		return false
	}

	ps := p.Run(ctx, session, fmt.Sprintf("docker ps --filter name=%s --format '{{.Status}}'", spec.Name), ports.RunOpts{Timeout: dockerProbeTimeout})
	if ps.ExitCode == 0 && containsUp(ps.Stdout) {
		sink.Appendf("Service %s already running.", spec.Name)
		return true
	}

	// Stale container with the same name blocks docker run.
	p.Run(ctx, session, "docker rm -f "+spec.Name, ports.RunOpts{Timeout: dockerProbeTimeout})

	run := p.Run(ctx, session, fmt.Sprintf("docker run -d --name %s -p %s:%s %s", spec.Name, spec.HostPort, spec.TargetPort, spec.Image), ports.RunOpts{
		Timeout: serviceStartTimeout,
	})
	if run.ExitCode != 0 {
		sink.Appendf("Failed to start service %s: %s", spec.Name, run.Stderr)
		return false
	}
	sink.Appendf("Service %s started on port %s.", spec.Name, spec.HostPort)
	return true
}

// Close tears the sandbox down. Best effort only.
func (p *E2BProvider) Close(ctx context.Context, session ports.SandboxSession, sink ports.Sink) {
	if session.ID == "" || p.apiKey == "" {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, p.baseURL+"/sandboxes/"+session.ID, nil)
	if err != nil {
		return
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		sink.Appendf("Sandbox close failed: %v", err)
		return
	}
	defer resp.Body.Close()
	sink.Appendf("Sandbox %s closed.", session.ID)
}

func (p *E2BProvider) setHeaders(req *http.Request) {
	req.Header.Set("X-API-Key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

func containsUp(status string) bool {
	return strings.HasPrefix(strings.TrimSpace(status), "Up")
}
