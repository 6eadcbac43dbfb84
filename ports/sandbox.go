package ports

import (
	"context"
	"time"
)

// SandboxSession is one ephemeral compute environment. An empty ID means no
// environment could be created; such a session is never ready and all
// commands against it are no-ops.
type SandboxSession struct {
	ID              string
	Ready           bool
	DockerAvailable bool
}

// CommandResult reports one command run inside a sandbox.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// RunOpts carries per-command options. Timeout budgets are scaled to the
// expected operation cost by the caller; the provider does not retry.
type RunOpts struct {
	Timeout time.Duration
	User    string
}

// ServiceSpec describes a docker-backed service to bootstrap inside a
// sandbox: a named container mapping HostPort to TargetPort.
type ServiceSpec struct {
	Name       string
	Image      string
	HostPort   string
	TargetPort string
}

// SandboxProvider manages ephemeral sandboxed execution environments.
//
// Create never returns an error: provisioning failures yield a non-ready
// session and a diagnostic sink line. Run against a non-ready session
// returns a synthetic non-zero result without performing any I/O. Close is
// best-effort and swallows failures.
type SandboxProvider interface {
	Create(ctx context.Context, template string, timeout time.Duration, sink Sink) SandboxSession
	Connect(ctx context.Context, id string) (SandboxSession, error)
	Run(ctx context.Context, session SandboxSession, command string, opts RunOpts) CommandResult
	EnsureDocker(ctx context.Context, session SandboxSession, sink Sink) bool
	EnsureService(ctx context.Context, session SandboxSession, spec ServiceSpec, sink Sink) bool
	Close(ctx context.Context, session SandboxSession, sink Sink)
}
