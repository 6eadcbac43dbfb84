package app

import (
	"context"
	"sync"
	"time"

	"polypath/domain/scrape"
	"polypath/ports"
)

const sandboxCreateTimeout = 60 * time.Second

// AggregateResult is the combined outcome of one multi-source search pass.
type AggregateResult struct {
	Resources []scrape.Resource
	Sandbox   ports.SandboxSession
}

// Aggregator fans one query out to every search provider and the sandbox
// provisioner at once. Each branch settles independently; a panicking or
// failing branch contributes an empty result, never an error.
type Aggregator struct {
	providers []ports.SearchProvider
	sandbox   ports.SandboxProvider
	template  string
}

// NewAggregator creates an aggregator. Provider order is merge priority:
// earlier providers win positions in the merged list.
func NewAggregator(providers []ports.SearchProvider, sandbox ports.SandboxProvider, template string) *Aggregator {
	return &Aggregator{providers: providers, sandbox: sandbox, template: template}
}

// Aggregate runs all branches concurrently, merges provider results in
// priority order, and dedupes them by URL.
func (a *Aggregator) Aggregate(ctx context.Context, query scrape.Query, sink ports.Sink) AggregateResult {
	results := make([][]scrape.Resource, len(a.providers))
	var session ports.SandboxSession

	var wg sync.WaitGroup
	wg.Add(len(a.providers) + 1)

	for i, provider := range a.providers {
		go func(slot int, p ports.SearchProvider) {
			defer wg.Done()
			defer settle(sink, p.Name())
			results[slot] = p.Search(ctx, query, sink)
		}(i, provider)
	}

	go func() {
		defer wg.Done()
		defer settle(sink, "sandbox")
		sink.Appendf("Initializing sandbox...")
		s := a.sandbox.Create(ctx, a.template, sandboxCreateTimeout, sink)
		if s.Ready {
			s.DockerAvailable = a.sandbox.EnsureDocker(ctx, s, sink)
		}
		session = s
	}()

	wg.Wait()

	var merged []scrape.Resource
	for _, batch := range results {
		merged = append(merged, batch...)
	}
	unique := scrape.Dedupe(merged)
	sink.Appendf("Aggregated %d unique resources.", len(unique))

	return AggregateResult{Resources: unique, Sandbox: session}
}

// settle absorbs a branch panic so the other branches still complete.
func settle(sink ports.Sink, branch string) {
	if r := recover(); r != nil {
		sink.Appendf("%s branch panicked: %v", branch, r)
	}
}
