package app

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"polypath/domain/roadmap"
	"polypath/domain/scrape"
	"polypath/internal/personas"
	"polypath/ports"
)

const (
	// defaultPersonaConcurrency keeps in-flight LLM calls below the roster
	// size so one realization cannot burst the provider's rate limits.
	defaultPersonaConcurrency = 2

	maxPromptResources = 15
)

// PersonaEngine generates one roadmap per persona through the LLM. Every
// generation settles: a failed or malformed generation becomes a fallback
// roadmap so the realization always yields a full persona set.
type PersonaEngine struct {
	generator ports.Generator
	personas  []personas.Persona
	sem       *semaphore.Weighted
}

func NewPersonaEngine(generator ports.Generator, concurrency int) *PersonaEngine {
	if concurrency < 1 {
		concurrency = defaultPersonaConcurrency
	}
	return &PersonaEngine{
		generator: generator,
		personas:  personas.Default(),
		sem:       semaphore.NewWeighted(int64(concurrency)),
	}
}

// GenerateAll produces a roadmap for every persona concurrently. The result
// order matches the persona roster regardless of completion order.
func (e *PersonaEngine) GenerateAll(ctx context.Context, profile roadmap.LearnerProfile, strategy roadmap.Strategy, resources []scrape.Resource, targetWeeks int, sink ports.Sink) []roadmap.PersonaRoadmap {
	if len(resources) > maxPromptResources {
		resources = resources[:maxPromptResources]
	}

	results := make([]roadmap.PersonaRoadmap, len(e.personas))
	var wg sync.WaitGroup
	wg.Add(len(e.personas))

	for i, p := range e.personas {
		go func(slot int, p personas.Persona) {
			defer wg.Done()
			results[slot] = e.generateOne(ctx, p, profile, strategy, resources, targetWeeks, sink)
		}(i, p)
	}

	wg.Wait()
	return results
}

// generateOne never fails: any error along the way degrades to the
// deterministic fallback with the same week count.
func (e *PersonaEngine) generateOne(ctx context.Context, p personas.Persona, profile roadmap.LearnerProfile, strategy roadmap.Strategy, resources []scrape.Resource, targetWeeks int, sink ports.Sink) roadmap.PersonaRoadmap {
	out := roadmap.PersonaRoadmap{PersonaID: p.ID, PersonaName: p.Name}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		sink.Appendf("[%s] generation cancelled: %v", p.ID, err)
		out.Roadmap = roadmap.Fallback(profile.Topic, strategy.Desc, targetWeeks)
		return out
	}
	defer e.sem.Release(1)

	sink.Appendf("[%s] generating roadmap...", p.ID)

	raw, err := e.generator.GenerateJSON(ctx, buildPersonaPrompt(p, profile, strategy, resources, targetWeeks))
	if err != nil {
		sink.Appendf("[%s] generation failed: %v", p.ID, err)
		out.Roadmap = roadmap.Fallback(profile.Topic, strategy.Desc, targetWeeks)
		return out
	}

	validated := roadmap.Validate(raw, targetWeeks)
	if !validated.Valid {
		sink.Appendf("[%s] rejected output: %s", p.ID, validated.Reason)
		out.Roadmap = roadmap.Fallback(profile.Topic, strategy.Desc, targetWeeks)
		return out
	}

	sink.Appendf("[%s] roadmap ready.", p.ID)
	out.Roadmap = validated.Roadmap
	return out
}
