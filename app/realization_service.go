package app

import (
	"context"
	"fmt"
	"log"

	"polypath/domain/roadmap"
	"polypath/domain/scrape"
	apperrors "polypath/internal/errors"
	"polypath/internal/logsink"
	"polypath/ports"
)

const defaultTargetWeeks = 4

// RealizeRequest asks for the realization of one drafted strategy.
type RealizeRequest struct {
	RoadmapID string                  `json:"roadmapId"`
	Strategy  roadmap.Strategy        `json:"strategy"`
	Config    *roadmap.LearnerProfile `json:"config,omitempty"`
}

// RealizeResponse is the full realization outcome. Success is true whenever
// the pipeline ran to completion, even if every external branch degraded.
type RealizeResponse struct {
	Success         bool                     `json:"success"`
	SandboxID       string                   `json:"sandboxId,omitempty"`
	DockerOK        bool                     `json:"dockerOk"`
	Logs            []string                 `json:"logs"`
	FinalRoadmap    roadmap.Roadmap          `json:"final_roadmap"`
	AgentRoadmaps   []roadmap.PersonaRoadmap `json:"agent_roadmaps"`
	SelectedAgentID string                   `json:"selected_agent_id"`
}

// SelectAgentResponse reports an agent selection switch.
type SelectAgentResponse struct {
	Success      bool            `json:"success"`
	FinalRoadmap roadmap.Roadmap `json:"final_roadmap"`
	AgentID      string          `json:"agentId"`
}

// RefineResponse carries the refined roadmap and the updated agent set.
type RefineResponse struct {
	RefinedRoadmap roadmap.Roadmap          `json:"refined_roadmap"`
	AgentRoadmaps  []roadmap.PersonaRoadmap `json:"agent_roadmaps"`
	AgentID        string                   `json:"agentId"`
}

// RealizationService orchestrates the realization pipeline: multi-source
// search, persona generation, and record write-back.
type RealizationService struct {
	repo       ports.RoadmapRepository
	aggregator *Aggregator
	engine     *PersonaEngine
	generator  ports.Generator
}

// NewRealizationService creates a realization service
func NewRealizationService(repo ports.RoadmapRepository, aggregator *Aggregator, engine *PersonaEngine, generator ports.Generator) *RealizationService {
	return &RealizationService{
		repo:       repo,
		aggregator: aggregator,
		engine:     engine,
		generator:  generator,
	}
}

// Realize runs the full pipeline for one strategy. External failures degrade
// branch by branch; only invalid input produces an error.
func (s *RealizationService) Realize(ctx context.Context, req RealizeRequest) (*RealizeResponse, error) {
	if req.RoadmapID == "" || req.Strategy.Name == "" {
		return nil, apperrors.ValidationError("roadmapId and strategy are required")
	}

	sink := logsink.New()
	sink.Appendf("> Strategy Selected: %s", req.Strategy.Name)

	profile := s.resolveProfile(ctx, req)
	targetWeeks := resolveTargetWeeks(profile, req.Strategy)

	query := scrape.Query{
		Text:  fmt.Sprintf("%s %s learning resources tutorials", profile.Topic, profile.Level),
		Topic: profile.Topic,
	}
	sink.Appendf("> Starting Multi-Source Search for: %q", query.Text)

	aggregated := s.aggregator.Aggregate(ctx, query, sink)

	agents := s.engine.GenerateAll(ctx, profile, req.Strategy, aggregated.Resources, targetWeeks, sink)

	var final roadmap.Roadmap
	var selectedAgentID string
	if len(agents) > 0 {
		final = agents[0].Roadmap
		selectedAgentID = agents[0].PersonaID
	} else {
		final = roadmap.Fallback(profile.Topic, req.Strategy.Desc, targetWeeks)
	}

	// Persistence is an isolated outcome: a failed write never fails the
	// realization itself.
	if err := s.repo.SaveRealization(ctx, req.RoadmapID, ports.RealizationUpdate{
		SelectedStrategy: req.Strategy,
		SandboxID:        aggregated.Sandbox.ID,
		Logs:             sink.Lines(),
		Status:           roadmap.StatusReady,
		FinalRoadmap:     final,
		AgentRoadmaps:    agents,
		SelectedAgentID:  selectedAgentID,
	}); err != nil {
		sink.Appendf("Persisting realization failed: %v", err)
		log.Printf("[Realization] save failed for %s: %v", req.RoadmapID, err)
	}

	return &RealizeResponse{
		Success:         true,
		SandboxID:       aggregated.Sandbox.ID,
		DockerOK:        aggregated.Sandbox.DockerAvailable,
		Logs:            sink.Lines(),
		FinalRoadmap:    final,
		AgentRoadmaps:   agents,
		SelectedAgentID: selectedAgentID,
	}, nil
}

// resolveProfile prefers the request config, then the stored one, then
// defaults. A failed record lookup is treated as absence.
func (s *RealizationService) resolveProfile(ctx context.Context, req RealizeRequest) roadmap.LearnerProfile {
	profile := roadmap.LearnerProfile{}
	if req.Config != nil {
		profile = *req.Config
	} else if rec, err := s.repo.GetByID(ctx, req.RoadmapID); err == nil {
		profile = rec.Config
	}
	if profile.Topic == "" {
		profile.Topic = "Programming"
	}
	if profile.Level == "" {
		profile.Level = "Beginner"
	}
	return profile
}

func resolveTargetWeeks(profile roadmap.LearnerProfile, strategy roadmap.Strategy) int {
	if profile.TargetWeeks > 0 {
		return profile.TargetWeeks
	}
	if strategy.Weeks > 0 {
		return strategy.Weeks
	}
	return defaultTargetWeeks
}

// SelectAgent switches the selected persona for a record. Both the record
// and the agent must exist; the write touches only the selection pointer and
// the mirrored final roadmap.
func (s *RealizationService) SelectAgent(ctx context.Context, roadmapID, agentID string) (*SelectAgentResponse, error) {
	if roadmapID == "" || agentID == "" {
		return nil, apperrors.ValidationError("roadmapId and agentId are required")
	}

	rec, err := s.repo.GetByID(ctx, roadmapID)
	if err != nil {
		return nil, err
	}

	target, ok := rec.FindAgent(agentID)
	if !ok {
		return nil, apperrors.NotFound("agent roadmap")
	}

	if err := s.repo.UpdateSelection(ctx, roadmapID, agentID, target.Roadmap); err != nil {
		return nil, err
	}

	return &SelectAgentResponse{Success: true, FinalRoadmap: target.Roadmap, AgentID: agentID}, nil
}

// Refine rewrites one agent's roadmap according to a user instruction. A
// failed or malformed generation leaves the record untouched and returns the
// prior roadmap.
func (s *RealizationService) Refine(ctx context.Context, roadmapID, agentID, prompt string) (*RefineResponse, error) {
	if roadmapID == "" || agentID == "" || prompt == "" {
		return nil, apperrors.ValidationError("roadmapId, agentId and prompt are required")
	}

	rec, err := s.repo.GetByID(ctx, roadmapID)
	if err != nil {
		return nil, err
	}

	// The named agent is preferred; an unknown ID falls back to the first
	// agent, and a record without agents refines the final roadmap.
	target, ok := rec.FindAgent(agentID)
	if !ok && len(rec.AgentRoadmaps) > 0 {
		target = rec.AgentRoadmaps[0]
		ok = true
	}

	var base roadmap.Roadmap
	switch {
	case ok:
		base = target.Roadmap
	case rec.FinalRoadmap != nil:
		base = *rec.FinalRoadmap
	default:
		return nil, apperrors.ValidationError("no roadmap available to refine")
	}

	var strategy roadmap.Strategy
	if rec.SelectedStrategy != nil {
		strategy = *rec.SelectedStrategy
	}

	refined, changed := s.generateRefinement(ctx, prompt, rec.Config, strategy, base)
	if !changed {
		return &RefineResponse{RefinedRoadmap: base, AgentRoadmaps: rec.AgentRoadmaps, AgentID: agentID}, nil
	}

	updated := make([]roadmap.PersonaRoadmap, len(rec.AgentRoadmaps))
	copy(updated, rec.AgentRoadmaps)
	for i := range updated {
		if updated[i].PersonaID == agentID {
			updated[i].Roadmap = refined
		}
	}

	if err := s.repo.UpdateRefinement(ctx, roadmapID, agentID, updated, refined); err != nil {
		log.Printf("[Realization] refine save failed for %s: %v", roadmapID, err)
	}

	return &RefineResponse{RefinedRoadmap: refined, AgentRoadmaps: updated, AgentID: agentID}, nil
}

// generateRefinement returns the refined roadmap and whether the generation
// produced a usable replacement.
func (s *RealizationService) generateRefinement(ctx context.Context, prompt string, profile roadmap.LearnerProfile, strategy roadmap.Strategy, base roadmap.Roadmap) (roadmap.Roadmap, bool) {
	raw, err := s.generator.GenerateJSON(ctx, buildRefinePrompt(prompt, profile, strategy, base))
	if err != nil {
		log.Printf("[Realization] refinement generation failed: %v", err)
		return base, false
	}

	parsed := roadmap.ParseShape(raw)
	if !parsed.Valid {
		log.Printf("[Realization] refinement output rejected: %s", parsed.Reason)
		return base, false
	}
	return parsed.Roadmap, true
}
