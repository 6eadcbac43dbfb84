package app

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"polypath/domain/roadmap"
	apperrors "polypath/internal/errors"
	"polypath/ports"
)

// DraftRequest is the intake payload for strategy drafting.
type DraftRequest struct {
	roadmap.LearnerProfile
}

// DraftResponse carries the drafted strategies and the record they were
// stored under. RoadmapID is empty when the insert failed.
type DraftResponse struct {
	RoadmapID  string             `json:"roadmapId,omitempty"`
	Strategies []roadmap.Strategy `json:"strategies"`
}

// DraftService turns a learner profile into candidate strategies and opens a
// draft record for them.
type DraftService struct {
	generator ports.Generator
	repo      ports.RoadmapRepository
}

// NewDraftService creates a draft service
func NewDraftService(generator ports.Generator, repo ports.RoadmapRepository) *DraftService {
	return &DraftService{generator: generator, repo: repo}
}

// Draft generates strategies for a profile. Generation failure is a hard
// error here, unlike realization: there is nothing to fall back to before a
// record exists.
func (s *DraftService) Draft(ctx context.Context, req DraftRequest) (*DraftResponse, error) {
	if req.Topic == "" || req.Level == "" || req.Style == "" || req.Hours <= 0 {
		return nil, apperrors.ValidationError("topic, level, style and hours are required")
	}

	profile := req.LearnerProfile
	if profile.Language == "" {
		profile.Language = profile.Topic
	}

	raw, err := s.generator.GenerateJSON(ctx, buildDraftPrompt(profile))
	if err != nil {
		return nil, err
	}

	var strategies []roadmap.Strategy
	if err := json.Unmarshal(raw, &strategies); err != nil {
		return nil, apperrors.ExternalServiceError("gemini", err)
	}
	if len(strategies) == 0 {
		return nil, apperrors.ValidationError("generation returned no strategies")
	}

	rec := &roadmap.Record{
		ID:         uuid.NewString(),
		Config:     profile,
		Strategies: strategies,
		Status:     roadmap.StatusDraft,
	}

	// The insert is best effort: a missing table or dead database still
	// lets the caller see their strategies.
	roadmapID := rec.ID
	if err := s.repo.Insert(ctx, rec); err != nil {
		log.Printf("[Draft] insert skipped: %v", err)
		roadmapID = ""
	}

	return &DraftResponse{RoadmapID: roadmapID, Strategies: strategies}, nil
}
