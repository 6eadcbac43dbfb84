// Package nullstore provides no-op repositories used when DATABASE_URL is
// not configured. Reads report NOT_FOUND or empty listings; writes fail
// with a database error so best-effort callers log the skip.
package nullstore

import (
	"context"

	"polypath/domain/jobs"
	"polypath/domain/resume"
	"polypath/domain/roadmap"
	apperrors "polypath/internal/errors"
	"polypath/ports"
)

func disabled() error {
	return apperrors.DatabaseError("persistence disabled", nil)
}

// RoadmapRepository is the no-persistence RoadmapRepository.
type RoadmapRepository struct{}

func NewRoadmapRepository() ports.RoadmapRepository { return RoadmapRepository{} }

func (RoadmapRepository) Insert(_ context.Context, _ *roadmap.Record) error { return disabled() }

func (RoadmapRepository) GetByID(_ context.Context, _ string) (*roadmap.Record, error) {
	return nil, apperrors.NotFound("roadmap")
}

func (RoadmapRepository) SaveRealization(_ context.Context, _ string, _ ports.RealizationUpdate) error {
	return disabled()
}

func (RoadmapRepository) UpdateSelection(_ context.Context, _, _ string, _ roadmap.Roadmap) error {
	return disabled()
}

func (RoadmapRepository) UpdateRefinement(_ context.Context, _, _ string, _ []roadmap.PersonaRoadmap, _ roadmap.Roadmap) error {
	return disabled()
}

func (RoadmapRepository) UpdateJobs(_ context.Context, _ string, _ jobs.Block) error {
	return disabled()
}

func (RoadmapRepository) ListByUser(_ context.Context, _ string) ([]ports.RecordSummary, error) {
	return []ports.RecordSummary{}, nil
}

// JobMatchRepository is the no-persistence JobMatchRepository.
type JobMatchRepository struct{}

func NewJobMatchRepository() ports.JobMatchRepository { return JobMatchRepository{} }

func (JobMatchRepository) Insert(_ context.Context, _ *jobs.Match) (string, error) {
	return "", disabled()
}

// ResumeRepository is the no-persistence ResumeRepository.
type ResumeRepository struct{}

func NewResumeRepository() ports.ResumeRepository { return ResumeRepository{} }

func (ResumeRepository) Insert(_ context.Context, _ *resume.Record) (string, error) {
	return "", disabled()
}

func (ResumeRepository) LatestByUser(_ context.Context, _ string) (*resume.Record, error) {
	return nil, apperrors.NotFound("resume")
}
