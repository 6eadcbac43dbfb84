package ports

import (
	"context"
	"time"

	"polypath/domain/jobs"
	"polypath/domain/resume"
	"polypath/domain/roadmap"
)

// RealizationUpdate carries the field-level write applied to a record when a
// realization completes. Writes are last-writer-wins per field; there is no
// optimistic concurrency control on the record.
type RealizationUpdate struct {
	SelectedStrategy roadmap.Strategy
	SandboxID        string
	Logs             []string
	Status           string
	FinalRoadmap     roadmap.Roadmap
	AgentRoadmaps    []roadmap.PersonaRoadmap
	SelectedAgentID  string
}

// RecordSummary is the listing projection of a roadmap record.
type RecordSummary struct {
	ID           string                 `json:"id"`
	Config       roadmap.LearnerProfile `json:"config"`
	FinalRoadmap *roadmap.Roadmap       `json:"final_roadmap"`
	Status       string                 `json:"status"`
	CreatedAt    time.Time              `json:"created_at"`
}

// RoadmapRepository is keyed read/write access to roadmap records.
type RoadmapRepository interface {
	Insert(ctx context.Context, rec *roadmap.Record) error
	GetByID(ctx context.Context, id string) (*roadmap.Record, error)
	SaveRealization(ctx context.Context, id string, upd RealizationUpdate) error
	UpdateSelection(ctx context.Context, id, agentID string, final roadmap.Roadmap) error
	UpdateRefinement(ctx context.Context, id, agentID string, agents []roadmap.PersonaRoadmap, final roadmap.Roadmap) error
	UpdateJobs(ctx context.Context, id string, block jobs.Block) error
	ListByUser(ctx context.Context, userID string) ([]RecordSummary, error)
}

// JobMatchRepository persists job search outcomes.
type JobMatchRepository interface {
	Insert(ctx context.Context, match *jobs.Match) (string, error)
}

// ResumeRepository persists parsed and generated resumes. LatestByUser
// returns the newest record for a user, NOT_FOUND when none exists.
type ResumeRepository interface {
	Insert(ctx context.Context, rec *resume.Record) (string, error)
	LatestByUser(ctx context.Context, userID string) (*resume.Record, error)
}
