package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"polypath/domain/jobs"
	"polypath/domain/roadmap"
	apperrors "polypath/internal/errors"
	"polypath/ports"
)

// RoadmapRepositoryImpl implements RoadmapRepository for PostgreSQL.
// Structured columns hold JSONB; writes are last-writer-wins per field.
type RoadmapRepositoryImpl struct {
	db *sqlx.DB
}

// NewRoadmapRepository creates a new PostgreSQL roadmap repository
func NewRoadmapRepository(db *sqlx.DB) ports.RoadmapRepository {
	return &RoadmapRepositoryImpl{db: db}
}

// Insert stores a freshly drafted record.
func (r *RoadmapRepositoryImpl) Insert(ctx context.Context, rec *roadmap.Record) error {
	configJSON, _ := json.Marshal(rec.Config)
	strategiesJSON, _ := json.Marshal(rec.Strategies)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO roadmaps (id, config, strategies, status, created_at)
		VALUES ($1, $2, $3, $4, NOW())`,
		rec.ID, configJSON, strategiesJSON, rec.Status)
	if err != nil {
		return apperrors.DatabaseError("failed to insert roadmap", err)
	}
	return nil
}

// GetByID retrieves a full record by its ID.
func (r *RoadmapRepositoryImpl) GetByID(ctx context.Context, id string) (*roadmap.Record, error) {
	var rec roadmap.Record
	var configJSON, strategiesJSON []byte
	var selectedStrategyJSON, logsJSON, finalRoadmapJSON, agentRoadmapsJSON, jobsJSON []byte
	var sandboxID, selectedAgentID sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, config, strategies, selected_strategy, status, logs,
		       sandbox_id, final_roadmap, agent_roadmaps, selected_agent_id, jobs, created_at
		FROM roadmaps
		WHERE id = $1
	`, id).Scan(
		&rec.ID, &configJSON, &strategiesJSON, &selectedStrategyJSON, &rec.Status,
		&logsJSON, &sandboxID, &finalRoadmapJSON, &agentRoadmapsJSON, &selectedAgentID, &jobsJSON, &rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("roadmap")
	}
	if err != nil {
		return nil, apperrors.DatabaseError("failed to load roadmap", err)
	}

	if err := json.Unmarshal(configJSON, &rec.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	json.Unmarshal(strategiesJSON, &rec.Strategies)
	json.Unmarshal(logsJSON, &rec.Logs)
	json.Unmarshal(agentRoadmapsJSON, &rec.AgentRoadmaps)

	if len(selectedStrategyJSON) > 0 {
		var strategy roadmap.Strategy
		if json.Unmarshal(selectedStrategyJSON, &strategy) == nil && strategy.Name != "" {
			rec.SelectedStrategy = &strategy
		}
	}
	if len(finalRoadmapJSON) > 0 {
		var final roadmap.Roadmap
		if json.Unmarshal(finalRoadmapJSON, &final) == nil && len(final.Weeks) > 0 {
			rec.FinalRoadmap = &final
		}
	}
	if len(jobsJSON) > 0 {
		var block jobs.Block
		if json.Unmarshal(jobsJSON, &block) == nil && block.Role != "" {
			rec.Jobs = &block
		}
	}
	if sandboxID.Valid {
		rec.SandboxID = sandboxID.String
	}
	if selectedAgentID.Valid {
		rec.SelectedAgentID = selectedAgentID.String
	}
	return &rec, nil
}

// SaveRealization applies the full write-back of a completed realization.
func (r *RoadmapRepositoryImpl) SaveRealization(ctx context.Context, id string, upd ports.RealizationUpdate) error {
	selectedStrategyJSON, _ := json.Marshal(upd.SelectedStrategy)
	logsJSON, _ := json.Marshal(upd.Logs)
	finalRoadmapJSON, _ := json.Marshal(upd.FinalRoadmap)
	agentRoadmapsJSON, _ := json.Marshal(upd.AgentRoadmaps)

	var sandboxID *string
	if upd.SandboxID != "" {
		sandboxID = &upd.SandboxID
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE roadmaps SET
			selected_strategy = $2,
			sandbox_id = $3,
			logs = $4,
			status = $5,
			final_roadmap = $6,
			agent_roadmaps = $7,
			selected_agent_id = $8
		WHERE id = $1`,
		id, selectedStrategyJSON, sandboxID, logsJSON, upd.Status,
		finalRoadmapJSON, agentRoadmapsJSON, upd.SelectedAgentID)
	if err != nil {
		return apperrors.DatabaseError("failed to save realization", err)
	}
	return noRowsAsNotFound(res, "roadmap")
}

// UpdateSelection switches the chosen agent and mirrors its roadmap into the
// final slot. No other field moves.
func (r *RoadmapRepositoryImpl) UpdateSelection(ctx context.Context, id, agentID string, final roadmap.Roadmap) error {
	finalJSON, _ := json.Marshal(final)

	res, err := r.db.ExecContext(ctx, `
		UPDATE roadmaps SET selected_agent_id = $2, final_roadmap = $3
		WHERE id = $1`, id, agentID, finalJSON)
	if err != nil {
		return apperrors.DatabaseError("failed to update selection", err)
	}
	return noRowsAsNotFound(res, "roadmap")
}

// UpdateRefinement replaces the agent roadmap set and the final roadmap after
// a successful refinement pass.
func (r *RoadmapRepositoryImpl) UpdateRefinement(ctx context.Context, id, agentID string, agents []roadmap.PersonaRoadmap, final roadmap.Roadmap) error {
	agentsJSON, _ := json.Marshal(agents)
	finalJSON, _ := json.Marshal(final)

	res, err := r.db.ExecContext(ctx, `
		UPDATE roadmaps SET agent_roadmaps = $2, final_roadmap = $3, selected_agent_id = $4
		WHERE id = $1`, id, agentsJSON, finalJSON, agentID)
	if err != nil {
		return apperrors.DatabaseError("failed to update refinement", err)
	}
	return noRowsAsNotFound(res, "roadmap")
}

// UpdateJobs attaches the latest job search block to a record.
func (r *RoadmapRepositoryImpl) UpdateJobs(ctx context.Context, id string, block jobs.Block) error {
	blockJSON, _ := json.Marshal(block)

	res, err := r.db.ExecContext(ctx, `
		UPDATE roadmaps SET jobs = $2
		WHERE id = $1`, id, blockJSON)
	if err != nil {
		return apperrors.DatabaseError("failed to update roadmap jobs", err)
	}
	return noRowsAsNotFound(res, "roadmap")
}

// ListByUser returns summaries of a user's records, newest first. The user
// key lives inside the config JSONB.
func (r *RoadmapRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]ports.RecordSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, config, final_roadmap, status, created_at
		FROM roadmaps
		WHERE config->>'userId' = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list roadmaps", err)
	}
	defer rows.Close()

	summaries := []ports.RecordSummary{}
	for rows.Next() {
		var s ports.RecordSummary
		var configJSON, finalJSON []byte

		if err := rows.Scan(&s.ID, &configJSON, &finalJSON, &s.Status, &s.CreatedAt); err != nil {
			return nil, apperrors.DatabaseError("failed to scan roadmap row", err)
		}
		json.Unmarshal(configJSON, &s.Config)
		if len(finalJSON) > 0 {
			var final roadmap.Roadmap
			if json.Unmarshal(finalJSON, &final) == nil && len(final.Weeks) > 0 {
				s.FinalRoadmap = &final
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func noRowsAsNotFound(res sql.Result, resource string) error {
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NotFound(resource)
	}
	return nil
}
