package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"polypath/domain/jobs"
	apperrors "polypath/internal/errors"
	"polypath/ports"
)

// JobMatchRepositoryImpl implements JobMatchRepository for PostgreSQL.
type JobMatchRepositoryImpl struct {
	db *sqlx.DB
}

// NewJobMatchRepository creates a new PostgreSQL job match repository
func NewJobMatchRepository(db *sqlx.DB) ports.JobMatchRepository {
	return &JobMatchRepositoryImpl{db: db}
}

// Insert stores a job search outcome and returns the generated ID.
func (r *JobMatchRepositoryImpl) Insert(ctx context.Context, match *jobs.Match) (string, error) {
	id := match.ID
	if id == "" {
		id = uuid.NewString()
	}
	keywordsJSON, _ := json.Marshal(match.Keywords)
	resultsJSON, _ := json.Marshal(match.Results)

	var userID *string
	if match.UserID != "" {
		userID = &match.UserID
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO job_matches (id, user_id, role, location, keywords, results, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		id, userID, match.Role, match.Location, keywordsJSON, resultsJSON)
	if err != nil {
		return "", apperrors.DatabaseError("failed to insert job match", err)
	}
	return id, nil
}
