package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"polypath/domain/resume"
	apperrors "polypath/internal/errors"
	"polypath/ports"
)

// ResumeRepositoryImpl implements ResumeRepository for PostgreSQL.
type ResumeRepositoryImpl struct {
	db *sqlx.DB
}

// NewResumeRepository creates a new PostgreSQL resume repository
func NewResumeRepository(db *sqlx.DB) ports.ResumeRepository {
	return &ResumeRepositoryImpl{db: db}
}

// Insert stores a resume record and returns its id.
func (r *ResumeRepositoryImpl) Insert(ctx context.Context, rec *resume.Record) (string, error) {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO resumes (id, user_id, source_url, parsed_text, created_at)
		VALUES ($1, $2, $3, $4, NOW())`,
		id, rec.UserID, rec.SourceURL, rec.ParsedText)
	if err != nil {
		return "", apperrors.DatabaseError("failed to insert resume", err)
	}
	return id, nil
}

// LatestByUser returns the most recently stored resume for a user.
func (r *ResumeRepositoryImpl) LatestByUser(ctx context.Context, userID string) (*resume.Record, error) {
	var rec resume.Record
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, source_url, parsed_text, created_at
		FROM resumes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, userID).Scan(&rec.ID, &rec.UserID, &rec.SourceURL, &rec.ParsedText, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("resume")
	}
	if err != nil {
		return nil, apperrors.DatabaseError("failed to load resume", err)
	}
	return &rec, nil
}
