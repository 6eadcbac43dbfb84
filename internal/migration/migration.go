package migration

import (
	"context"

	"polypath/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.1.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRoadmapsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create roadmaps table")
	}

	if err := r.createJobMatchesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create job_matches table")
	}

	if err := r.createResumesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create resumes table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createRoadmapsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS roadmaps (
			id UUID PRIMARY KEY,
			config JSONB NOT NULL,
			strategies JSONB NOT NULL DEFAULT '[]'::jsonb,
			selected_strategy JSONB,
			status VARCHAR(50) NOT NULL DEFAULT 'draft',
			logs JSONB NOT NULL DEFAULT '[]'::jsonb,
			sandbox_id VARCHAR(255),
			final_roadmap JSONB,
			agent_roadmaps JSONB NOT NULL DEFAULT '[]'::jsonb,
			selected_agent_id VARCHAR(100) NOT NULL DEFAULT '',
			jobs JSONB,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return err
	}

	// Pre-1.1.0 databases lack the jobs column.
	_, err = db.ExecContext(ctx, `
		ALTER TABLE roadmaps ADD COLUMN IF NOT EXISTS jobs JSONB
	`)
	return err
}

func (r *MigrationRunner) createJobMatchesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS job_matches (
			id UUID PRIMARY KEY,
			user_id VARCHAR(255),
			role VARCHAR(255) NOT NULL,
			location VARCHAR(255),
			keywords JSONB NOT NULL DEFAULT '[]'::jsonb,
			results JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createResumesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS resumes (
			id UUID PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			source_url TEXT NOT NULL DEFAULT '',
			parsed_text TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_roadmaps_user ON roadmaps ((config->>'userId'));
		CREATE INDEX IF NOT EXISTS idx_roadmaps_created_at ON roadmaps (created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_job_matches_user ON job_matches (user_id);
		CREATE INDEX IF NOT EXISTS idx_resumes_user ON resumes (user_id, created_at DESC);
	`)
	return err
}
