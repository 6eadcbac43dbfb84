package nullstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polypath/domain/jobs"
	"polypath/domain/resume"
	"polypath/domain/roadmap"
	apperrors "polypath/internal/errors"
)

func TestReadsReportNotFoundOrEmpty(t *testing.T) {
	ctx := context.Background()

	_, err := NewRoadmapRepository().GetByID(ctx, "rm-1")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))

	summaries, err := NewRoadmapRepository().ListByUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Empty(t, summaries)

	_, err = NewResumeRepository().LatestByUser(ctx, "u-1")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}

func TestWritesFailAsDatabaseErrors(t *testing.T) {
	ctx := context.Background()

	err := NewRoadmapRepository().Insert(ctx, &roadmap.Record{ID: "rm-1"})
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))

	err = NewRoadmapRepository().UpdateJobs(ctx, "rm-1", jobs.Block{Role: "r"})
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))

	_, err = NewJobMatchRepository().Insert(ctx, &jobs.Match{Role: "r"})
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))

	_, err = NewResumeRepository().Insert(ctx, &resume.Record{UserID: "u-1"})
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
}
