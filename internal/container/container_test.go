package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polypath/internal/config"
)

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestInitWithoutDatabaseWiresNoopRepositories(t *testing.T) {
	c, err := New(&config.Config{})
	require.NoError(t, err)

	require.NoError(t, c.InitWithDatabase(nil))

	assert.NotNil(t, c.RoadmapRepo)
	assert.NotNil(t, c.JobMatchRepo)
	assert.NotNil(t, c.ResumeRepo)
	assert.NotNil(t, c.DraftService)
	assert.NotNil(t, c.RealizationService)
	assert.NotNil(t, c.JobSearchService)
	assert.NotNil(t, c.ResumeService)
	assert.NotNil(t, c.Server)

	// Degraded mode still reports not-found on reads.
	_, err = c.RoadmapRepo.GetByID(context.Background(), "rm-1")
	assert.Error(t, err)

	require.NoError(t, c.Shutdown(context.Background()))
}
