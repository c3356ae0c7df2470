package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bluecore-studio/crm-api/pkg/database"
	"github.com/bluecore-studio/crm-api/pkg/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	client, err := database.NewClient("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client.DB
}

func createTestLead(t *testing.T, db *gorm.DB, company string, stage models.Stage) *models.Lead {
	t.Helper()
	lead := &models.Lead{CompanyName: company, Stage: stage, Priority: models.PriorityMedium, Source: models.SourceManual}
	require.NoError(t, db.Create(lead).Error)
	return lead
}

func TestBoardHasAllStageKeys(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)

	board, err := svc.Board(context.Background())
	require.NoError(t, err)
	require.Len(t, board.Pipeline, 6)
	assert.Equal(t, models.Stages, board.Stages)

	// Empty columns are arrays, not nil
	for _, stage := range models.Stages {
		column, ok := board.Pipeline[stage]
		require.True(t, ok, "missing stage %s", stage)
		assert.NotNil(t, column)
		assert.Empty(t, column)
	}
}

func TestBoardPartitionsByStage(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)

	createTestLead(t, db, "Acme Robotics", models.StageNew)
	createTestLead(t, db, "Beta Health", models.StageNew)
	createTestLead(t, db, "Gamma Soft", models.StageClosedWon)

	board, err := svc.Board(context.Background())
	require.NoError(t, err)
	assert.Len(t, board.Pipeline[models.StageNew], 2)
	assert.Len(t, board.Pipeline[models.StageClosedWon], 1)
	assert.Empty(t, board.Pipeline[models.StageProposal])

	total := 0
	for _, column := range board.Pipeline {
		total += len(column)
	}
	assert.Equal(t, 3, total)
}
