package leadnote

import (
	"context"
	"errors"
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

func createTestLead(t *testing.T, db *gorm.DB, company string) *models.Lead {
	t.Helper()
	lead := &models.Lead{CompanyName: company, Stage: models.StageNew, Priority: models.PriorityMedium, Source: models.SourceManual}
	require.NoError(t, db.Create(lead).Error)
	return lead
}

func TestCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	lead := createTestLead(t, db, "Acme Robotics")

	author := "Sam"
	_, err := svc.Create(ctx, lead.ID, models.CreateNoteRequest{Content: "Strong inbound interest", AuthorName: &author})
	require.NoError(t, err)

	rows, err := svc.ListByLead(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Strong inbound interest", rows[0].Content)
	require.NotNil(t, rows[0].AuthorName)
	assert.Equal(t, "Sam", *rows[0].AuthorName)
}

func TestCreateMissingLead(t *testing.T) {
	svc := NewService(setupTestDB(t))

	_, err := svc.Create(context.Background(), 9999, models.CreateNoteRequest{Content: "Orphan note"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestDeleteScopedToLead(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	acme := createTestLead(t, db, "Acme Robotics")
	beta := createTestLead(t, db, "Beta Industries")
	note, err := svc.Create(ctx, acme.ID, models.CreateNoteRequest{Content: "Promising"})
	require.NoError(t, err)

	err = svc.Delete(ctx, beta.ID, note.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	require.NoError(t, svc.Delete(ctx, acme.ID, note.ID))
}
