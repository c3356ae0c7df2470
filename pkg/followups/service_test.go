package followups

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

func nextFollowUp(t *testing.T, db *gorm.DB, leadID uint) *string {
	t.Helper()
	var lead models.Lead
	require.NoError(t, db.First(&lead, leadID).Error)
	return lead.NextFollowUp
}

func TestCreateSetsNextFollowUp(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	lead := createTestLead(t, db, "Acme Robotics")

	_, err := svc.Create(ctx, lead.ID, models.CreateFollowUpRequest{DueDate: "2026-09-20", Title: "Send proposal"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, lead.ID, models.CreateFollowUpRequest{DueDate: "2026-09-05", Title: "Check in"})
	require.NoError(t, err)

	next := nextFollowUp(t, db, lead.ID)
	require.NotNil(t, next)
	assert.Equal(t, "2026-09-05", *next)
}

func TestCreateMissingLead(t *testing.T) {
	svc := NewService(setupTestDB(t))

	_, err := svc.Create(context.Background(), 9999, models.CreateFollowUpRequest{DueDate: "2026-09-05", Title: "Check in"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestCompletingEarliestAdvancesCache(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	lead := createTestLead(t, db, "Acme Robotics")

	first, err := svc.Create(ctx, lead.ID, models.CreateFollowUpRequest{DueDate: "2026-09-05", Title: "Check in"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, lead.ID, models.CreateFollowUpRequest{DueDate: "2026-09-20", Title: "Send proposal"})
	require.NoError(t, err)

	done := true
	_, err = svc.Update(ctx, first.ID, models.UpdateFollowUpRequest{Completed: &done})
	require.NoError(t, err)

	next := nextFollowUp(t, db, lead.ID)
	require.NotNil(t, next)
	assert.Equal(t, "2026-09-20", *next)
}

func TestLastOpenDeletedClearsCache(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	lead := createTestLead(t, db, "Acme Robotics")

	followUp, err := svc.Create(ctx, lead.ID, models.CreateFollowUpRequest{DueDate: "2026-09-05", Title: "Check in"})
	require.NoError(t, err)
	require.NotNil(t, nextFollowUp(t, db, lead.ID))

	require.NoError(t, svc.Delete(ctx, followUp.ID))
	assert.Nil(t, nextFollowUp(t, db, lead.ID))
}

func TestReopeningRestoresCache(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	lead := createTestLead(t, db, "Acme Robotics")

	followUp, err := svc.Create(ctx, lead.ID, models.CreateFollowUpRequest{DueDate: "2026-09-05", Title: "Check in"})
	require.NoError(t, err)

	done := true
	_, err = svc.Update(ctx, followUp.ID, models.UpdateFollowUpRequest{Completed: &done})
	require.NoError(t, err)
	assert.Nil(t, nextFollowUp(t, db, lead.ID))

	open := false
	_, err = svc.Update(ctx, followUp.ID, models.UpdateFollowUpRequest{Completed: &open})
	require.NoError(t, err)
	next := nextFollowUp(t, db, lead.ID)
	require.NotNil(t, next)
	assert.Equal(t, "2026-09-05", *next)
}

func TestListOpenJoinsCompanyOrdered(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	acme := createTestLead(t, db, "Acme Robotics")
	beta := createTestLead(t, db, "Beta Industries")

	_, err := svc.Create(ctx, beta.ID, models.CreateFollowUpRequest{DueDate: "2026-09-20", Title: "Later"})
	require.NoError(t, err)
	early, err := svc.Create(ctx, acme.ID, models.CreateFollowUpRequest{DueDate: "2026-09-05", Title: "Soon"})
	require.NoError(t, err)
	done := true
	_, err = svc.Create(ctx, acme.ID, models.CreateFollowUpRequest{DueDate: "2026-09-01", Title: "Done already"})
	require.NoError(t, err)
	closed, err := svc.ListByLead(ctx, acme.ID)
	require.NoError(t, err)
	_, err = svc.Update(ctx, closed[len(closed)-1].ID, models.UpdateFollowUpRequest{Completed: &done})
	require.NoError(t, err)

	open, err := svc.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, early.ID, open[0].ID)
	assert.Equal(t, "Acme Robotics", open[0].CompanyName)
	assert.Equal(t, "Beta Industries", open[1].CompanyName)
}

func TestReconcileAllRepairsDrift(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	lead := createTestLead(t, db, "Acme Robotics")

	_, err := svc.Create(ctx, lead.ID, models.CreateFollowUpRequest{DueDate: "2026-09-05", Title: "Check in"})
	require.NoError(t, err)

	// Corrupt the cache behind the service's back
	require.NoError(t, db.Model(&models.Lead{}).Where("id = ?", lead.ID).Update("next_follow_up", "2099-01-01").Error)

	count, err := svc.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	next := nextFollowUp(t, db, lead.ID)
	require.NotNil(t, next)
	assert.Equal(t, "2026-09-05", *next)
}
