package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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

func createTestLead(t *testing.T, svc *Service, company string) *models.Lead {
	t.Helper()
	lead, err := svc.Create(context.Background(), models.CreateLeadRequest{CompanyName: company})
	require.NoError(t, err)
	return lead
}

func TestCreateDefaultsAndCreationActivity(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)
	ctx := context.Background()

	lead, err := svc.Create(ctx, models.CreateLeadRequest{CompanyName: "Acme Robotics"})
	require.NoError(t, err)
	assert.Equal(t, models.StageNew, lead.Stage)
	assert.Equal(t, models.PriorityMedium, lead.Priority)
	assert.Equal(t, models.SourceManual, lead.Source)

	activities, err := svc.ListActivities(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, models.ActivityNote, activities[0].Type)
	assert.Equal(t, "Lead created", activities[0].Title)
	require.NotNil(t, activities[0].Description)
	assert.Equal(t, "New lead created (source: manual)", *activities[0].Description)
}

func TestUpdateStageLogsTransition(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)
	ctx := context.Background()
	lead := createTestLead(t, svc, "Acme Robotics")

	updated, err := svc.UpdateStage(ctx, lead.ID, models.UpdateStageRequest{Stage: "contacted"})
	require.NoError(t, err)
	assert.Equal(t, models.StageContacted, updated.Stage)

	activities, err := svc.ListActivities(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, activities, 2)

	change := activities[0]
	assert.Equal(t, models.ActivityStageChange, change.Type)
	assert.Equal(t, "Stage changed: new → contacted", change.Title)

	require.NotNil(t, change.Metadata)
	var meta map[string]string
	require.NoError(t, json.Unmarshal([]byte(*change.Metadata), &meta))
	assert.Equal(t, "new", meta["from"])
	assert.Equal(t, "contacted", meta["to"])
}

func TestUpdateStageNoOpStillLogs(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)
	ctx := context.Background()
	lead := createTestLead(t, svc, "Acme Robotics")

	_, err := svc.UpdateStage(ctx, lead.ID, models.UpdateStageRequest{Stage: "new"})
	require.NoError(t, err)

	activities, err := svc.ListActivities(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, "Stage changed: new → new", activities[0].Title)
}

func TestUpdateStageRejectsUnknownStage(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)
	ctx := context.Background()
	lead := createTestLead(t, svc, "Acme Robotics")

	_, err := svc.UpdateStage(ctx, lead.ID, models.UpdateStageRequest{Stage: "negotiating"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	// No write and no activity must have happened
	activities, err := svc.ListActivities(ctx, lead.ID)
	require.NoError(t, err)
	assert.Len(t, activities, 1)

	reloaded, err := svc.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageNew, reloaded.Stage)
}

func TestUpdateStageAnyToAny(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)
	ctx := context.Background()
	lead := createTestLead(t, svc, "Acme Robotics")

	// closed_won straight back to new is allowed
	_, err := svc.UpdateStage(ctx, lead.ID, models.UpdateStageRequest{Stage: "closed_won"})
	require.NoError(t, err)
	updated, err := svc.UpdateStage(ctx, lead.ID, models.UpdateStageRequest{Stage: "new"})
	require.NoError(t, err)
	assert.Equal(t, models.StageNew, updated.Stage)
}

func TestUpdateStageClosedLostReason(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)
	ctx := context.Background()
	lead := createTestLead(t, svc, "Acme Robotics")

	reason := "Chose a competitor"
	updated, err := svc.UpdateStage(ctx, lead.ID, models.UpdateStageRequest{Stage: "closed_lost", LostReason: &reason})
	require.NoError(t, err)
	require.NotNil(t, updated.LostReason)
	assert.Equal(t, reason, *updated.LostReason)
}

func TestUpdateIgnoresAbsentFields(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)
	ctx := context.Background()
	lead := createTestLead(t, svc, "Acme Robotics")

	name := "Jane Doe"
	updated, err := svc.Update(ctx, lead.ID, models.UpdateLeadRequest{ContactName: &name})
	require.NoError(t, err)
	require.NotNil(t, updated.ContactName)
	assert.Equal(t, "Jane Doe", *updated.ContactName)
	assert.Equal(t, "Acme Robotics", updated.CompanyName)

	// Field edits never write stage_change activities
	activities, err := svc.ListActivities(ctx, lead.ID)
	require.NoError(t, err)
	assert.Len(t, activities, 1)
}

func TestSearchPaginationTotals(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		createTestLead(t, svc, fmt.Sprintf("Company %d", i))
	}

	page1, err := svc.Search(ctx, models.LeadSearchRequest{Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 7, page1.Total)
	assert.Equal(t, 3, page1.TotalPages)
	assert.Len(t, page1.Data, 3)

	page3, err := svc.Search(ctx, models.LeadSearchRequest{Page: 3, Limit: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 7, page3.Total)
	assert.Len(t, page3.Data, 1)

	// Page past the end is empty but keeps the same total
	page4, err := svc.Search(ctx, models.LeadSearchRequest{Page: 4, Limit: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 7, page4.Total)
	assert.Empty(t, page4.Data)
}

func TestSearchFilters(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)
	ctx := context.Background()

	a := createTestLead(t, svc, "Acme Robotics")
	createTestLead(t, svc, "Beta Industries")
	_, err := svc.UpdateStage(ctx, a.ID, models.UpdateStageRequest{Stage: "meeting"})
	require.NoError(t, err)

	byName, err := svc.Search(ctx, models.LeadSearchRequest{Search: "Acme"})
	require.NoError(t, err)
	require.Len(t, byName.Data, 1)
	assert.Equal(t, "Acme Robotics", byName.Data[0].CompanyName)

	byStage, err := svc.Search(ctx, models.LeadSearchRequest{Stage: "meeting"})
	require.NoError(t, err)
	require.Len(t, byStage.Data, 1)
	assert.Equal(t, a.ID, byStage.Data[0].ID)
}

func TestListAllIgnoresPageCap(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)
	ctx := context.Background()

	for i := 0; i < 120; i++ {
		createTestLead(t, svc, fmt.Sprintf("Company %03d", i))
	}

	rows, err := svc.ListAll(ctx, models.LeadSearchRequest{})
	require.NoError(t, err)
	assert.Len(t, rows, 120)

	filtered, err := svc.ListAll(ctx, models.LeadSearchRequest{Search: "Company 00"})
	require.NoError(t, err)
	assert.Len(t, filtered, 10)
}

func TestDeleteCascadesChildren(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()
	lead := createTestLead(t, svc, "Acme Robotics")

	_, err := svc.AddActivity(ctx, lead.ID, models.CreateActivityRequest{Title: "Called them"})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.FollowUp{LeadID: lead.ID, DueDate: "2026-09-10", Title: "Call back"}).Error)
	require.NoError(t, db.Create(&models.LeadContact{LeadID: lead.ID, Name: "Jane"}).Error)
	require.NoError(t, db.Create(&models.LeadNote{LeadID: lead.ID, Content: "Promising"}).Error)

	require.NoError(t, svc.Delete(ctx, lead.ID))

	for _, model := range []any{&models.Activity{}, &models.FollowUp{}, &models.LeadContact{}, &models.LeadNote{}} {
		var count int64
		require.NoError(t, db.Model(model).Where("lead_id = ?", lead.ID).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestDeleteMissingLead(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)

	err := svc.Delete(context.Background(), 9999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestAddActivityValidatesType(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)
	ctx := context.Background()
	lead := createTestLead(t, svc, "Acme Robotics")

	_, err := svc.AddActivity(ctx, lead.ID, models.CreateActivityRequest{Type: "fax", Title: "Sent a fax"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	activity, err := svc.AddActivity(ctx, lead.ID, models.CreateActivityRequest{
		Title:    "Intro call",
		Type:     "call",
		Metadata: map[string]any{"duration_min": 30},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActivityCall, activity.Type)
	require.NotNil(t, activity.Metadata)
	assert.Contains(t, *activity.Metadata, "duration_min")
}

// Walks one lead through the pipeline end to end and checks the audit
// trail holds the full history.
func TestLeadLifecycle(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)
	ctx := context.Background()

	lead := createTestLead(t, svc, "Acme Robotics")
	for _, stage := range []string{"contacted", "meeting", "proposal", "closed_won"} {
		_, err := svc.UpdateStage(ctx, lead.ID, models.UpdateStageRequest{Stage: stage})
		require.NoError(t, err)
	}

	final, err := svc.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageClosedWon, final.Stage)

	activities, err := svc.ListActivities(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, activities, 5) // creation note + 4 transitions

	stageChanges := 0
	for _, a := range activities {
		if a.Type == models.ActivityStageChange {
			stageChanges++
		}
	}
	assert.Equal(t, 4, stageChanges)
}
