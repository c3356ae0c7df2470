package contacts

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

func TestCreateNormalizesPhone(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, "US")
	ctx := context.Background()
	lead := createTestLead(t, db, "Acme Robotics")

	phone := "(415) 555-2671"
	contact, err := svc.Create(ctx, lead.ID, models.CreateContactRequest{Name: "Jane Doe", Phone: &phone})
	require.NoError(t, err)
	require.NotNil(t, contact.Phone)
	assert.Equal(t, "+14155552671", *contact.Phone)
}

func TestCreateKeepsUnparseablePhone(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, "US")
	ctx := context.Background()
	lead := createTestLead(t, db, "Acme Robotics")

	phone := "ext. 42 front desk"
	contact, err := svc.Create(ctx, lead.ID, models.CreateContactRequest{Name: "Jane Doe", Phone: &phone})
	require.NoError(t, err)
	require.NotNil(t, contact.Phone)
	assert.Equal(t, phone, *contact.Phone)
}

func TestCreateMissingLead(t *testing.T) {
	svc := NewService(setupTestDB(t), "US")

	_, err := svc.Create(context.Background(), 9999, models.CreateContactRequest{Name: "Jane Doe"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestDeleteScopedToLead(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, "US")
	ctx := context.Background()

	acme := createTestLead(t, db, "Acme Robotics")
	beta := createTestLead(t, db, "Beta Industries")
	contact, err := svc.Create(ctx, acme.ID, models.CreateContactRequest{Name: "Jane Doe"})
	require.NoError(t, err)

	// Wrong lead in the path cannot delete someone else's contact
	err = svc.Delete(ctx, beta.ID, contact.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	require.NoError(t, svc.Delete(ctx, acme.ID, contact.ID))
	rows, err := svc.ListByLead(ctx, acme.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
