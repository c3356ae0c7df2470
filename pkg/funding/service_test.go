package funding

import (
	"context"
	"encoding/json"
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

func amount(v float64) *float64 { return &v }

func ingestTestRound(t *testing.T, svc *Service, company, roundType string, amountUSD *float64) *models.FundingRound {
	t.Helper()
	round, err := svc.Ingest(context.Background(), models.CreateFundingRoundRequest{
		CompanyName:  company,
		RoundType:    roundType,
		AmountUSD:    amountUSD,
		Source:       "techcrunch",
		Investors:    []string{"Sequoia"},
		CategoryTags: []string{"fintech", "ai"},
	})
	require.NoError(t, err)
	return round
}

func TestNormalizeCompanyName(t *testing.T) {
	assert.Equal(t, "cafe muller gmbh", NormalizeCompanyName("Café Müller GmbH"))
	assert.Equal(t, "acme robotics", NormalizeCompanyName("  Acme, Robotics!  "))
	assert.Equal(t, "acme robotics", NormalizeCompanyName("ACME   Robotics"))
	assert.Equal(t, "", NormalizeCompanyName("***"))
}

func TestIngestEncodesLists(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)
	round := ingestTestRound(t, svc, "Acme Robotics", "Series A", amount(12_000_000))

	assert.Equal(t, "acme robotics", round.CompanyNameNormalized)

	var investors []string
	require.NoError(t, json.Unmarshal([]byte(round.Investors), &investors))
	assert.Equal(t, []string{"Sequoia"}, investors)
}

func TestSearchFiltersAndDecodes(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)
	ctx := context.Background()

	ingestTestRound(t, svc, "Acme Robotics", "Series A", amount(12_000_000))
	ingestTestRound(t, svc, "Beta Health", "Seed", amount(2_000_000))

	byType, err := svc.Search(ctx, models.FundingSearchRequest{RoundType: "Seed"})
	require.NoError(t, err)
	require.Len(t, byType.Data, 1)
	assert.Equal(t, "Beta Health", byType.Data[0].CompanyName)
	assert.Equal(t, []string{"fintech", "ai"}, byType.Data[0].CategoryTags)

	byMin, err := svc.Search(ctx, models.FundingSearchRequest{MinAmount: "5000000"})
	require.NoError(t, err)
	require.Len(t, byMin.Data, 1)
	assert.Equal(t, "Acme Robotics", byMin.Data[0].CompanyName)

	assert.ElementsMatch(t, []string{"Seed", "Series A"}, byMin.RoundTypes)
}

func TestSearchPagination(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ingestTestRound(t, svc, "Company", "Seed", amount(1_000_000))
	}

	page, err := svc.Search(ctx, models.FundingSearchRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Data, 2)
}

func TestImportLeadCreatesLeadAndActivity(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()
	round := ingestTestRound(t, svc, "Acme Robotics", "Series A", amount(12_000_000))

	lead, err := svc.ImportLead(ctx, round.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Robotics", lead.CompanyName)
	assert.Equal(t, models.StageNew, lead.Stage)
	assert.Equal(t, models.PriorityMedium, lead.Priority)
	assert.Equal(t, models.SourceScraper, lead.Source)
	require.NotNil(t, lead.FundingRoundID)
	assert.Equal(t, round.ID, *lead.FundingRoundID)

	var activities []models.Activity
	require.NoError(t, db.Where("lead_id = ?", lead.ID).Find(&activities).Error)
	require.Len(t, activities, 1)
	assert.Equal(t, "Lead imported from funding data", activities[0].Title)
	require.NotNil(t, activities[0].Description)
	assert.Equal(t, "Imported from Series A round ($12.0M)", *activities[0].Description)

	require.NotNil(t, activities[0].Metadata)
	var meta map[string]any
	require.NoError(t, json.Unmarshal([]byte(*activities[0].Metadata), &meta))
	assert.EqualValues(t, round.ID, meta["funding_round_id"])
	assert.Equal(t, "Series A", meta["round_type"])
}

func TestImportLeadIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()
	round := ingestTestRound(t, svc, "Acme Robotics", "Series A", amount(12_000_000))

	first, err := svc.ImportLead(ctx, round.ID)
	require.NoError(t, err)

	second, err := svc.ImportLead(ctx, round.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrConflict))
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Lead{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestImportLeadMissingRound(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)

	_, err := svc.ImportLead(context.Background(), 9999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestStatsAggregates(t *testing.T) {
	svc := NewService(setupTestDB(t), nil)
	ctx := context.Background()

	ingestTestRound(t, svc, "Acme Robotics", "Series A", amount(12_000_000))
	ingestTestRound(t, svc, "ACME   Robotics", "Series B", amount(30_000_000))
	ingestTestRound(t, svc, "Beta Health", "Seed", nil)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalRounds)
	assert.EqualValues(t, 2, stats.UniqueCompanies) // normalized names collapse the Acme pair
	assert.InDelta(t, 42_000_000, stats.TotalAmountUSD, 0.01)
	assert.InDelta(t, 21_000_000, stats.AvgAmountUSD, 0.01) // nil amounts excluded from the average
	assert.Len(t, stats.ByRoundType, 3)

	require.NotEmpty(t, stats.TopCategories)
	assert.Equal(t, 3, stats.TopCategories[0].Count)
}
