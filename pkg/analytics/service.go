package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bluecore-studio/crm-api/pkg/cache"
	"github.com/bluecore-studio/crm-api/pkg/models"
)

const (
	cacheKey = "crm:analytics:dashboard"
	cacheTTL = 5 * time.Minute
)

// Service computes the analytics dashboard.
type Service struct {
	db    *gorm.DB
	cache *cache.Client
}

// NewService creates a new analytics service. The cache client may be nil.
func NewService(db *gorm.DB, cacheClient *cache.Client) *Service {
	return &Service{db: db, cache: cacheClient}
}

// Dashboard assembles the KPI block, stage funnel, recent activity feed,
// upcoming follow-ups, source/priority breakdowns, and the 30-day
// activity volume chart.
func (s *Service) Dashboard(ctx context.Context) (*models.DashboardResponse, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil && raw != "" {
			var cached models.DashboardResponse
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	out := &models.DashboardResponse{}

	kpis, err := s.kpis(ctx)
	if err != nil {
		return nil, err
	}
	out.KPIs = *kpis

	if out.Funnel, err = s.funnel(ctx); err != nil {
		return nil, err
	}
	if out.RecentActivities, err = s.recentActivities(ctx, 10); err != nil {
		return nil, err
	}
	if out.UpcomingFollowUps, err = s.upcomingFollowUps(ctx, 10); err != nil {
		return nil, err
	}
	if out.BySource, err = s.bySource(ctx); err != nil {
		return nil, err
	}
	if out.ByPriority, err = s.byPriority(ctx); err != nil {
		return nil, err
	}
	if out.ActivityVolume, err = s.activityVolume(ctx, 30); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			_ = s.cache.Set(ctx, cacheKey, string(raw), cacheTTL)
		}
	}
	return out, nil
}

func (s *Service) kpis(ctx context.Context) (*models.DashboardKPIs, error) {
	kpis := &models.DashboardKPIs{}
	leads := func() *gorm.DB { return s.db.WithContext(ctx).Model(&models.Lead{}) }
	closed := []models.Stage{models.StageClosedWon, models.StageClosedLost}

	if err := leads().Count(&kpis.TotalLeads).Error; err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	if err := leads().Where("stage NOT IN ?", closed).Count(&kpis.ActiveLeads).Error; err != nil {
		return nil, fmt.Errorf("failed to count active leads: %w", err)
	}
	if err := leads().
		Where("stage NOT IN ?", closed).
		Select("COALESCE(SUM(deal_value), 0)").
		Scan(&kpis.TotalPipelineValue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum pipeline value: %w", err)
	}
	if err := leads().Where("stage = ?", models.StageClosedWon).Count(&kpis.WonDeals).Error; err != nil {
		return nil, fmt.Errorf("failed to count won deals: %w", err)
	}
	if err := leads().
		Where("stage = ?", models.StageClosedWon).
		Select("COALESCE(SUM(deal_value), 0)").
		Scan(&kpis.WonValue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum won value: %w", err)
	}

	kpis.ConversionRate = "0.0"
	if kpis.TotalLeads > 0 {
		kpis.ConversionRate = fmt.Sprintf("%.1f", float64(kpis.WonDeals)/float64(kpis.TotalLeads)*100)
	}
	return kpis, nil
}

// funnel returns one count per stage, in funnel order, zeros included.
func (s *Service) funnel(ctx context.Context) ([]models.FunnelStage, error) {
	type row struct {
		Stage models.Stage
		Count int64
	}
	var rows []row
	if err := s.db.WithContext(ctx).
		Model(&models.Lead{}).
		Select("stage, COUNT(*) as count").
		Group("stage").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to build funnel: %w", err)
	}

	counts := make(map[models.Stage]int64, len(rows))
	for _, r := range rows {
		counts[r.Stage] = r.Count
	}
	funnel := make([]models.FunnelStage, len(models.Stages))
	for i, stage := range models.Stages {
		funnel[i] = models.FunnelStage{Stage: stage, Count: counts[stage]}
	}
	return funnel, nil
}

func (s *Service) recentActivities(ctx context.Context, limit int) ([]models.RecentActivity, error) {
	var rows []models.RecentActivity
	if err := s.db.WithContext(ctx).
		Table("activities").
		Select("activities.id, activities.lead_id, activities.type, activities.title, activities.description, activities.created_at, leads.company_name").
		Joins("INNER JOIN leads ON leads.id = activities.lead_id").
		Order("activities.created_at DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent activities: %w", err)
	}
	return rows, nil
}

func (s *Service) upcomingFollowUps(ctx context.Context, limit int) ([]models.FollowUpWithCompany, error) {
	var rows []models.FollowUpWithCompany
	if err := s.db.WithContext(ctx).
		Table("follow_ups").
		Select("follow_ups.id, follow_ups.lead_id, follow_ups.due_date, follow_ups.title, follow_ups.completed, follow_ups.created_at, leads.company_name").
		Joins("INNER JOIN leads ON leads.id = follow_ups.lead_id").
		Where("follow_ups.completed = ?", false).
		Order("follow_ups.due_date ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list upcoming follow-ups: %w", err)
	}
	return rows, nil
}

func (s *Service) bySource(ctx context.Context) ([]models.SourceCount, error) {
	var rows []models.SourceCount
	if err := s.db.WithContext(ctx).
		Model(&models.Lead{}).
		Select("source, COUNT(*) as count").
		Group("source").
		Order("count DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to group by source: %w", err)
	}
	return rows, nil
}

func (s *Service) byPriority(ctx context.Context) ([]models.PriorityCount, error) {
	var rows []models.PriorityCount
	if err := s.db.WithContext(ctx).
		Model(&models.Lead{}).
		Select("priority, COUNT(*) as count").
		Group("priority").
		Order("count DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to group by priority: %w", err)
	}
	return rows, nil
}

// activityVolume buckets activity counts per day over the trailing
// window. Bucketing happens in Go because the date functions differ
// between sqlite and postgres.
func (s *Service) activityVolume(ctx context.Context, days int) ([]models.ActivityVolume, error) {
	since := time.Now().AddDate(0, 0, -days)

	var stamps []time.Time
	if err := s.db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("created_at >= ?", since).
		Pluck("created_at", &stamps).Error; err != nil {
		return nil, fmt.Errorf("failed to load activity volume: %w", err)
	}

	counts := make(map[string]int64, days)
	for _, ts := range stamps {
		counts[ts.Format("2006-01-02")]++
	}

	volume := make([]models.ActivityVolume, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := time.Now().AddDate(0, 0, -i).Format("2006-01-02")
		volume = append(volume, models.ActivityVolume{Day: day, Count: counts[day]})
	}
	return volume, nil
}
