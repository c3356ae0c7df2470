package dailyreport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bluecore-studio/crm-api/pkg/models"
)

// Service manages team members' daily work reports.
type Service struct {
	db *gorm.DB
}

// NewService creates a new daily report service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns reports newest-date first, optionally filtered by author
// name or exact date.
func (s *Service) List(ctx context.Context, name, date string) ([]models.DailyReport, error) {
	query := s.db.WithContext(ctx).Model(&models.DailyReport{})
	if name != "" {
		query = query.Where("name = ?", name)
	}
	if date != "" {
		query = query.Where("date = ?", date)
	}

	var rows []models.DailyReport
	if err := query.Order("date DESC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list daily reports: %w", err)
	}
	return rows, nil
}

// Create stores a daily report.
func (s *Service) Create(ctx context.Context, req models.CreateDailyReportRequest) (*models.DailyReport, error) {
	report := models.DailyReport{
		Name:            req.Name,
		Date:            req.Date,
		TasksCompleted:  req.TasksCompleted,
		TasksInProgress: req.TasksInProgress,
		Blockers:        req.Blockers,
		HoursWorked:     req.HoursWorked,
	}
	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create daily report: %w", err)
	}
	return &report, nil
}

// Update applies a partial edit to a report.
func (s *Service) Update(ctx context.Context, id uint, req models.UpdateDailyReportRequest) (*models.DailyReport, error) {
	var report models.DailyReport
	if err := s.db.WithContext(ctx).First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("daily report: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get daily report: %w", err)
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Date != nil {
		updates["date"] = *req.Date
	}
	if req.TasksCompleted != nil {
		updates["tasks_completed"] = *req.TasksCompleted
	}
	if req.TasksInProgress != nil {
		updates["tasks_in_progress"] = req.TasksInProgress
	}
	if req.Blockers != nil {
		updates["blockers"] = req.Blockers
	}
	if req.HoursWorked != nil {
		if *req.HoursWorked <= 0 {
			return nil, fmt.Errorf("hours_worked must be positive: %w", models.ErrInvalidInput)
		}
		updates["hours_worked"] = *req.HoursWorked
	}
	if len(updates) == 0 {
		return &report, nil
	}

	if err := s.db.WithContext(ctx).Model(&report).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update daily report: %w", err)
	}
	if err := s.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload daily report: %w", err)
	}
	return &report, nil
}

// Delete removes a report.
func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.DailyReport{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete daily report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("daily report: %w", models.ErrNotFound)
	}
	return nil
}

// WeekSummary returns the reports filed in the seven days ending today,
// grouped per author with hours totaled.
func (s *Service) WeekSummary(ctx context.Context) (map[string][]models.DailyReport, map[string]float64, error) {
	since := time.Now().AddDate(0, 0, -7).Format("2006-01-02")

	var rows []models.DailyReport
	if err := s.db.WithContext(ctx).
		Where("date >= ?", since).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load week reports: %w", err)
	}

	byName := map[string][]models.DailyReport{}
	hours := map[string]float64{}
	for _, r := range rows {
		byName[r.Name] = append(byName[r.Name], r)
		hours[r.Name] += r.HoursWorked
	}
	return byName, hours, nil
}
