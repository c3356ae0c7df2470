package followups

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bluecore-studio/crm-api/pkg/models"
)

// Service manages follow-up reminders and keeps the parent lead's
// next_follow_up field in sync. That field is a cache of the earliest
// open follow-up's due date; every mutation here recomputes it so it
// cannot drift from the underlying rows.
type Service struct {
	db *gorm.DB
}

// NewService creates a new follow-up service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create schedules a follow-up under a lead. The insert and the parent's
// next_follow_up refresh commit as one transaction.
func (s *Service) Create(ctx context.Context, leadID uint, req models.CreateFollowUpRequest) (*models.FollowUp, error) {
	if err := s.leadExists(ctx, leadID); err != nil {
		return nil, err
	}

	followUp := models.FollowUp{
		LeadID:  leadID,
		DueDate: req.DueDate,
		Title:   req.Title,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&followUp).Error; err != nil {
			return err
		}
		return recomputeNextFollowUp(tx, leadID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create follow-up: %w", err)
	}
	return &followUp, nil
}

// ListByLead returns a lead's follow-ups, latest due date first.
func (s *Service) ListByLead(ctx context.Context, leadID uint) ([]models.FollowUp, error) {
	var rows []models.FollowUp
	if err := s.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("due_date DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	return rows, nil
}

// ListOpen returns every open follow-up across leads, earliest first,
// joined with the owning lead's company name.
func (s *Service) ListOpen(ctx context.Context) ([]models.FollowUpWithCompany, error) {
	var rows []models.FollowUpWithCompany
	if err := s.db.WithContext(ctx).
		Table("follow_ups").
		Select("follow_ups.id, follow_ups.lead_id, follow_ups.due_date, follow_ups.title, follow_ups.completed, follow_ups.created_at, leads.company_name").
		Joins("INNER JOIN leads ON leads.id = follow_ups.lead_id").
		Where("follow_ups.completed = ?", false).
		Order("follow_ups.due_date ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list open follow-ups: %w", err)
	}
	return rows, nil
}

// Update applies a partial edit (completed, due_date, title) and then
// recomputes the parent lead's next_follow_up cache.
func (s *Service) Update(ctx context.Context, id uint, req models.UpdateFollowUpRequest) (*models.FollowUp, error) {
	var followUp models.FollowUp
	if err := s.db.WithContext(ctx).First(&followUp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("follow-up: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get follow-up: %w", err)
	}

	updates := map[string]any{}
	if req.Completed != nil {
		updates["completed"] = *req.Completed
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if len(updates) == 0 {
		return &followUp, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&followUp).Updates(updates).Error; err != nil {
			return err
		}
		return recomputeNextFollowUp(tx, followUp.LeadID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update follow-up: %w", err)
	}

	if err := s.db.WithContext(ctx).First(&followUp, id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload follow-up: %w", err)
	}
	return &followUp, nil
}

// Delete removes a follow-up and recomputes the parent's cache.
func (s *Service) Delete(ctx context.Context, id uint) error {
	var followUp models.FollowUp
	if err := s.db.WithContext(ctx).First(&followUp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("follow-up: %w", models.ErrNotFound)
		}
		return fmt.Errorf("failed to get follow-up: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.FollowUp{}, id).Error; err != nil {
			return err
		}
		return recomputeNextFollowUp(tx, followUp.LeadID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete follow-up: %w", err)
	}
	return nil
}

// ReconcileAll recomputes next_follow_up for every lead. The nightly job
// runs this as a safety net behind the synchronous hooks.
func (s *Service) ReconcileAll(ctx context.Context) (int, error) {
	var leadIDs []uint
	if err := s.db.WithContext(ctx).Model(&models.Lead{}).Pluck("id", &leadIDs).Error; err != nil {
		return 0, fmt.Errorf("failed to list leads: %w", err)
	}

	reconciled := 0
	for _, id := range leadIDs {
		if err := recomputeNextFollowUp(s.db.WithContext(ctx), id); err != nil {
			return reconciled, fmt.Errorf("failed to reconcile lead %d: %w", id, err)
		}
		reconciled++
	}
	return reconciled, nil
}

// recomputeNextFollowUp sets the lead's next_follow_up to the earliest
// open follow-up's due date, or clears it when none remain. Due dates are
// ISO strings, so MIN() over text is chronological.
func recomputeNextFollowUp(tx *gorm.DB, leadID uint) error {
	var next *string
	err := tx.Model(&models.FollowUp{}).
		Select("MIN(due_date)").
		Where("lead_id = ? AND completed = ?", leadID, false).
		Scan(&next).Error
	if err != nil {
		return err
	}

	return tx.Model(&models.Lead{}).
		Where("id = ?", leadID).
		Updates(map[string]any{
			"next_follow_up": next,
			"updated_at":     time.Now(),
		}).Error
}

func (s *Service) leadExists(ctx context.Context, leadID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Lead{}).Where("id = ?", leadID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check lead existence: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("lead: %w", models.ErrNotFound)
	}
	return nil
}
