package leadnote

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bluecore-studio/crm-api/pkg/models"
)

// Service handles free-form notes scoped to a lead.
type Service struct {
	db *gorm.DB
}

// NewService creates a new lead note service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create adds a note under a lead.
func (s *Service) Create(ctx context.Context, leadID uint, req models.CreateNoteRequest) (*models.LeadNote, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Lead{}).Where("id = ?", leadID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check lead existence: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("lead: %w", models.ErrNotFound)
	}

	note := models.LeadNote{
		LeadID:     leadID,
		Content:    req.Content,
		AuthorName: req.AuthorName,
	}
	if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return &note, nil
}

// ListByLead returns a lead's notes, newest first.
func (s *Service) ListByLead(ctx context.Context, leadID uint) ([]models.LeadNote, error) {
	var rows []models.LeadNote
	if err := s.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return rows, nil
}

// Delete removes a note scoped by its lead.
func (s *Service) Delete(ctx context.Context, leadID, noteID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND lead_id = ?", noteID, leadID).
		Delete(&models.LeadNote{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("note: %w", models.ErrNotFound)
	}
	return nil
}
