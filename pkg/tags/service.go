package tags

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/bluecore-studio/crm-api/pkg/models"
)

const defaultColor = "#2176FF"

// Service manages the global tag set and its many-to-many links to leads.
type Service struct {
	db *gorm.DB
}

// NewService creates a new tag service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns all tags.
func (s *Service) List(ctx context.Context) ([]models.Tag, error) {
	var rows []models.Tag
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return rows, nil
}

// Create adds a global tag. Names are unique; a duplicate fails with a
// conflict rather than silently reusing the existing row.
func (s *Service) Create(ctx context.Context, req models.CreateTagRequest) (*models.Tag, error) {
	tag := models.Tag{
		Name:  req.Name,
		Color: req.Color,
	}
	if tag.Color == "" {
		tag.Color = defaultColor
	}

	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("tag already exists: %w", models.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return &tag, nil
}

// Delete removes a tag; its lead links cascade away with it.
func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Tag{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete tag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("tag: %w", models.ErrNotFound)
	}
	return nil
}

// ListByLead returns the tags attached to a lead.
func (s *Service) ListByLead(ctx context.Context, leadID uint) ([]models.Tag, error) {
	var rows []models.Tag
	if err := s.db.WithContext(ctx).
		Table("tags").
		Joins("INNER JOIN lead_tags ON lead_tags.tag_id = tags.id").
		Where("lead_tags.lead_id = ?", leadID).
		Order("tags.name ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list lead tags: %w", err)
	}
	return rows, nil
}

// Attach links a tag to a lead. The composite primary key makes a second
// attach of the same pair fail; that surfaces as a conflict.
func (s *Service) Attach(ctx context.Context, leadID, tagID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Lead{}).Where("id = ?", leadID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check lead existence: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("lead: %w", models.ErrNotFound)
	}
	if err := s.db.WithContext(ctx).Model(&models.Tag{}).Where("id = ?", tagID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check tag existence: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("tag: %w", models.ErrNotFound)
	}

	link := models.LeadTag{LeadID: leadID, TagID: tagID}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("tag already assigned: %w", models.ErrConflict)
		}
		return fmt.Errorf("failed to attach tag: %w", err)
	}
	return nil
}

// Detach unlinks a tag from a lead. Detaching a link that does not exist
// is a no-op, matching the delete semantics elsewhere in the join table.
func (s *Service) Detach(ctx context.Context, leadID, tagID uint) error {
	if err := s.db.WithContext(ctx).
		Where("lead_id = ? AND tag_id = ?", leadID, tagID).
		Delete(&models.LeadTag{}).Error; err != nil {
		return fmt.Errorf("failed to detach tag: %w", err)
	}
	return nil
}

// isUniqueViolation matches unique-constraint failures across the sqlite
// and postgres drivers.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
