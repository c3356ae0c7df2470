package contacts

import (
	"context"
	"fmt"

	"github.com/nyaruka/phonenumbers"
	"gorm.io/gorm"

	"github.com/bluecore-studio/crm-api/pkg/models"
)

// Service manages the contact people attached to a lead.
type Service struct {
	db            *gorm.DB
	defaultRegion string
}

// NewService creates a new contact service. defaultRegion is the ISO
// country code used to parse phone numbers without a country prefix.
func NewService(db *gorm.DB, defaultRegion string) *Service {
	if defaultRegion == "" {
		defaultRegion = "US"
	}
	return &Service{db: db, defaultRegion: defaultRegion}
}

// Create adds a contact under a lead. Phone numbers are normalized to
// E.164 when they parse; unparseable input is stored as given.
func (s *Service) Create(ctx context.Context, leadID uint, req models.CreateContactRequest) (*models.LeadContact, error) {
	if err := leadExists(s.db.WithContext(ctx), leadID); err != nil {
		return nil, err
	}

	contact := models.LeadContact{
		LeadID: leadID,
		Name:   req.Name,
		Email:  req.Email,
		Title:  req.Title,
		Phone:  s.normalizePhone(req.Phone),
	}
	if err := s.db.WithContext(ctx).Create(&contact).Error; err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return &contact, nil
}

// ListByLead returns a lead's contacts, newest first.
func (s *Service) ListByLead(ctx context.Context, leadID uint) ([]models.LeadContact, error) {
	var rows []models.LeadContact
	if err := s.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return rows, nil
}

// Delete removes a contact scoped by its lead, so an ID from another
// lead's contact cannot be deleted through the wrong URL.
func (s *Service) Delete(ctx context.Context, leadID, contactID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND lead_id = ?", contactID, leadID).
		Delete(&models.LeadContact{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete contact: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("contact: %w", models.ErrNotFound)
	}
	return nil
}

func (s *Service) normalizePhone(phone *string) *string {
	if phone == nil || *phone == "" {
		return phone
	}
	parsed, err := phonenumbers.Parse(*phone, s.defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return phone
	}
	formatted := phonenumbers.Format(parsed, phonenumbers.E164)
	return &formatted
}

func leadExists(tx *gorm.DB, leadID uint) error {
	var count int64
	if err := tx.Model(&models.Lead{}).Where("id = ?", leadID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check lead existence: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("lead: %w", models.ErrNotFound)
	}
	return nil
}
