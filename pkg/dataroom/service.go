package dataroom

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gorm.io/gorm"

	"github.com/bluecore-studio/crm-api/pkg/models"
	"github.com/bluecore-studio/crm-api/pkg/storage"
)

// Service manages the shared data-room document registry. Documents are
// either uploaded files or external links; both end up as rows pointing
// at a file_url.
type Service struct {
	db    *gorm.DB
	store storage.Storage
}

// NewService creates a new data-room service.
func NewService(db *gorm.DB, store storage.Storage) *Service {
	return &Service{db: db, store: store}
}

// List returns documents, optionally filtered by category, newest first.
func (s *Service) List(ctx context.Context, category string) ([]models.DataRoomDocument, error) {
	query := s.db.WithContext(ctx).Model(&models.DataRoomDocument{})
	if category != "" {
		if !models.DocumentCategory(category).Valid() {
			return nil, fmt.Errorf("unknown category %q: %w", category, models.ErrInvalidInput)
		}
		query = query.Where("category = ?", category)
	}

	var rows []models.DataRoomDocument
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return rows, nil
}

// Create registers a document whose file already lives somewhere (an
// external link, or a previously uploaded file).
func (s *Service) Create(ctx context.Context, req models.CreateDocumentRequest) (*models.DataRoomDocument, error) {
	doc := models.DataRoomDocument{
		Name:        req.Name,
		Description: req.Description,
		Category:    models.CategoryOther,
		FileURL:     req.FileURL,
		FileType:    req.FileType,
		SharedBy:    req.SharedBy,
	}
	if req.Category != "" {
		doc.Category = models.DocumentCategory(req.Category)
	}

	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return &doc, nil
}

// Upload stores the file through the configured backend and registers a
// document row pointing at it. Callers enforce the size cap before the
// body is read; the backend re-caps the copy as a backstop.
func (s *Service) Upload(ctx context.Context, originalName, contentType string, body io.Reader, req models.CreateDocumentRequest) (*models.DataRoomDocument, error) {
	if s.store == nil {
		return nil, fmt.Errorf("uploads are not configured: %w", models.ErrInvalidInput)
	}

	filename := storage.SafeFilename(originalName)
	url, err := s.store.Save(ctx, filename, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	req.FileURL = url
	if req.FileType == nil && contentType != "" {
		req.FileType = &contentType
	}
	if req.Name == "" {
		req.Name = originalName
	}
	return s.Create(ctx, req)
}

// Update applies a partial edit to a document's metadata.
func (s *Service) Update(ctx context.Context, id uint, req models.UpdateDocumentRequest) (*models.DataRoomDocument, error) {
	var doc models.DataRoomDocument
	if err := s.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.FileURL != nil {
		updates["file_url"] = *req.FileURL
	}
	if req.FileType != nil {
		updates["file_type"] = req.FileType
	}
	if req.SharedBy != nil {
		updates["shared_by"] = *req.SharedBy
	}
	if len(updates) == 0 {
		return &doc, nil
	}

	if err := s.db.WithContext(ctx).Model(&doc).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	if err := s.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload document: %w", err)
	}
	return &doc, nil
}

// Delete removes a document row. The underlying file is kept; the
// registry is the source of truth for what is visible, not for what is
// stored.
func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.DataRoomDocument{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("document: %w", models.ErrNotFound)
	}
	return nil
}
