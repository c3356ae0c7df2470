package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bluecore-studio/crm-api/pkg/cache"
	"github.com/bluecore-studio/crm-api/pkg/models"
)

// Service handles lead business logic: CRUD, the stage machine, and the
// activity trail that stage changes and creations leave behind.
type Service struct {
	db    *gorm.DB
	cache *cache.Client
}

// NewService creates a new lead service. The cache client may be nil; it
// is only used to invalidate pipeline/analytics projections on writes.
func NewService(db *gorm.DB, cacheClient *cache.Client) *Service {
	return &Service{
		db:    db,
		cache: cacheClient,
	}
}

// allowedSorts maps sort query values to columns. Anything else falls
// back to created_at.
var allowedSorts = map[string]string{
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"company_name": "company_name",
	"deal_value":   "deal_value",
	"stage":        "stage",
	"priority":     "priority",
}

// Search returns a filtered, sorted, paginated lead list. The total is
// counted over the same predicate with no limit/offset applied.
func (s *Service) Search(ctx context.Context, req models.LeadSearchRequest) (*models.LeadListResponse, error) {
	// Set defaults
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 50
	}
	if req.Limit > 100 {
		req.Limit = 100
	}

	query := s.db.WithContext(ctx).Model(&models.Lead{})
	query = applyLeadFilters(query, req)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	sortCol, ok := allowedSorts[req.Sort]
	if !ok {
		sortCol = "created_at"
	}
	dir := "desc"
	if req.Dir == "asc" {
		dir = "asc"
	}

	offset := (req.Page - 1) * req.Limit
	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	var rows []models.Lead
	if err := query.
		Order(sortCol + " " + dir).
		Limit(req.Limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}

	return &models.LeadListResponse{
		Data:       rows,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}, nil
}

// ListAll returns every lead matching the filters, sorted like Search
// but with no pagination. The export path uses this; Search caps Limit
// at 100 and would truncate large exports.
func (s *Service) ListAll(ctx context.Context, req models.LeadSearchRequest) ([]models.Lead, error) {
	query := s.db.WithContext(ctx).Model(&models.Lead{})
	query = applyLeadFilters(query, req)

	sortCol, ok := allowedSorts[req.Sort]
	if !ok {
		sortCol = "created_at"
	}
	dir := "desc"
	if req.Dir == "asc" {
		dir = "asc"
	}

	var rows []models.Lead
	if err := query.Order(sortCol + " " + dir).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	return rows, nil
}

func applyLeadFilters(query *gorm.DB, req models.LeadSearchRequest) *gorm.DB {
	if req.Search != "" {
		query = query.Where("company_name LIKE ?", "%"+req.Search+"%")
	}
	if req.Stage != "" {
		query = query.Where("stage = ?", req.Stage)
	}
	if req.Priority != "" {
		query = query.Where("priority = ?", req.Priority)
	}
	if req.Source != "" {
		query = query.Where("source = ?", req.Source)
	}
	return query
}

// GetByID retrieves a single lead by ID.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.Lead, error) {
	var lead models.Lead
	if err := s.db.WithContext(ctx).First(&lead, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lead: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &lead, nil
}

// Create inserts a lead and its "Lead created" activity in one
// transaction, so the audit trail cannot silently miss the creation.
func (s *Service) Create(ctx context.Context, req models.CreateLeadRequest) (*models.Lead, error) {
	lead := models.Lead{
		CompanyName:    req.CompanyName,
		CompanyWebsite: req.CompanyWebsite,
		ContactName:    req.ContactName,
		ContactEmail:   req.ContactEmail,
		ContactTitle:   req.ContactTitle,
		Stage:          models.StageNew,
		Priority:       models.PriorityMedium,
		DealValue:      req.DealValue,
		Source:         models.SourceManual,
		NextFollowUp:   req.NextFollowUp,
	}
	if req.Stage != "" {
		lead.Stage = models.Stage(req.Stage)
	}
	if req.Priority != "" {
		lead.Priority = models.Priority(req.Priority)
	}
	if req.Source != "" {
		lead.Source = models.Source(req.Source)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lead).Error; err != nil {
			return err
		}
		description := fmt.Sprintf("New lead created (source: %s)", lead.Source)
		activity := models.Activity{
			LeadID:      lead.ID,
			Type:        models.ActivityNote,
			Title:       "Lead created",
			Description: &description,
		}
		return tx.Create(&activity).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.invalidateProjections(ctx)
	return &lead, nil
}

// Update applies a partial field edit. Fields outside the allow-list are
// never bound, so they are ignored by construction. updated_at refreshes
// on every call, even an empty patch.
func (s *Service) Update(ctx context.Context, id uint, req models.UpdateLeadRequest) (*models.Lead, error) {
	lead, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": time.Now()}
	if req.CompanyName != nil {
		updates["company_name"] = *req.CompanyName
	}
	if req.CompanyWebsite != nil {
		updates["company_website"] = *req.CompanyWebsite
	}
	if req.ContactName != nil {
		updates["contact_name"] = *req.ContactName
	}
	if req.ContactEmail != nil {
		updates["contact_email"] = *req.ContactEmail
	}
	if req.ContactTitle != nil {
		updates["contact_title"] = *req.ContactTitle
	}
	if req.Stage != nil {
		// Edits through this path deliberately bypass the stage_change
		// activity log; PATCH /stage is the audited path.
		updates["stage"] = *req.Stage
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.DealValue != nil {
		updates["deal_value"] = *req.DealValue
	}
	if req.Source != nil {
		updates["source"] = *req.Source
	}
	if req.LostReason != nil {
		updates["lost_reason"] = *req.LostReason
	}
	if req.NextFollowUp != nil {
		updates["next_follow_up"] = *req.NextFollowUp
	}

	if err := s.db.WithContext(ctx).Model(lead).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	s.invalidateProjections(ctx)
	return s.GetByID(ctx, id)
}

// UpdateStage moves a lead to a target stage. Any of the six stages may
// move to any other; an unknown stage fails before any write. The stage
// write and its stage_change activity commit as one transaction, and a
// no-op transition (from == to) still logs for audit completeness.
func (s *Service) UpdateStage(ctx context.Context, id uint, req models.UpdateStageRequest) (*models.Lead, error) {
	target := models.Stage(req.Stage)
	if !target.Valid() {
		return nil, fmt.Errorf("invalid stage %q: %w", req.Stage, models.ErrInvalidInput)
	}

	lead, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fromStage := lead.Stage

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"stage":      target,
			"updated_at": time.Now(),
		}
		if target == models.StageClosedLost && req.LostReason != nil && *req.LostReason != "" {
			updates["lost_reason"] = *req.LostReason
		}
		if err := tx.Model(&models.Lead{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		metadata, err := json.Marshal(map[string]string{
			"from": string(fromStage),
			"to":   string(target),
		})
		if err != nil {
			return err
		}
		meta := string(metadata)
		activity := models.Activity{
			LeadID:   id,
			Type:     models.ActivityStageChange,
			Title:    fmt.Sprintf("Stage changed: %s → %s", fromStage, target),
			Metadata: &meta,
		}
		return tx.Create(&activity).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update stage: %w", err)
	}

	s.invalidateProjections(ctx)
	return s.GetByID(ctx, id)
}

// Delete removes a lead. Activities, follow-ups, contacts, notes and tag
// links go with it via the store's cascade rules.
func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Lead{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete lead: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("lead: %w", models.ErrNotFound)
	}

	s.invalidateProjections(ctx)
	return nil
}

// ListActivities returns a lead's activity trail, newest first.
func (s *Service) ListActivities(ctx context.Context, leadID uint) ([]models.Activity, error) {
	var rows []models.Activity
	if err := s.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return rows, nil
}

// AddActivity appends a manual activity to a lead's trail. Activities are
// append-only; there is no update or single delete.
func (s *Service) AddActivity(ctx context.Context, leadID uint, req models.CreateActivityRequest) (*models.Activity, error) {
	if _, err := s.GetByID(ctx, leadID); err != nil {
		return nil, err
	}

	activityType := models.ActivityNote
	if req.Type != "" {
		activityType = models.ActivityType(req.Type)
		if !activityType.Valid() {
			return nil, fmt.Errorf("invalid activity type %q: %w", req.Type, models.ErrInvalidInput)
		}
	}

	activity := models.Activity{
		LeadID:      leadID,
		Type:        activityType,
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Metadata != nil {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("invalid activity metadata: %w", models.ErrInvalidInput)
		}
		meta := string(raw)
		activity.Metadata = &meta
	}

	if err := s.db.WithContext(ctx).Create(&activity).Error; err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}
	return &activity, nil
}

// invalidateProjections drops the cached pipeline and analytics payloads
// after a lead write.
func (s *Service) invalidateProjections(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.DeletePattern(ctx, "crm:pipeline*")
	_ = s.cache.DeletePattern(ctx, "crm:analytics*")
}
