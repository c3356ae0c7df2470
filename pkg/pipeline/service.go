package pipeline

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
	cacheKey = "crm:pipeline"
	cacheTTL = 5 * time.Minute
)

// Service builds the kanban board view of the pipeline.
type Service struct {
	db    *gorm.DB
	cache *cache.Client
}

// NewService creates a new pipeline service. The cache client may be nil.
func NewService(db *gorm.DB, cacheClient *cache.Client) *Service {
	return &Service{db: db, cache: cacheClient}
}

// Board partitions every lead into its stage column. All six stage keys
// are always present, each holding an array (possibly empty) ordered by
// least-recently-touched first so stale leads surface at the top.
func (s *Service) Board(ctx context.Context) (*models.PipelineResponse, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil && raw != "" {
			var cached models.PipelineResponse
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	var leads []models.Lead
	if err := s.db.WithContext(ctx).
		Order("updated_at ASC").
		Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}

	board := &models.PipelineResponse{
		Pipeline: make(map[models.Stage][]models.Lead, len(models.Stages)),
		Stages:   models.Stages,
	}
	for _, stage := range models.Stages {
		board.Pipeline[stage] = []models.Lead{}
	}
	for _, lead := range leads {
		board.Pipeline[lead.Stage] = append(board.Pipeline[lead.Stage], lead)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(board); err == nil {
			_ = s.cache.Set(ctx, cacheKey, string(raw), cacheTTL)
		}
	}
	return board, nil
}
