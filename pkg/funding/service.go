package funding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/bluecore-studio/crm-api/pkg/cache"
	"github.com/bluecore-studio/crm-api/pkg/models"
)

// Service owns the funding-rounds dataset: browsing, aggregate stats,
// ingest of scraped rounds, and the one-way import bridge into leads.
type Service struct {
	db    *gorm.DB
	cache *cache.Client
}

// NewService creates a new funding service. The cache client may be nil.
func NewService(db *gorm.DB, cacheClient *cache.Client) *Service {
	return &Service{db: db, cache: cacheClient}
}

var allowedSorts = map[string]string{
	"date":         "date",
	"amount_usd":   "amount_usd",
	"company_name": "company_name",
	"created_at":   "created_at",
}

// Search returns a filtered, paginated slice of the funding dataset with
// investors/category tags decoded and the distinct round-type list.
func (s *Service) Search(ctx context.Context, req models.FundingSearchRequest) (*models.FundingListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 50
	}
	if req.Limit > 100 {
		req.Limit = 100
	}

	query := s.db.WithContext(ctx).Model(&models.FundingRound{})
	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("company_name LIKE ? OR description LIKE ?", like, like)
	}
	if req.RoundType != "" {
		query = query.Where("round_type = ?", req.RoundType)
	}
	if req.MinAmount != "" {
		if min, err := strconv.ParseFloat(req.MinAmount, 64); err == nil {
			query = query.Where("amount_usd >= ?", min)
		}
	}
	if req.MaxAmount != "" {
		if max, err := strconv.ParseFloat(req.MaxAmount, 64); err == nil {
			query = query.Where("amount_usd <= ?", max)
		}
	}
	if req.Category != "" {
		query = query.Where("category_tags LIKE ?", "%"+req.Category+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count funding rounds: %w", err)
	}

	sortCol, ok := allowedSorts[req.Sort]
	if !ok {
		sortCol = "date"
	}
	dir := "desc"
	if req.Dir == "asc" {
		dir = "asc"
	}

	var rows []models.FundingRound
	if err := query.
		Order(sortCol + " " + dir).
		Limit(req.Limit).
		Offset((req.Page - 1) * req.Limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query funding rounds: %w", err)
	}

	var roundTypes []string
	if err := s.db.WithContext(ctx).
		Model(&models.FundingRound{}).
		Distinct("round_type").
		Order("round_type ASC").
		Pluck("round_type", &roundTypes).Error; err != nil {
		return nil, fmt.Errorf("failed to list round types: %w", err)
	}

	data := make([]models.FundingRoundResponse, len(rows))
	for i, r := range rows {
		data[i] = toRoundResponse(r)
	}

	return &models.FundingListResponse{
		Data:       data,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: int((total + int64(req.Limit) - 1) / int64(req.Limit)),
		RoundTypes: roundTypes,
	}, nil
}

// GetByID retrieves a single funding round.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.FundingRound, error) {
	var round models.FundingRound
	if err := s.db.WithContext(ctx).First(&round, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("funding round: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get funding round: %w", err)
	}
	return &round, nil
}

// Ingest stores a scraped funding event, normalizing the company name
// for later dedup queries.
func (s *Service) Ingest(ctx context.Context, req models.CreateFundingRoundRequest) (*models.FundingRound, error) {
	round := models.FundingRound{
		CompanyName:           req.CompanyName,
		CompanyNameNormalized: NormalizeCompanyName(req.CompanyName),
		RoundType:             req.RoundType,
		AmountUSD:             req.AmountUSD,
		Date:                  req.Date,
		Investors:             encodeList(req.Investors),
		CategoryTags:          encodeList(req.CategoryTags),
		Source:                req.Source,
		SourceURL:             req.SourceURL,
		CompanyWebsite:        req.CompanyWebsite,
		Description:           req.Description,
	}
	if err := s.db.WithContext(ctx).Create(&round).Error; err != nil {
		return nil, fmt.Errorf("failed to create funding round: %w", err)
	}
	return &round, nil
}

// ImportLead converts a funding round into exactly one lead. A second
// import of the same round fails with a conflict and returns the lead
// that already exists; the unique index on leads.funding_round_id backs
// the application-level pre-check, so a racing pair of imports cannot
// both insert.
func (s *Service) ImportLead(ctx context.Context, fundingID uint) (*models.Lead, error) {
	round, err := s.GetByID(ctx, fundingID)
	if err != nil {
		return nil, err
	}

	var existing models.Lead
	err = s.db.WithContext(ctx).Where("funding_round_id = ?", fundingID).First(&existing).Error
	switch {
	case err == nil:
		return &existing, fmt.Errorf("already imported: %w", models.ErrConflict)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to check existing import: %w", err)
	}

	lead := models.Lead{
		FundingRoundID: &round.ID,
		CompanyName:    round.CompanyName,
		CompanyWebsite: round.CompanyWebsite,
		Stage:          models.StageNew,
		Priority:       models.PriorityMedium,
		Source:         models.SourceScraper,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lead).Error; err != nil {
			return err
		}

		description := fmt.Sprintf("Imported from %s round", round.RoundType)
		if round.AmountUSD != nil {
			description = fmt.Sprintf("Imported from %s round ($%.1fM)", round.RoundType, *round.AmountUSD/1_000_000)
		}
		metadata, err := json.Marshal(map[string]any{
			"funding_round_id": round.ID,
			"round_type":       round.RoundType,
			"amount":           round.AmountUSD,
		})
		if err != nil {
			return err
		}
		meta := string(metadata)
		activity := models.Activity{
			LeadID:      lead.ID,
			Type:        models.ActivityNote,
			Title:       "Lead imported from funding data",
			Description: &description,
			Metadata:    &meta,
		}
		return tx.Create(&activity).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import funding round: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.DeletePattern(ctx, "crm:pipeline*")
		_ = s.cache.DeletePattern(ctx, "crm:analytics*")
	}
	return &lead, nil
}

// toRoundResponse decodes the serialized list columns at the boundary.
func toRoundResponse(r models.FundingRound) models.FundingRoundResponse {
	return models.FundingRoundResponse{
		FundingRound: r,
		Investors:    decodeList(r.Investors),
		CategoryTags: decodeList(r.CategoryTags),
	}
}

func encodeList(values []string) string {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func decodeList(raw string) []string {
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil || values == nil {
		return []string{}
	}
	return values
}

// NormalizeCompanyName lowercases a name, strips diacritics, and drops
// everything but letters, digits and spaces, so "Café Müller GmbH" and
// "cafe muller gmbh" collide for dedup purposes.
func NormalizeCompanyName(name string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// sortCategories is used by Stats to rank decoded category tags.
func sortCategories(counts map[string]int, top int) []models.CategoryCount {
	ranked := make([]models.CategoryCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, models.CategoryCount{Name: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > top {
		ranked = ranked[:top]
	}
	return ranked
}
