package funding

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/bluecore-studio/crm-api/pkg/models"
)

const statsCacheKey = "crm:analytics:funding-stats"

type statsRow struct {
	Date         *string
	AmountUSD    *float64
	RoundType    string
	CategoryTags string
}

// Stats summarizes the funding dataset: totals, per-round-type and
// per-month aggregates, and the ten most common category tags. Tags live
// in JSON columns, so the category and month rollups run in the
// application rather than in SQL.
func (s *Service) Stats(ctx context.Context) (*models.FundingStatsResponse, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, statsCacheKey); err == nil && raw != "" {
			var cached models.FundingStatsResponse
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	var rows []statsRow
	if err := s.db.WithContext(ctx).
		Model(&models.FundingRound{}).
		Select("date, amount_usd, round_type, category_tags").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load funding rounds: %w", err)
	}

	var uniqueCompanies int64
	if err := s.db.WithContext(ctx).
		Model(&models.FundingRound{}).
		Distinct("company_name_normalized").
		Count(&uniqueCompanies).Error; err != nil {
		return nil, fmt.Errorf("failed to count companies: %w", err)
	}

	stats := &models.FundingStatsResponse{
		TotalRounds:     int64(len(rows)),
		UniqueCompanies: uniqueCompanies,
	}

	byType := map[string]*models.RoundTypeStat{}
	byMonth := map[string]*models.MonthStat{}
	categories := map[string]int{}
	var amountCount int64

	cutoff := time.Now().AddDate(0, -11, 0).Format("2006-01")
	for _, row := range rows {
		amount := 0.0
		if row.AmountUSD != nil {
			amount = *row.AmountUSD
			stats.TotalAmountUSD += amount
			amountCount++
		}

		t, ok := byType[row.RoundType]
		if !ok {
			t = &models.RoundTypeStat{RoundType: row.RoundType}
			byType[row.RoundType] = t
		}
		t.Count++
		t.TotalUSD += amount

		if row.Date != nil && len(*row.Date) >= 7 {
			month := (*row.Date)[:7]
			if month >= cutoff {
				m, ok := byMonth[month]
				if !ok {
					m = &models.MonthStat{Month: month}
					byMonth[month] = m
				}
				m.Count++
				m.TotalUSD += amount
			}
		}

		for _, tag := range decodeList(row.CategoryTags) {
			categories[tag]++
		}
	}

	if amountCount > 0 {
		stats.AvgAmountUSD = stats.TotalAmountUSD / float64(amountCount)
	}

	stats.ByRoundType = make([]models.RoundTypeStat, 0, len(byType))
	for _, t := range byType {
		stats.ByRoundType = append(stats.ByRoundType, *t)
	}
	sort.Slice(stats.ByRoundType, func(i, j int) bool {
		return stats.ByRoundType[i].Count > stats.ByRoundType[j].Count
	})

	stats.ByMonth = make([]models.MonthStat, 0, len(byMonth))
	for _, m := range byMonth {
		stats.ByMonth = append(stats.ByMonth, *m)
	}
	sort.Slice(stats.ByMonth, func(i, j int) bool {
		return stats.ByMonth[i].Month < stats.ByMonth[j].Month
	})

	stats.TopCategories = sortCategories(categories, 10)

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			_ = s.cache.Set(ctx, statsCacheKey, string(raw), 10*time.Minute)
		}
	}
	return stats, nil
}
