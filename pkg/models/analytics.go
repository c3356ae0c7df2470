package models

// CategoryCount ranks a decoded category tag by how often it appears.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RoundTypeStat aggregates funding rounds of one round type.
type RoundTypeStat struct {
	RoundType string  `json:"round_type"`
	Count     int64   `json:"count"`
	TotalUSD  float64 `json:"total_usd"`
}

// MonthStat aggregates funding rounds announced in one calendar month.
type MonthStat struct {
	Month    string  `json:"month"`
	Count    int64   `json:"count"`
	TotalUSD float64 `json:"total_usd"`
}

// FundingStatsResponse is the funding dataset summary.
type FundingStatsResponse struct {
	TotalRounds     int64           `json:"totalRounds"`
	TotalAmountUSD  float64         `json:"totalAmountUsd"`
	AvgAmountUSD    float64         `json:"avgAmountUsd"`
	UniqueCompanies int64           `json:"uniqueCompanies"`
	ByRoundType     []RoundTypeStat `json:"byRoundType"`
	ByMonth         []MonthStat     `json:"byMonth"`
	TopCategories   []CategoryCount `json:"topCategories"`
}

// PipelineResponse is the kanban payload: every stage key is present even
// when its column is empty.
type PipelineResponse struct {
	Pipeline map[Stage][]Lead `json:"pipeline"`
	Stages   []Stage          `json:"stages"`
}

// DashboardKPIs are the headline numbers on the analytics dashboard.
type DashboardKPIs struct {
	TotalLeads         int64   `json:"totalLeads"`
	TotalPipelineValue float64 `json:"totalPipelineValue"`
	WonDeals           int64   `json:"wonDeals"`
	WonValue           float64 `json:"wonValue"`
	ActiveLeads        int64   `json:"activeLeads"`
	ConversionRate     string  `json:"conversionRate"`
}

// FunnelStage is one bar of the stage funnel.
type FunnelStage struct {
	Stage Stage `json:"stage"`
	Count int64 `json:"count"`
}

// SourceCount groups leads by acquisition source.
type SourceCount struct {
	Source Source `json:"source"`
	Count  int64  `json:"count"`
}

// PriorityCount groups leads by priority.
type PriorityCount struct {
	Priority Priority `json:"priority"`
	Count    int64    `json:"count"`
}

// ActivityVolume is one day's activity count in the 30-day volume chart.
type ActivityVolume struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// RecentActivity joins an activity with its lead's company name.
type RecentActivity struct {
	ID          uint    `json:"id"`
	LeadID      uint    `json:"lead_id"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"created_at"`
	CompanyName string  `json:"company_name"`
}

// DashboardResponse is the full analytics dashboard payload.
type DashboardResponse struct {
	KPIs              DashboardKPIs         `json:"kpis"`
	Funnel            []FunnelStage         `json:"funnel"`
	RecentActivities  []RecentActivity      `json:"recentActivities"`
	UpcomingFollowUps []FollowUpWithCompany `json:"upcomingFollowUps"`
	BySource          []SourceCount         `json:"bySource"`
	ByPriority        []PriorityCount       `json:"byPriority"`
	ActivityVolume    []ActivityVolume      `json:"activityVolume"`
}
