package models

import (
	"time"
)

// Stage is a lead's pipeline stage. The set is closed: handlers validate
// membership before any value reaches the store.
type Stage string

const (
	StageNew        Stage = "new"
	StageContacted  Stage = "contacted"
	StageMeeting    Stage = "meeting"
	StageProposal   Stage = "proposal"
	StageClosedWon  Stage = "closed_won"
	StageClosedLost Stage = "closed_lost"
)

// Stages lists all pipeline stages in funnel order.
var Stages = []Stage{StageNew, StageContacted, StageMeeting, StageProposal, StageClosedWon, StageClosedLost}

// Valid reports whether s is one of the six defined stages.
func (s Stage) Valid() bool {
	for _, v := range Stages {
		if s == v {
			return true
		}
	}
	return false
}

// Priority is a lead's priority level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Source records where a lead came from.
type Source string

const (
	SourceScraper  Source = "scraper"
	SourceManual   Source = "manual"
	SourceReferral Source = "referral"
	SourceInbound  Source = "inbound"
)

// ActivityType classifies an activity log entry.
type ActivityType string

const (
	ActivityNote        ActivityType = "note"
	ActivityEmail       ActivityType = "email"
	ActivityCall        ActivityType = "call"
	ActivityMeeting     ActivityType = "meeting"
	ActivityStageChange ActivityType = "stage_change"
	ActivityOther       ActivityType = "other"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityNote, ActivityEmail, ActivityCall, ActivityMeeting, ActivityStageChange, ActivityOther:
		return true
	}
	return false
}

// Lead is a prospective client tracked through the pipeline.
type Lead struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	FundingRoundID *uint     `json:"funding_round_id" gorm:"uniqueIndex"`
	CompanyName    string    `json:"company_name" gorm:"not null;index"`
	CompanyWebsite *string   `json:"company_website"`
	ContactName    *string   `json:"contact_name"`
	ContactEmail   *string   `json:"contact_email"`
	ContactTitle   *string   `json:"contact_title"`
	Stage          Stage     `json:"stage" gorm:"type:text;not null;default:new;index"`
	Priority       Priority  `json:"priority" gorm:"type:text;not null;default:medium"`
	DealValue      *float64  `json:"deal_value"`
	Source         Source    `json:"source" gorm:"type:text;default:manual"`
	LostReason     *string   `json:"lost_reason"`
	NextFollowUp   *string   `json:"next_follow_up"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Activities []Activity    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	FollowUps  []FollowUp    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Contacts   []LeadContact `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Notes      []LeadNote    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Tags       []Tag         `json:"-" gorm:"many2many:lead_tags;constraint:OnDelete:CASCADE"`
}

// Activity is an immutable audit entry attached to a lead. There is no
// update path; rows disappear only via the owning lead's cascade.
type Activity struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	LeadID      uint         `json:"lead_id" gorm:"not null;index"`
	Type        ActivityType `json:"type" gorm:"type:text;not null"`
	Title       string       `json:"title" gorm:"not null"`
	Description *string      `json:"description"`
	Metadata    *string      `json:"metadata"`
	CreatedAt   time.Time    `json:"created_at" gorm:"autoCreateTime"`
}

// FollowUp is a scheduled reminder tied to a lead. DueDate is an ISO date
// string (YYYY-MM-DD) so lexicographic order matches chronological order.
type FollowUp struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	LeadID    uint      `json:"lead_id" gorm:"not null;index"`
	DueDate   string    `json:"due_date" gorm:"not null"`
	Title     string    `json:"title" gorm:"not null"`
	Completed bool      `json:"completed" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// LeadContact is an additional contact person scoped to a lead.
type LeadContact struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	LeadID    uint      `json:"lead_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"not null"`
	Email     *string   `json:"email"`
	Title     *string   `json:"title"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// LeadNote is a free-form note scoped to a lead.
type LeadNote struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	LeadID     uint      `json:"lead_id" gorm:"not null;index"`
	Content    string    `json:"content" gorm:"not null"`
	AuthorName *string   `json:"author_name"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Tag is a globally unique label attachable to many leads.
type Tag struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"uniqueIndex;not null"`
	Color string `json:"color" gorm:"not null;default:#2176FF"`
}

// LeadTag joins leads and tags; the composite key allows at most one link
// per (lead, tag) pair.
type LeadTag struct {
	LeadID uint `json:"lead_id" gorm:"primaryKey"`
	TagID  uint `json:"tag_id" gorm:"primaryKey"`
}

// FundingRound is scraped reference data about a company raising capital.
// Investors and CategoryTags hold JSON-encoded string arrays; decoding
// happens at the service boundary, never in SQL.
type FundingRound struct {
	ID                    uint      `json:"id" gorm:"primaryKey"`
	CompanyName           string    `json:"company_name" gorm:"not null"`
	CompanyNameNormalized string    `json:"company_name_normalized" gorm:"not null;index"`
	RoundType             string    `json:"round_type" gorm:"not null"`
	AmountUSD             *float64  `json:"amount_usd" gorm:"column:amount_usd"`
	Date                  *string   `json:"date"`
	Investors             string    `json:"-" gorm:"not null;default:[]"`
	CategoryTags          string    `json:"-" gorm:"not null;default:[]"`
	Source                string    `json:"source" gorm:"not null"`
	SourceURL             *string   `json:"source_url"`
	CompanyWebsite        *string   `json:"company_website"`
	Description           *string   `json:"description"`
	CreatedAt             time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt             time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// DailyReport is a team member's work-log entry.
type DailyReport struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name" gorm:"not null"`
	Date            string    `json:"date" gorm:"not null"`
	TasksCompleted  string    `json:"tasks_completed" gorm:"not null"`
	TasksInProgress *string   `json:"tasks_in_progress"`
	Blockers        *string   `json:"blockers"`
	HoursWorked     float64   `json:"hours_worked" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// DocumentCategory classifies a data-room document.
type DocumentCategory string

const (
	CategoryFinancials DocumentCategory = "financials"
	CategoryLegal      DocumentCategory = "legal"
	CategoryProduct    DocumentCategory = "product"
	CategoryMetrics    DocumentCategory = "metrics"
	CategoryOther      DocumentCategory = "other"
)

// Valid reports whether c is a known document category.
func (c DocumentCategory) Valid() bool {
	switch c {
	case CategoryFinancials, CategoryLegal, CategoryProduct, CategoryMetrics, CategoryOther:
		return true
	}
	return false
}

// DataRoomDocument is a shared file or link in the data room.
type DataRoomDocument struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	Name        string           `json:"name" gorm:"not null"`
	Description *string          `json:"description"`
	Category    DocumentCategory `json:"category" gorm:"type:text;not null;default:other"`
	FileURL     string           `json:"file_url" gorm:"not null"`
	FileType    *string          `json:"file_type"`
	SharedBy    string           `json:"shared_by" gorm:"not null"`
	CreatedAt   time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}
