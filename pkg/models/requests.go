package models

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// LeadSearchRequest captures the query parameters of GET /api/crm/leads.
type LeadSearchRequest struct {
	Search   string `query:"search"`
	Stage    string `query:"stage" validate:"omitempty,oneof=new contacted meeting proposal closed_won closed_lost"`
	Priority string `query:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Source   string `query:"source" validate:"omitempty,oneof=scraper manual referral inbound"`
	Sort     string `query:"sort"`
	Dir      string `query:"dir" validate:"omitempty,oneof=asc desc"`
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
}

// LeadListResponse is the paginated lead list payload.
type LeadListResponse struct {
	Data       []Lead `json:"data"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
}

// CreateLeadRequest creates a lead by hand (as opposed to the funding import).
type CreateLeadRequest struct {
	CompanyName    string   `json:"company_name" validate:"required"`
	CompanyWebsite *string  `json:"company_website"`
	ContactName    *string  `json:"contact_name"`
	ContactEmail   *string  `json:"contact_email" validate:"omitempty,email"`
	ContactTitle   *string  `json:"contact_title"`
	Stage          string   `json:"stage" validate:"omitempty,oneof=new contacted meeting proposal closed_won closed_lost"`
	Priority       string   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DealValue      *float64 `json:"deal_value"`
	Source         string   `json:"source" validate:"omitempty,oneof=scraper manual referral inbound"`
	NextFollowUp   *string  `json:"next_follow_up"`
}

// UpdateLeadRequest is the PATCH body for field edits. Pointers distinguish
// "absent" from "set to empty"; anything not listed here is ignored.
type UpdateLeadRequest struct {
	CompanyName    *string  `json:"company_name"`
	CompanyWebsite *string  `json:"company_website"`
	ContactName    *string  `json:"contact_name"`
	ContactEmail   *string  `json:"contact_email"`
	ContactTitle   *string  `json:"contact_title"`
	Stage          *string  `json:"stage" validate:"omitempty,oneof=new contacted meeting proposal closed_won closed_lost"`
	Priority       *string  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DealValue      *float64 `json:"deal_value"`
	Source         *string  `json:"source" validate:"omitempty,oneof=scraper manual referral inbound"`
	LostReason     *string  `json:"lost_reason"`
	NextFollowUp   *string  `json:"next_follow_up"`
}

// UpdateStageRequest moves a lead to another pipeline stage.
type UpdateStageRequest struct {
	Stage      string  `json:"stage" validate:"required"`
	LostReason *string `json:"lost_reason"`
}

// CreateActivityRequest logs a manual activity on a lead.
type CreateActivityRequest struct {
	Type        string         `json:"type" validate:"omitempty,oneof=note email call meeting stage_change other"`
	Title       string         `json:"title" validate:"required"`
	Description *string        `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

// CreateFollowUpRequest schedules a follow-up under a lead.
type CreateFollowUpRequest struct {
	DueDate string `json:"due_date" validate:"required"`
	Title   string `json:"title" validate:"required"`
}

// UpdateFollowUpRequest is the PATCH body for a follow-up.
type UpdateFollowUpRequest struct {
	Completed *bool   `json:"completed"`
	DueDate   *string `json:"due_date"`
	Title     *string `json:"title"`
}

// FollowUpWithCompany joins a follow-up with its lead's company name for
// the global open-follow-ups list.
type FollowUpWithCompany struct {
	ID          uint   `json:"id"`
	LeadID      uint   `json:"lead_id"`
	DueDate     string `json:"due_date"`
	Title       string `json:"title"`
	Completed   bool   `json:"completed"`
	CreatedAt   string `json:"created_at"`
	CompanyName string `json:"company_name"`
}

// CreateContactRequest adds a contact person to a lead.
type CreateContactRequest struct {
	Name  string  `json:"name" validate:"required"`
	Email *string `json:"email" validate:"omitempty,email"`
	Title *string `json:"title"`
	Phone *string `json:"phone"`
}

// CreateNoteRequest adds a note to a lead.
type CreateNoteRequest struct {
	Content    string  `json:"content" validate:"required"`
	AuthorName *string `json:"author_name"`
}

// CreateTagRequest creates a global tag.
type CreateTagRequest struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color"`
}

// FundingSearchRequest captures the query parameters of GET /api/crm/funding.
type FundingSearchRequest struct {
	Search    string `query:"search"`
	RoundType string `query:"round_type"`
	MinAmount string `query:"min_amount"`
	MaxAmount string `query:"max_amount"`
	Category  string `query:"category"`
	Sort      string `query:"sort"`
	Dir       string `query:"dir" validate:"omitempty,oneof=asc desc"`
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
}

// FundingRoundResponse is a funding round with its list columns decoded.
type FundingRoundResponse struct {
	FundingRound
	Investors    []string `json:"investors"`
	CategoryTags []string `json:"category_tags"`
}

// FundingListResponse is the paginated funding browser payload.
type FundingListResponse struct {
	Data       []FundingRoundResponse `json:"data"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"totalPages"`
	RoundTypes []string               `json:"roundTypes"`
}

// CreateFundingRoundRequest ingests a scraped funding event.
type CreateFundingRoundRequest struct {
	CompanyName    string   `json:"company_name" validate:"required"`
	RoundType      string   `json:"round_type" validate:"required"`
	AmountUSD      *float64 `json:"amount_usd"`
	Date           *string  `json:"date"`
	Investors      []string `json:"investors"`
	CategoryTags   []string `json:"category_tags"`
	Source         string   `json:"source" validate:"required"`
	SourceURL      *string  `json:"source_url"`
	CompanyWebsite *string  `json:"company_website"`
	Description    *string  `json:"description"`
}

// CreateDailyReportRequest submits a daily work report.
type CreateDailyReportRequest struct {
	Name            string  `json:"name" validate:"required"`
	Date            string  `json:"date" validate:"required"`
	TasksCompleted  string  `json:"tasks_completed" validate:"required"`
	TasksInProgress *string `json:"tasks_in_progress"`
	Blockers        *string `json:"blockers"`
	HoursWorked     float64 `json:"hours_worked" validate:"required,gt=0"`
}

// UpdateDailyReportRequest is the PATCH body for a daily report.
type UpdateDailyReportRequest struct {
	Name            *string  `json:"name"`
	Date            *string  `json:"date"`
	TasksCompleted  *string  `json:"tasks_completed"`
	TasksInProgress *string  `json:"tasks_in_progress"`
	Blockers        *string  `json:"blockers"`
	HoursWorked     *float64 `json:"hours_worked"`
}

// CreateDocumentRequest registers a data-room document.
type CreateDocumentRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	Category    string  `json:"category" validate:"omitempty,oneof=financials legal product metrics other"`
	FileURL     string  `json:"file_url" validate:"required"`
	FileType    *string `json:"file_type"`
	SharedBy    string  `json:"shared_by" validate:"required"`
}

// UpdateDocumentRequest is the PATCH body for a data-room document.
type UpdateDocumentRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category" validate:"omitempty,oneof=financials legal product metrics other"`
	FileURL     *string `json:"file_url"`
	FileType    *string `json:"file_type"`
	SharedBy    *string `json:"shared_by"`
}

// LoginRequest carries the shared CRM password.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}
