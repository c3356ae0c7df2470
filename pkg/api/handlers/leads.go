package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/bluecore-studio/crm-api/pkg/api/errors"
	"github.com/bluecore-studio/crm-api/pkg/export"
	"github.com/bluecore-studio/crm-api/pkg/leads"
	"github.com/bluecore-studio/crm-api/pkg/models"
)

// LeadHandler handles lead CRUD, the stage machine, the activity trail,
// and exports.
type LeadHandler struct {
	leadService   *leads.Service
	exportService *export.Service
}

// NewLeadHandler creates a new lead handler.
func NewLeadHandler(leadService *leads.Service, exportService *export.Service) *LeadHandler {
	return &LeadHandler{
		leadService:   leadService,
		exportService: exportService,
	}
}

// List returns a filtered, paginated lead list.
func (h *LeadHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.LeadSearchRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid query parameters")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid filter value")
	}

	results, err := h.leadService.Search(ctx, req)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, results)
}

// Get returns one lead.
func (h *LeadHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid lead ID")
	}

	lead, err := h.leadService.GetByID(ctx, id)
	if err != nil {
		return apierrors.ServiceError(c, "Lead", err)
	}
	return c.JSON(http.StatusOK, lead)
}

// Create adds a lead by hand.
func (h *LeadHandler) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.CreateLeadRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, "company_name is required")
	}

	lead, err := h.leadService.Create(ctx, req)
	if err != nil {
		return apierrors.ServiceError(c, "Lead", err)
	}
	return c.JSON(http.StatusCreated, lead)
}

// Update applies a partial field edit.
func (h *LeadHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid lead ID")
	}

	var req models.UpdateLeadRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid field value")
	}

	lead, err := h.leadService.Update(ctx, id, req)
	if err != nil {
		return apierrors.ServiceError(c, "Lead", err)
	}
	return c.JSON(http.StatusOK, lead)
}

// UpdateStage moves a lead to another stage and logs the transition.
func (h *LeadHandler) UpdateStage(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid lead ID")
	}

	var req models.UpdateStageRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, "stage is required")
	}

	lead, err := h.leadService.UpdateStage(ctx, id, req)
	if err != nil {
		return apierrors.ServiceError(c, "Lead", err)
	}
	return c.JSON(http.StatusOK, lead)
}

// Delete removes a lead and all of its child records.
func (h *LeadHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid lead ID")
	}

	if err := h.leadService.Delete(ctx, id); err != nil {
		return apierrors.ServiceError(c, "Lead", err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// ListActivities returns a lead's activity trail, newest first.
func (h *LeadHandler) ListActivities(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid lead ID")
	}

	activities, err := h.leadService.ListActivities(ctx, id)
	if err != nil {
		return apierrors.ServiceError(c, "Lead", err)
	}
	return c.JSON(http.StatusOK, activities)
}

// CreateActivity logs a manual activity on a lead.
func (h *LeadHandler) CreateActivity(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid lead ID")
	}

	var req models.CreateActivityRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, "title is required")
	}

	activity, err := h.leadService.AddActivity(ctx, id, req)
	if err != nil {
		return apierrors.ServiceError(c, "Lead", err)
	}
	return c.JSON(http.StatusCreated, activity)
}

// Export streams the filtered lead list as a CSV or Excel download.
func (h *LeadHandler) Export(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	var req models.LeadSearchRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid query parameters")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid filter value")
	}

	format := c.QueryParam("format")
	if format == "" {
		format = "csv"
	}

	path, err := h.exportService.Export(ctx, format, req)
	if err != nil {
		return apierrors.ServiceError(c, "Export", err)
	}
	return c.Attachment(path, filepath.Base(path))
}
