package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/bluecore-studio/crm-api/pkg/api/errors"
	"github.com/bluecore-studio/crm-api/pkg/followups"
	"github.com/bluecore-studio/crm-api/pkg/models"
)

// FollowUpHandler handles follow-up scheduling.
type FollowUpHandler struct {
	followUpService *followups.Service
}

// NewFollowUpHandler creates a new follow-up handler.
func NewFollowUpHandler(followUpService *followups.Service) *FollowUpHandler {
	return &FollowUpHandler{followUpService: followUpService}
}

// Create schedules a follow-up under a lead.
func (h *FollowUpHandler) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	leadID, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid lead ID")
	}

	var req models.CreateFollowUpRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, "due_date and title are required")
	}

	followUp, err := h.followUpService.Create(ctx, leadID, req)
	if err != nil {
		return apierrors.ServiceError(c, "Lead", err)
	}
	return c.JSON(http.StatusCreated, followUp)
}

// ListByLead returns a lead's follow-ups.
func (h *FollowUpHandler) ListByLead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	leadID, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid lead ID")
	}

	rows, err := h.followUpService.ListByLead(ctx, leadID)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// ListOpen returns every open follow-up across leads, earliest first.
func (h *FollowUpHandler) ListOpen(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rows, err := h.followUpService.ListOpen(ctx)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Update applies a partial edit to a follow-up.
func (h *FollowUpHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid follow-up ID")
	}

	var req models.UpdateFollowUpRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid request body")
	}

	followUp, err := h.followUpService.Update(ctx, id, req)
	if err != nil {
		return apierrors.ServiceError(c, "Follow-up", err)
	}
	return c.JSON(http.StatusOK, followUp)
}

// Delete removes a follow-up.
func (h *FollowUpHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid follow-up ID")
	}

	if err := h.followUpService.Delete(ctx, id); err != nil {
		return apierrors.ServiceError(c, "Follow-up", err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
