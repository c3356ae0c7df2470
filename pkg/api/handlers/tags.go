package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/bluecore-studio/crm-api/pkg/api/errors"
	"github.com/bluecore-studio/crm-api/pkg/models"
	"github.com/bluecore-studio/crm-api/pkg/tags"
)

// TagHandler handles the global tag set and lead-tag links.
type TagHandler struct {
	tagService *tags.Service
}

// NewTagHandler creates a new tag handler.
func NewTagHandler(tagService *tags.Service) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// List returns all tags.
func (h *TagHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rows, err := h.tagService.List(ctx)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Create adds a global tag.
func (h *TagHandler) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.CreateTagRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, "name is required")
	}

	tag, err := h.tagService.Create(ctx, req)
	if err != nil {
		return apierrors.ServiceError(c, "Tag", err)
	}
	return c.JSON(http.StatusCreated, tag)
}

// Delete removes a tag everywhere.
func (h *TagHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid tag ID")
	}

	if err := h.tagService.Delete(ctx, id); err != nil {
		return apierrors.ServiceError(c, "Tag", err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// ListByLead returns the tags attached to a lead.
func (h *TagHandler) ListByLead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	leadID, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid lead ID")
	}

	rows, err := h.tagService.ListByLead(ctx, leadID)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Attach links a tag to a lead.
func (h *TagHandler) Attach(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	leadID, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid lead ID")
	}
	tagID, ok := parseID(c, "tagId")
	if !ok {
		return apierrors.ValidationError(c, "Invalid tag ID")
	}

	if err := h.tagService.Attach(ctx, leadID, tagID); err != nil {
		return apierrors.ServiceError(c, "Tag", err)
	}
	return c.JSON(http.StatusCreated, map[string]bool{"success": true})
}

// Detach unlinks a tag from a lead.
func (h *TagHandler) Detach(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	leadID, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid lead ID")
	}
	tagID, ok := parseID(c, "tagId")
	if !ok {
		return apierrors.ValidationError(c, "Invalid tag ID")
	}

	if err := h.tagService.Detach(ctx, leadID, tagID); err != nil {
		return apierrors.ServiceError(c, "Tag", err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
