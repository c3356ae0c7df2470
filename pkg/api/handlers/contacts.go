package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/bluecore-studio/crm-api/pkg/api/errors"
	"github.com/bluecore-studio/crm-api/pkg/contacts"
	"github.com/bluecore-studio/crm-api/pkg/models"
)

// ContactHandler handles the contact people attached to a lead.
type ContactHandler struct {
	contactService *contacts.Service
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(contactService *contacts.Service) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// Create adds a contact under a lead.
func (h *ContactHandler) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	leadID, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid lead ID")
	}

	var req models.CreateContactRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, "name is required")
	}

	contact, err := h.contactService.Create(ctx, leadID, req)
	if err != nil {
		return apierrors.ServiceError(c, "Lead", err)
	}
	return c.JSON(http.StatusCreated, contact)
}

// ListByLead returns a lead's contacts.
func (h *ContactHandler) ListByLead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	leadID, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid lead ID")
	}

	rows, err := h.contactService.ListByLead(ctx, leadID)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Delete removes a contact scoped by its lead.
func (h *ContactHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	leadID, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid lead ID")
	}
	contactID, ok := parseID(c, "contactId")
	if !ok {
		return apierrors.ValidationError(c, "Invalid contact ID")
	}

	if err := h.contactService.Delete(ctx, leadID, contactID); err != nil {
		return apierrors.ServiceError(c, "Contact", err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
