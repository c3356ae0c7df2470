package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/bluecore-studio/crm-api/pkg/api/errors"
	"github.com/bluecore-studio/crm-api/pkg/leadnote"
	"github.com/bluecore-studio/crm-api/pkg/models"
)

// NoteHandler handles free-form notes scoped to a lead.
type NoteHandler struct {
	noteService *leadnote.Service
}

// NewNoteHandler creates a new note handler.
func NewNoteHandler(noteService *leadnote.Service) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

// Create adds a note under a lead.
func (h *NoteHandler) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	leadID, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid lead ID")
	}

	var req models.CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, "content is required")
	}

	note, err := h.noteService.Create(ctx, leadID, req)
	if err != nil {
		return apierrors.ServiceError(c, "Lead", err)
	}
	return c.JSON(http.StatusCreated, note)
}

// ListByLead returns a lead's notes.
func (h *NoteHandler) ListByLead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	leadID, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid lead ID")
	}

	rows, err := h.noteService.ListByLead(ctx, leadID)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Delete removes a note scoped by its lead.
func (h *NoteHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	leadID, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid lead ID")
	}
	noteID, ok := parseID(c, "noteId")
	if !ok {
		return apierrors.ValidationError(c, "Invalid note ID")
	}

	if err := h.noteService.Delete(ctx, leadID, noteID); err != nil {
		return apierrors.ServiceError(c, "Note", err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
