package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/bluecore-studio/crm-api/pkg/api/errors"
	"github.com/bluecore-studio/crm-api/pkg/dataroom"
	"github.com/bluecore-studio/crm-api/pkg/models"
	"github.com/bluecore-studio/crm-api/pkg/storage"
)

// DataRoomHandler handles the shared document registry and uploads.
type DataRoomHandler struct {
	docService *dataroom.Service
}

// NewDataRoomHandler creates a new data-room handler.
func NewDataRoomHandler(docService *dataroom.Service) *DataRoomHandler {
	return &DataRoomHandler{docService: docService}
}

// List returns documents, optionally filtered by category.
func (h *DataRoomHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rows, err := h.docService.List(ctx, c.QueryParam("category"))
	if err != nil {
		return apierrors.ServiceError(c, "Document", err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Create registers a link-style document.
func (h *DataRoomHandler) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.CreateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, "name, file_url and shared_by are required")
	}

	doc, err := h.docService.Create(ctx, req)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// Upload accepts a multipart file up to 25 MB, stores it, and registers
// the document.
func (h *DataRoomHandler) Upload(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apierrors.ValidationError(c, "file is required")
	}
	if fileHeader.Size > storage.MaxUploadSize {
		return c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
			Error:   "file_too_large",
			Message: "File exceeds the 25 MB limit",
		})
	}

	sharedBy := c.FormValue("shared_by")
	if sharedBy == "" {
		return apierrors.ValidationError(c, "shared_by is required")
	}

	req := models.CreateDocumentRequest{
		Name:     c.FormValue("name"),
		Category: c.FormValue("category"),
		SharedBy: sharedBy,
	}
	if desc := c.FormValue("description"); desc != "" {
		req.Description = &desc
	}
	if req.Category != "" && !models.DocumentCategory(req.Category).Valid() {
		return apierrors.ValidationError(c, "Unknown category")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return apierrors.ValidationError(c, "Unreadable upload")
	}
	defer src.Close()

	doc, err := h.docService.Upload(ctx, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), src, req)
	if err != nil {
		return apierrors.ServiceError(c, "Document", err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// Update applies a partial edit to a document's metadata.
func (h *DataRoomHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid document ID")
	}

	var req models.UpdateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid field value")
	}

	doc, err := h.docService.Update(ctx, id, req)
	if err != nil {
		return apierrors.ServiceError(c, "Document", err)
	}
	return c.JSON(http.StatusOK, doc)
}

// Delete removes a document from the registry.
func (h *DataRoomHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid document ID")
	}

	if err := h.docService.Delete(ctx, id); err != nil {
		return apierrors.ServiceError(c, "Document", err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
