package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/bluecore-studio/crm-api/pkg/api/errors"
	"github.com/bluecore-studio/crm-api/pkg/funding"
	"github.com/bluecore-studio/crm-api/pkg/models"
)

// FundingHandler handles the funding-rounds browser and the import bridge.
type FundingHandler struct {
	fundingService *funding.Service
}

// NewFundingHandler creates a new funding handler.
func NewFundingHandler(fundingService *funding.Service) *FundingHandler {
	return &FundingHandler{fundingService: fundingService}
}

// List returns a filtered, paginated view of the funding dataset.
func (h *FundingHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.FundingSearchRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid query parameters")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid filter value")
	}

	results, err := h.fundingService.Search(ctx, req)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, results)
}

// Stats returns dataset-wide aggregates.
func (h *FundingHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	stats, err := h.fundingService.Stats(ctx)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Ingest stores a scraped funding event.
func (h *FundingHandler) Ingest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.CreateFundingRoundRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, "company_name, round_type and source are required")
	}

	round, err := h.fundingService.Ingest(ctx, req)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusCreated, round)
}

// ImportLead converts a funding round into a lead. A repeat import
// returns 409 along with the lead created the first time, so the client
// can link straight to it.
func (h *FundingHandler) ImportLead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid funding round ID")
	}

	lead, err := h.fundingService.ImportLead(ctx, id)
	if err != nil {
		if lead != nil {
			return c.JSON(http.StatusConflict, map[string]any{
				"error":   "conflict",
				"message": "Funding round already imported",
				"lead":    lead,
			})
		}
		return apierrors.ServiceError(c, "Funding round", err)
	}
	return c.JSON(http.StatusCreated, lead)
}
