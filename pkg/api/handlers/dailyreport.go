package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/bluecore-studio/crm-api/pkg/api/errors"
	"github.com/bluecore-studio/crm-api/pkg/dailyreport"
	"github.com/bluecore-studio/crm-api/pkg/models"
)

// DailyReportHandler handles team work-log entries.
type DailyReportHandler struct {
	reportService *dailyreport.Service
}

// NewDailyReportHandler creates a new daily report handler.
func NewDailyReportHandler(reportService *dailyreport.Service) *DailyReportHandler {
	return &DailyReportHandler{reportService: reportService}
}

// List returns reports, optionally filtered by name or date.
func (h *DailyReportHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rows, err := h.reportService.List(ctx, c.QueryParam("name"), c.QueryParam("date"))
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Create stores a daily report.
func (h *DailyReportHandler) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.CreateDailyReportRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, "name, date, tasks_completed and positive hours_worked are required")
	}

	report, err := h.reportService.Create(ctx, req)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusCreated, report)
}

// Update applies a partial edit to a report.
func (h *DailyReportHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid report ID")
	}

	var req models.UpdateDailyReportRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid request body")
	}

	report, err := h.reportService.Update(ctx, id, req)
	if err != nil {
		return apierrors.ServiceError(c, "Daily report", err)
	}
	return c.JSON(http.StatusOK, report)
}

// Delete removes a report.
func (h *DailyReportHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := parseID(c, "id")
	if !ok {
		return apierrors.ValidationError(c, "Invalid report ID")
	}

	if err := h.reportService.Delete(ctx, id); err != nil {
		return apierrors.ServiceError(c, "Daily report", err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// WeekSummary groups the last seven days of reports per author.
func (h *DailyReportHandler) WeekSummary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	byName, hours, err := h.reportService.WeekSummary(ctx)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"reports": byName,
		"hours":   hours,
	})
}
