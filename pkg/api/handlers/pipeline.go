package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/bluecore-studio/crm-api/pkg/api/errors"
	"github.com/bluecore-studio/crm-api/pkg/analytics"
	"github.com/bluecore-studio/crm-api/pkg/pipeline"
)

// PipelineHandler serves the kanban board and the analytics dashboard.
type PipelineHandler struct {
	pipelineService  *pipeline.Service
	analyticsService *analytics.Service
}

// NewPipelineHandler creates a new pipeline handler.
func NewPipelineHandler(pipelineService *pipeline.Service, analyticsService *analytics.Service) *PipelineHandler {
	return &PipelineHandler{
		pipelineService:  pipelineService,
		analyticsService: analyticsService,
	}
}

// Board returns every lead grouped by stage.
func (h *PipelineHandler) Board(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	board, err := h.pipelineService.Board(ctx)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, board)
}

// Dashboard returns the analytics dashboard payload.
func (h *PipelineHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	dashboard, err := h.analyticsService.Dashboard(ctx)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, dashboard)
}
