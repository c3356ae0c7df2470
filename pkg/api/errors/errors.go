package errors

import (
	"errors"
	"log"
	"net/http"

	"github.com/bluecore-studio/crm-api/pkg/models"
	"github.com/labstack/echo/v4"
)

// ValidationError returns a 400 without exposing internal details
func ValidationError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: message,
	})
}

// DatabaseError returns a generic database error without exposing internal details
func DatabaseError(c echo.Context, err error) error {
	// Log the actual error for debugging
	log.Printf("[DATABASE ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "database_error",
		Message: "A database error occurred. Please try again later.",
	})
}

// UnauthorizedError returns a generic unauthorized error
func UnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   "unauthorized",
		Message: "You are not authorized to access this resource.",
	})
}

// NotFoundError returns a 404 for a named resource
func NotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "not_found",
		Message: resource + " not found",
	})
}

// ConflictError returns a 409 with a caller-safe message
func ConflictError(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, models.ErrorResponse{
		Error:   "conflict",
		Message: message, // Message is safe to expose (e.g., "Tag already assigned")
	})
}

// ServiceError maps a service-layer error onto the taxonomy: sentinel
// errors become 400/404/409, anything else is a store failure.
func ServiceError(c echo.Context, resource string, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return NotFoundError(c, resource)
	case errors.Is(err, models.ErrConflict):
		return ConflictError(c, err.Error())
	case errors.Is(err, models.ErrInvalidInput):
		return ValidationError(c, err.Error())
	default:
		return DatabaseError(c, err)
	}
}
