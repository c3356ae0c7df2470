package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/bluecore-studio/crm-api/pkg/api/errors"
	"github.com/bluecore-studio/crm-api/pkg/auth"
	"github.com/bluecore-studio/crm-api/pkg/models"
)

// AuthHandler handles the shared-password login flow.
type AuthHandler struct {
	authenticator auth.Authenticator
	maxAge        int
	secure        bool
}

// NewAuthHandler creates a new auth handler. maxAge is the session cookie
// lifetime in seconds.
func NewAuthHandler(authenticator auth.Authenticator, maxAge int, secure bool) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		maxAge:        maxAge,
		secure:        secure,
	}
}

// Login verifies the shared password and sets the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, "Password is required")
	}

	if !h.authenticator.Verify(req.Password) {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid password",
		})
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    req.Password,
		Path:     "/",
		MaxAge:   h.maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// Logout expires the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// Session reports whether the current request carries a valid session.
func (h *AuthHandler) Session(c echo.Context) error {
	cookie, err := c.Cookie(auth.SessionCookieName)
	authenticated := err == nil && h.authenticator.Verify(cookie.Value)
	return c.JSON(http.StatusOK, map[string]bool{"authenticated": authenticated})
}
