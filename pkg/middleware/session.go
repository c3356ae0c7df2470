package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bluecore-studio/crm-api/pkg/auth"
	"github.com/bluecore-studio/crm-api/pkg/models"
)

// Session guards CRM routes behind the shared-password cookie. API paths
// get a 401 JSON body; page paths are redirected to the login form with
// the original path preserved in the "from" query parameter.
func Session(authenticator auth.Authenticator, loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(auth.SessionCookieName)
			if err == nil && authenticator.Verify(cookie.Value) {
				return next(c)
			}

			if strings.HasPrefix(c.Request().URL.Path, "/api/") {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "unauthorized",
					Message: "Unauthorized",
				})
			}

			return c.Redirect(http.StatusFound, loginPath+"?from="+c.Request().URL.Path)
		}
	}
}
