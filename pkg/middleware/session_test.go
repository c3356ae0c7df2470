package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecore-studio/crm-api/pkg/auth"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestSession_ValidCookiePasses(t *testing.T) {
	e := echo.New()
	mw := Session(auth.NewSharedPassword("secret"), "/crm/login")

	req := httptest.NewRequest(http.MethodGet, "/api/crm/leads", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "secret"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSession_MissingCookieOnAPIReturns401(t *testing.T) {
	e := echo.New()
	mw := Session(auth.NewSharedPassword("secret"), "/crm/login")

	req := httptest.NewRequest(http.MethodGet, "/api/crm/leads", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestSession_WrongCookieOnAPIReturns401(t *testing.T) {
	e := echo.New()
	mw := Session(auth.NewSharedPassword("secret"), "/crm/login")

	req := httptest.NewRequest(http.MethodGet, "/api/crm/leads", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "guess"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSession_PageRouteRedirectsToLogin(t *testing.T) {
	e := echo.New()
	mw := Session(auth.NewSharedPassword("secret"), "/crm/login")

	req := httptest.NewRequest(http.MethodGet, "/crm/pipeline", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/crm/login?from=/crm/pipeline", rec.Header().Get("Location"))
}
