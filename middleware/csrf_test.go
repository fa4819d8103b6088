package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newCSRFServer() *echo.Echo {
	e := echo.New()
	e.Use(CSRFDoubleSubmit())
	e.GET("/page", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.POST("/action", func(c echo.Context) error { return c.String(http.StatusOK, "done") })
	return e
}

func TestCSRFDoubleSubmit_SafeMethodsPass(t *testing.T) {
	e := newCSRFServer()

	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFDoubleSubmit_MatchingHeaderPasses(t *testing.T) {
	e := newCSRFServer()

	req := httptest.NewRequest(http.MethodPost, "/action", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "tok-1"})
	req.Header.Set(csrfHeaderName, "tok-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFDoubleSubmit_MatchingFormFieldPasses(t *testing.T) {
	e := newCSRFServer()

	form := url.Values{"_csrf": {"tok-1"}}
	req := httptest.NewRequest(http.MethodPost, "/action", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "tok-1"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFDoubleSubmit_MismatchRejected(t *testing.T) {
	e := newCSRFServer()

	req := httptest.NewRequest(http.MethodPost, "/action", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "tok-1"})
	req.Header.Set(csrfHeaderName, "tok-2")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFDoubleSubmit_MissingTokensRejected(t *testing.T) {
	e := newCSRFServer()

	req := httptest.NewRequest(http.MethodPost, "/action", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
