package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"web-gateway/internal/infrastructure/token"
)

const (
	csrfCookieName = "csrf_token"
	csrfHeaderName = "X-XSRF-TOKEN"
)

// CSRFDoubleSubmit enforces the double-submit pattern on mutating requests:
// the csrf_token cookie must match the X-XSRF-TOKEN header (or the _csrf
// form field for plain form posts). Safe methods pass through.
func CSRFDoubleSubmit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			var cookieValue string
			if cookie, err := c.Cookie(csrfCookieName); err == nil {
				cookieValue = cookie.Value
			}

			submitted := c.Request().Header.Get(csrfHeaderName)
			if submitted == "" {
				submitted = c.FormValue("_csrf")
			}

			if err := token.ValidateDoubleSubmit(cookieValue, submitted); err != nil {
				return echo.NewHTTPError(http.StatusForbidden, "csrf token mismatch")
			}
			return next(c)
		}
	}
}
