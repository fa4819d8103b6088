package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"web-gateway/internal/infrastructure/token"
	"web-gateway/internal/pipeline"
)

// CSRFCookie is the double-submit cookie paired with the X-XSRF-TOKEN header.
const CSRFCookie = "csrf_token"

// CSRFHandler issues the CSRF token for the browser app's mutating calls.
// The token is derived from the access token, so it stays stable for the
// session and needs no server-side storage.
type CSRFHandler struct {
	gen    *token.HMACCSRFGenerator
	secure bool
}

// NewCSRFHandler creates a new CSRF handler.
func NewCSRFHandler(gen *token.HMACCSRFGenerator, secure bool) *CSRFHandler {
	return &CSRFHandler{gen: gen, secure: secure}
}

// csrfResponse represents the CSRF token response.
type csrfResponse struct {
	Data struct {
		CSRFToken string `json:"csrf_token"`
	} `json:"data"`
}

// Handle processes CSRF token requests.
func (h *CSRFHandler) Handle(c echo.Context) error {
	store := pipeline.TokenStoreFromContext(c)
	if store == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	session := store.AccessToken()
	if session == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	tok, err := h.gen.Generate(session)
	if err != nil {
		return mapDomainError(err)
	}

	c.SetCookie(&http.Cookie{
		Name:     CSRFCookie,
		Value:    tok,
		Path:     "/",
		HttpOnly: false,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((12 * time.Hour) / time.Second),
	})

	resp := csrfResponse{}
	resp.Data.CSRFToken = tok
	return c.JSON(http.StatusOK, resp)
}
