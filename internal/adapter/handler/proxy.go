package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"web-gateway/internal/pipeline"
)

// PageProxy forwards requests the pipeline allowed through to the page
// rendering upstream, attaching the resolved identity so the renderer does
// not repeat the lookup.
type PageProxy struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewPageProxy creates a page proxy for the given upstream base URL.
func NewPageProxy(baseURL string, timeout time.Duration, logger *slog.Logger) *PageProxy {
	return &PageProxy{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
	}
}

// requestHeadersToForward lists inbound headers the upstream cares about.
// Accept-Encoding is excluded so the transport handles decompression.
var requestHeadersToForward = []string{
	"Accept",
	"Accept-Language",
	"Content-Type",
	"If-None-Match",
	"If-Modified-Since",
}

// responseHeadersToForward lists upstream headers passed back to the browser.
var responseHeadersToForward = []string{
	"Content-Type",
	"Cache-Control",
	"ETag",
	"Last-Modified",
	"Vary",
}

// Handle forwards the request and streams the upstream response back. A
// 404 or 403 from the upstream is surfaced as an echo.HTTPError so the
// pipeline can rewrite it into a home redirect.
func (p *PageProxy) Handle(c echo.Context) error {
	req := c.Request()
	ctx := req.Context()

	upstreamURL := p.baseURL + req.URL.Path
	if req.URL.RawQuery != "" {
		upstreamURL += "?" + req.URL.RawQuery
	}

	upstreamReq, err := http.NewRequestWithContext(ctx, req.Method, upstreamURL, req.Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	for _, h := range requestHeadersToForward {
		if v := req.Header.Get(h); v != "" {
			upstreamReq.Header.Set(h, v)
		}
	}

	identity := pipeline.IdentityFromContext(c)
	if identity.IsAuthenticated() {
		upstreamReq.Header.Set("X-User-Id", identity.User.ID.String())
		upstreamReq.Header.Set("X-Role-Level", strconv.Itoa(identity.RoleLevel()))
		if identity.HasTenant() {
			upstreamReq.Header.Set("X-Tenant-Id", identity.Tenant.ID.String())
		}
	}

	resp, err := p.httpClient.Do(upstreamReq)
	if err != nil {
		p.logger.ErrorContext(ctx, "page upstream request failed", "error", err, "path", req.URL.Path)
		return echo.NewHTTPError(http.StatusBadGateway, "page upstream unavailable")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return echo.ErrNotFound
	case http.StatusForbidden:
		return echo.ErrForbidden
	}

	header := c.Response().Header()
	for _, h := range responseHeadersToForward {
		if v := resp.Header.Get(h); v != "" {
			header.Set(h, v)
		}
	}

	c.Response().WriteHeader(resp.StatusCode)
	if _, err := io.Copy(c.Response(), resp.Body); err != nil {
		p.logger.WarnContext(ctx, "page response copy interrupted", "error", err)
	}
	return nil
}
