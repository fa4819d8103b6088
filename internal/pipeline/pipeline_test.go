package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"web-gateway/internal/domain"
	"web-gateway/internal/routing"
	"web-gateway/internal/usecase"
)

// prefixChecker treats any token with the "expired" prefix as expired.
type prefixChecker struct{}

func (prefixChecker) IsTokenExpired(token string) bool {
	return token == "" || strings.HasPrefix(token, "expired")
}

type stubAuthAPI struct {
	domain.AuthAPI
	result       *domain.RefreshResult
	err          error
	refreshCalls int
}

func (s *stubAuthAPI) Refresh(_ context.Context, _ string) (*domain.RefreshResult, error) {
	s.refreshCalls++
	return s.result, s.err
}

type stubUserAPI struct {
	user      *domain.User
	lastToken string
}

func (s *stubUserAPI) CurrentUser(_ context.Context, accessToken string) (*domain.User, error) {
	s.lastToken = accessToken
	if accessToken == "" {
		return nil, nil
	}
	return s.user, nil
}

func (s *stubUserAPI) Logout(_ context.Context, _ string) error { return nil }

func ownerUser() *domain.User {
	return &domain.User{
		ID:         uuid.New(),
		Email:      "owner@example.com",
		Tenant:     &domain.Tenant{ID: uuid.New(), Name: "Acme"},
		UserTenant: &domain.UserTenant{ID: uuid.New()},
		Role:       &domain.Role{Level: domain.RoleLevelTenantOwner},
	}
}

func newPipeline(auth domain.AuthAPI, users domain.UserAPI) *Pipeline {
	logger := slog.Default()
	return New(
		usecase.NewCredentialRefresher(auth, logger),
		usecase.NewIdentityResolver(users, logger),
		routing.NewClassifier(),
		routing.NewDecisionEngine(),
		prefixChecker{},
		false,
		logger,
	)
}

// serve runs a request through the pipeline middleware in front of next.
func serve(t *testing.T, p *Pipeline, req *http.Request, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := p.Middleware()(next)(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func okHandler(c echo.Context) error { return c.String(http.StatusOK, "page") }

func TestPipeline_AnonymousProtectedPathRedirects(t *testing.T) {
	auth := &stubAuthAPI{}
	users := &stubUserAPI{}
	p := newPipeline(auth, users)

	req := httptest.NewRequest(http.MethodGet, "/app/chats", nil)
	rec := serve(t, p, req, okHandler)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/sign-in?redirect=%2Fapp%2Fchats", rec.Header().Get(echo.HeaderLocation))
	assert.Zero(t, auth.refreshCalls)
}

func TestPipeline_AuthenticatedOwnerDelegates(t *testing.T) {
	users := &stubUserAPI{user: ownerUser()}
	p := newPipeline(&stubAuthAPI{}, users)

	var seen domain.Identity
	next := func(c echo.Context) error {
		seen = IdentityFromContext(c)
		return c.String(http.StatusOK, "page")
	}

	req := httptest.NewRequest(http.MethodGet, "/app/chats", nil)
	req.AddCookie(&http.Cookie{Name: domain.AccessTokenCookie, Value: "acc-valid"})
	rec := serve(t, p, req, next)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, seen.IsAuthenticated())
	assert.Equal(t, "acc-valid", users.lastToken)
}

func TestPipeline_ExpiredAccessRefreshesBeforeResolving(t *testing.T) {
	auth := &stubAuthAPI{result: &domain.RefreshResult{
		AccessToken:  "acc-new",
		RefreshToken: "ref-new",
	}}
	users := &stubUserAPI{user: ownerUser()}
	p := newPipeline(auth, users)

	req := httptest.NewRequest(http.MethodGet, "/app/chats", nil)
	req.AddCookie(&http.Cookie{Name: domain.AccessTokenCookie, Value: "expired-acc"})
	req.AddCookie(&http.Cookie{Name: domain.RefreshTokenCookie, Value: "ref-valid"})
	rec := serve(t, p, req, okHandler)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, auth.refreshCalls)
	assert.Equal(t, "acc-new", users.lastToken, "identity must be resolved with the refreshed token")

	var accessCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == domain.AccessTokenCookie {
			accessCookie = c
		}
	}
	require.NotNil(t, accessCookie)
	assert.Equal(t, "acc-new", accessCookie.Value)
}

func TestPipeline_APIPathSkipsRefresh(t *testing.T) {
	auth := &stubAuthAPI{result: &domain.RefreshResult{AccessToken: "acc-new", RefreshToken: "ref-new"}}
	p := newPipeline(auth, &stubUserAPI{})

	req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
	req.AddCookie(&http.Cookie{Name: domain.AccessTokenCookie, Value: "expired-acc"})
	req.AddCookie(&http.Cookie{Name: domain.RefreshTokenCookie, Value: "ref-valid"})
	rec := serve(t, p, req, okHandler)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, auth.refreshCalls, "api paths must never trigger implicit refresh")
}

func TestPipeline_FailedRefreshClearsCookiesAndRedirects(t *testing.T) {
	auth := &stubAuthAPI{err: domain.ErrRefreshRejected}
	p := newPipeline(auth, &stubUserAPI{})

	req := httptest.NewRequest(http.MethodGet, "/app/chats", nil)
	req.AddCookie(&http.Cookie{Name: domain.AccessTokenCookie, Value: "expired-acc"})
	req.AddCookie(&http.Cookie{Name: domain.RefreshTokenCookie, Value: "ref-valid"})
	rec := serve(t, p, req, okHandler)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/sign-in?redirect=%2Fapp%2Fchats", rec.Header().Get(echo.HeaderLocation))

	cleared := 0
	for _, c := range rec.Result().Cookies() {
		if (c.Name == domain.AccessTokenCookie || c.Name == domain.RefreshTokenCookie) && c.MaxAge < 0 {
			cleared++
		}
	}
	assert.Equal(t, 2, cleared, "both credential cookies must be deleted")
}

func TestPipeline_InsufficientRoleGetsForbiddenJSON(t *testing.T) {
	user := ownerUser()
	user.Role.Level = domain.RoleLevelSupervisor
	users := &stubUserAPI{user: user}
	p := newPipeline(&stubAuthAPI{}, users)

	req := httptest.NewRequest(http.MethodGet, "/app/admin/users", nil)
	req.AddCookie(&http.Cookie{Name: domain.AccessTokenCookie, Value: "acc-valid"})
	rec := serve(t, p, req, okHandler)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body forbiddenBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.CodeForbidden, body.Code)
	assert.NotEmpty(t, body.Message)
}

func TestPipeline_AuthenticatedOnSignInRedirectsHome(t *testing.T) {
	users := &stubUserAPI{user: ownerUser()}
	p := newPipeline(&stubAuthAPI{}, users)

	req := httptest.NewRequest(http.MethodGet, "/auth/sign-in", nil)
	req.AddCookie(&http.Cookie{Name: domain.AccessTokenCookie, Value: "acc-valid"})
	rec := serve(t, p, req, okHandler)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/app/home", rec.Header().Get(echo.HeaderLocation))
}

func TestPipeline_MethodNotAllowedOnAuthPages(t *testing.T) {
	p := newPipeline(&stubAuthAPI{}, &stubUserAPI{})

	req := httptest.NewRequest(http.MethodDelete, "/auth/sign-in", nil)
	rec := serve(t, p, req, okHandler)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPipeline_DownstreamNotFoundRedirectsHome(t *testing.T) {
	p := newPipeline(&stubAuthAPI{}, &stubUserAPI{})

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	rec := serve(t, p, req, func(c echo.Context) error { return echo.ErrNotFound })

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

func TestPipeline_DownstreamForbiddenRedirectsHome(t *testing.T) {
	p := newPipeline(&stubAuthAPI{}, &stubUserAPI{})

	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	rec := serve(t, p, req, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusForbidden, "nope")
	})

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

func TestPipeline_ContextAccessorsWithoutPipeline(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.False(t, IdentityFromContext(c).IsAuthenticated())
	assert.Nil(t, TokenStoreFromContext(c))
}
