// Package pipeline orchestrates the per-request authentication chain:
// classify the path, maybe refresh credentials, resolve identity, decide
// access, then delegate or short-circuit.
package pipeline

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"web-gateway/internal/domain"
	"web-gateway/internal/infrastructure/cookie"
	"web-gateway/internal/routing"
	"web-gateway/internal/usecase"
)

// Context keys under which the pipeline exposes per-request state to
// downstream handlers.
const (
	IdentityContextKey   = "pipeline.identity"
	TokenStoreContextKey = "pipeline.token_store"
)

// expiryChecker inspects a bearer token's expiry claim.
type expiryChecker interface {
	IsTokenExpired(token string) bool
}

// Pipeline runs the fixed-order request authentication chain as Echo
// middleware. All per-request state lives in the request context; the
// pipeline itself is safe for concurrent use.
type Pipeline struct {
	refresher  *usecase.CredentialRefresher
	resolver   *usecase.IdentityResolver
	classifier *routing.Classifier
	engine     *routing.DecisionEngine
	checker    expiryChecker
	secure     bool
	logger     *slog.Logger
}

// New creates the request pipeline. secure controls the Secure attribute
// on every cookie the pipeline writes.
func New(
	refresher *usecase.CredentialRefresher,
	resolver *usecase.IdentityResolver,
	classifier *routing.Classifier,
	engine *routing.DecisionEngine,
	checker expiryChecker,
	secure bool,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		refresher:  refresher,
		resolver:   resolver,
		classifier: classifier,
		engine:     engine,
		checker:    checker,
		secure:     secure,
		logger:     logger,
	}
}

type forbiddenBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Middleware returns the Echo middleware executing the chain. Order is
// fixed: refresh before identity, identity before the access decision.
// API paths never trigger an implicit refresh; the browser client drives
// its own token renewal there and a second concurrent exchange would race
// it.
func (p *Pipeline) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			pathname := c.Request().URL.Path
			method := c.Request().Method

			store := cookie.NewStore(c, p.checker, p.secure)
			c.Set(TokenStoreContextKey, store)

			policy := p.classifier.Classify(pathname)

			if policy.Category != domain.CategoryAPI {
				p.refresher.MaybeRefresh(ctx, store)
			}

			// Resolved exactly once per request; handlers read the memoized
			// value from the context.
			identity := p.resolver.Resolve(ctx, store.AccessToken())
			c.Set(IdentityContextKey, identity)

			decision := p.engine.Decide(identity, policy, method, pathname, c.QueryParam("redirect"))

			switch decision.Kind {
			case domain.DecisionRedirect:
				return c.Redirect(decision.RedirectStatus, decision.RedirectURL)
			case domain.DecisionDeny:
				p.logger.InfoContext(ctx, "access denied",
					"path", pathname,
					"method", method,
					"category", policy.Category.String(),
					"role_level", identity.RoleLevel())
				return c.JSON(http.StatusForbidden, forbiddenBody{
					Code:    decision.Code,
					Message: decision.Message,
				})
			case domain.DecisionMethodNotAllowed:
				return c.String(http.StatusMethodNotAllowed, "Method not allowed")
			}

			return p.delegate(c, next)
		}
	}
}

// delegate invokes the downstream handler and rewrites its not-found and
// forbidden failures into home redirects, so a stale deep link lands on
// the root page instead of a bare error.
func (p *Pipeline) delegate(c echo.Context, next echo.HandlerFunc) error {
	err := next(c)
	if err == nil {
		return nil
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound:
			return c.Redirect(http.StatusSeeOther, "/")
		case http.StatusForbidden:
			return c.Redirect(http.StatusTemporaryRedirect, "/")
		}
	}
	return err
}

// IdentityFromContext returns the identity the pipeline resolved for this
// request, or the anonymous identity when the pipeline did not run.
func IdentityFromContext(c echo.Context) domain.Identity {
	if v, ok := c.Get(IdentityContextKey).(domain.Identity); ok {
		return v
	}
	return domain.AnonymousIdentity()
}

// TokenStoreFromContext returns the request's token store, or nil when the
// pipeline did not run.
func TokenStoreFromContext(c echo.Context) domain.TokenStore {
	if v, ok := c.Get(TokenStoreContextKey).(domain.TokenStore); ok {
		return v
	}
	return nil
}
