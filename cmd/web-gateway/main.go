package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"web-gateway/internal/adapter/gateway"
	adapterhandler "web-gateway/internal/adapter/handler"
	infratoken "web-gateway/internal/infrastructure/token"
	"web-gateway/internal/infrastructure/twofa"
	"web-gateway/internal/pipeline"
	"web-gateway/internal/routing"
	"web-gateway/internal/usecase"

	"web-gateway/config"
	appmiddleware "web-gateway/middleware"
	"web-gateway/utils/logger"
	"web-gateway/utils/otel"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Handle healthcheck subcommand (for Docker healthcheck in distroless image)
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		if err := runHealthcheck(); err != nil {
			fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize OpenTelemetry
	otelCfg := otel.ConfigFromEnv()
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		slog.Warn("failed to initialize OpenTelemetry, continuing without tracing", "error", err)
		otelCfg.Enabled = false
	}

	// Initialize structured logger
	logger.Init(otelCfg.Enabled)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "configuration loaded",
		"backend_api_url", cfg.BackendAPIURL,
		"page_upstream_url", cfg.PageUpstreamURL,
		"port", cfg.Port,
		"environment", cfg.Environment)

	// Infrastructure
	expiryChecker := infratoken.NewExpiryChecker()
	csrfGenerator := infratoken.NewHMACCSRFGenerator(cfg.CSRFSecret)
	twofaSessions := twofa.NewStore(cfg.TwoFactorTTL)

	// Gateways
	authGateway := gateway.NewAuthAPIGateway(cfg.BackendAPIURL, cfg.ClientTimeout)
	userGateway := gateway.NewUserAPIGateway(cfg.BackendAPIURL, cfg.ClientTimeout)

	// Usecases
	refresher := usecase.NewCredentialRefresher(authGateway, slog.Default())
	resolver := usecase.NewIdentityResolver(userGateway, slog.Default())

	// Request pipeline
	requestPipeline := pipeline.New(
		refresher,
		resolver,
		routing.NewClassifier(),
		routing.NewDecisionEngine(),
		expiryChecker,
		cfg.SecureCookies(),
		slog.Default(),
	)

	// Handlers
	authHandler := adapterhandler.NewAuthHandler(authGateway, userGateway, twofaSessions, cfg.TwoFactorTTL, slog.Default())
	csrfHandler := adapterhandler.NewCSRFHandler(csrfGenerator, cfg.SecureCookies())
	healthHandler := adapterhandler.NewHealthHandler()
	pageProxy := adapterhandler.NewPageProxy(cfg.PageUpstreamURL, cfg.ClientTimeout, slog.Default())

	// Setup Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Security middleware
	e.Use(appmiddleware.SecurityHeaders())

	// OpenTelemetry tracing
	if otelCfg.Enabled {
		e.Use(otelecho.Middleware(otelCfg.ServiceName))
	}

	// Request logging
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if v.Error == nil {
				slog.InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				slog.ErrorContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.GET("/health", healthHandler.Handle)

	// The auth pipeline guards everything except the health endpoint
	pipelineMW := requestPipeline.Middleware()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		guarded := pipelineMW(next)
		return func(c echo.Context) error {
			if c.Request().URL.Path == "/health" {
				return next(c)
			}
			return guarded(c)
		}
	})

	// Rate limiters per endpoint group
	loginRL := appmiddleware.NewRateLimiter(10.0/60.0, 5)   // 10 req/min
	registerRL := appmiddleware.NewRateLimiter(5.0/60.0, 3) // 5 req/min
	recoveryRL := appmiddleware.NewRateLimiter(5.0/60.0, 3) // 5 req/min
	csrfRL := appmiddleware.NewRateLimiter(30.0/60.0, 5)    // 30 req/min

	// Authentication flows
	e.POST("/auth/sign-in", authHandler.SignIn, loginRL.Middleware())
	e.POST("/auth/sign-up", authHandler.SignUp, registerRL.Middleware())
	e.POST("/auth/verify-two-factor", authHandler.VerifyTwoFactor, loginRL.Middleware())
	e.POST("/auth/sign-out", authHandler.SignOut, appmiddleware.CSRFDoubleSubmit())
	e.POST("/auth/forgot", authHandler.Forgot, recoveryRL.Middleware())
	e.POST("/auth/reset", authHandler.Reset, recoveryRL.Middleware())

	e.GET("/token/csrf", csrfHandler.Handle, csrfRL.Middleware())

	// Everything else is served by the page upstream
	e.Any("/*", pageProxy.Handle)

	// Start server with errgroup for graceful shutdown
	address := fmt.Sprintf(":%s", cfg.Port)
	slog.InfoContext(ctx, "starting web-gateway server", "address", address)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return otelShutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited properly")
}

// runHealthcheck performs a health check against the local server.
func runHealthcheck() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8888"
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%s/health", port))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status: %d", resp.StatusCode)
	}
	return nil
}
