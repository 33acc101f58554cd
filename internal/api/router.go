// @title           GCC Connect API
// @version         1.0
// @description     Session, approval and route access API for the GCC Connect marketplace.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	_ "github.com/gccconnect/connect/internal/api/docs"
	"github.com/gccconnect/connect/internal/api/handler"
	"github.com/gccconnect/connect/internal/api/middleware"
	"github.com/gccconnect/connect/internal/core/domain"
	"github.com/gccconnect/connect/internal/core/policy"
	"github.com/gccconnect/connect/internal/core/ports"
	"github.com/gccconnect/connect/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the HTTP surface is built from. Limiter and
// Checks are optional.
type Deps struct {
	Verifier       ports.CredentialVerifier
	Limiter        ports.AttemptLimiter
	Tokens         middleware.TokenParser
	Admin          ports.AdminService
	Profiles       ports.ProfileService
	Routes         *policy.Table
	Approvals      handler.ApprovalSubscriber
	Checks         map[string]handlers.Checker
	AllowedOrigins []string
	ServiceName    string
	Log            zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(otelecho.Middleware(d.ServiceName))
	e.Use(echoprometheus.NewMiddleware("connect"))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Verifier, d.Limiter, d.Log)
	profileHandler := handler.NewProfileHandler(d.Profiles)
	adminHandler := handler.NewAdminHandler(d.Admin)
	navigationHandler := handler.NewNavigationHandler(d.Routes, d.Log)
	streamHandler := handler.NewApprovalStreamHandler(d.Approvals, d.AllowedOrigins, d.Log)

	requireAuth := middleware.Auth(d.Tokens)

	v1 := e.Group("/v1")

	// --- Auth routes ---
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/logout", authHandler.Logout)

	// --- Session owner ---
	me := v1.Group("/me", requireAuth)
	me.GET("", profileHandler.Me)
	me.GET("/profile", profileHandler.Get)
	me.PATCH("/profile", profileHandler.Update)
	me.GET("/approval/stream", streamHandler.Stream)

	// --- Route access ---
	v1.GET("/navigation", navigationHandler.Check, middleware.Identify(d.Tokens))

	// --- Admin ---
	admin := v1.Group("/admin", requireAuth, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/approvals", adminHandler.ListApprovals)
	admin.POST("/users/:id/approve", adminHandler.Approve)
	admin.POST("/users/:id/reject", adminHandler.Reject)
	admin.GET("/stats", adminHandler.Stats)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)           // liveness: is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness: are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
