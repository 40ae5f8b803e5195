package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/accountkit/account-service/docs"
	"github.com/accountkit/account-service/internal/api/handler"
	"github.com/accountkit/account-service/internal/api/middleware"
	"github.com/accountkit/account-service/internal/core/domain"
	"github.com/accountkit/account-service/internal/core/ports"
	"github.com/accountkit/account-service/internal/metrics"
)

// Dependencies carries everything NewRouter wires into the HTTP layer.
type Dependencies struct {
	Auth  ports.AuthService
	Users ports.UserService
	Log   zerolog.Logger

	// Readiness checks run by GET /health/ready, keyed by dependency name.
	Readiness map[string]handler.DependencyCheck

	// Metrics, when set, receives the HTTP request metrics and is served on
	// GET /metrics.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))

	if deps.Metrics != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  metrics.Namespace,
			Registerer: deps.Metrics,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: deps.Metrics,
		}))
	}

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- User routes ---
	userHandler := handler.NewUserHandler(deps.Auth, deps.Users)
	auth := middleware.Auth(deps.Auth)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	users := e.Group("/1/users")
	users.POST("", userHandler.Register)
	users.POST("/sessions", userHandler.Login)

	users.GET("/self", userHandler.GetSelf, auth)
	users.POST("/self", userHandler.UpdateSelf, auth)
	users.DELETE("/self", userHandler.DeleteSelf, auth)

	users.POST("/search", userHandler.SearchUsers, auth, adminOnly)
	users.GET("/:id", userHandler.GetUser, auth, adminOnly)
	users.POST("/:id", userHandler.UpdateUser, auth, adminOnly)
	users.DELETE("/:id", userHandler.DeleteUser, auth, adminOnly)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
