// Package router assembles the gin engine, the middleware chain, and the
// versioned API routes.
package router

import (
	"time"

	"github.com/packops/backend/internal/infrastructure/auth"
	"github.com/packops/backend/internal/infrastructure/logger"
	"github.com/packops/backend/internal/infrastructure/telemetry"
	"github.com/packops/backend/internal/interfaces/http/handler"
	"github.com/packops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Config carries everything the router needs to assemble the engine.
type Config struct {
	JWTService     *auth.JWTService
	TokenBlacklist auth.TokenBlacklist
	MeterProvider  *telemetry.MeterProvider
	Logger         *zap.Logger

	SystemHandler *handler.SystemHandler

	// AllowOrigins is the CORS whitelist. Empty rejects cross-origin.
	AllowOrigins []string
	// RateLimit is requests per RateWindow per principal (or IP when
	// unauthenticated). Zero disables rate limiting.
	RateLimit  int
	RateWindow time.Duration
	// MaxBodyBytes caps request body size. Zero disables the cap.
	MaxBodyBytes int64
	// TracingEnabled toggles the otelgin middleware.
	TracingEnabled bool
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	cfg        Config
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, cfg Config, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		cfg:        cfg,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be registered during Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup installs the middleware chain and registers all routes.
//
// Chain order matters: request IDs and tracing come first so every later
// log and span carries them, then authentication, then the per-principal
// rate limit.
func (r *Router) Setup() {
	log := r.cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Secure())
	if r.cfg.TracingEnabled {
		r.engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: "packops-backend",
			Enabled:     true,
		}))
		r.engine.Use(middleware.SpanErrorMarker())
	}
	r.engine.Use(logger.GinMiddleware(log))
	r.engine.Use(logger.Recovery(log))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = r.cfg.AllowOrigins
	r.engine.Use(middleware.CORSWithConfig(corsCfg))

	if r.cfg.MaxBodyBytes > 0 {
		r.engine.Use(middleware.BodyLimit(r.cfg.MaxBodyBytes))
	}

	r.engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: r.cfg.MeterProvider,
		ServiceName:   "packops-backend",
		Enabled:       r.cfg.MeterProvider != nil,
	}))

	// Probes stay outside authentication so orchestrators can reach them
	if r.cfg.SystemHandler != nil {
		r.engine.GET("/health", r.cfg.SystemHandler.Health)
		r.engine.GET("/ready", r.cfg.SystemHandler.Ready)
	}

	if r.cfg.JWTService != nil {
		jwtCfg := middleware.DefaultJWTConfig(r.cfg.JWTService)
		jwtCfg.TokenBlacklist = r.cfg.TokenBlacklist
		jwtCfg.Logger = log
		r.engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtCfg))
	}
	if r.cfg.TracingEnabled {
		r.engine.Use(middleware.TracingAttributeInjector())
	}

	if r.cfg.RateLimit > 0 {
		window := r.cfg.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		r.engine.Use(middleware.RateLimit(middleware.NewRateLimiter(r.cfg.RateLimit, window)))
	}

	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}
