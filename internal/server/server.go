// Package server wires the HTTP surface of the anonymous message wall.
package server

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"anonwall/internal/config"
	"anonwall/internal/middleware"
	"anonwall/internal/models"
	"anonwall/internal/observability"
	"anonwall/internal/ratelimit"
	"anonwall/internal/storage"
	"anonwall/internal/wall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	store          *storage.FileStore
	wall           *wall.Service
	limiter        ratelimit.Limiter
	redis          *redis.Client
	originPolicy   *middleware.OriginPolicy
	promMiddleware *fiberprometheus.FiberPrometheus
	app            *fiber.App
	tracingStop    func(context.Context) error
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	store, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	// Redis is optional: when configured it makes rate limit windows shared
	// across instances, otherwise each instance keeps its own windows.
	var rdb *redis.Client
	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter()
	if cfg.RedisURL != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
		limiter = ratelimit.NewRedisLimiter(rdb)
	}

	srv := newServer(cfg, store, limiter, rdb)
	// Registered once per process; tests built via NewServerWithDeps skip
	// this so repeated construction does not collide in the default registry.
	srv.promMiddleware = fiberprometheus.New("anonwall")

	if cfg.TracingEnabled {
		stop, err := observability.InitTracing(observability.TracingConfig{
			ServiceName:    "anonwall",
			ServiceVersion: "1.0.0",
			Environment:    cfg.Env,
			Enabled:        true,
			Exporter:       cfg.TracingExporter,
			OTLPEndpoint:   cfg.OTLPEndpoint,
			SamplerRatio:   1.0,
		})
		if err != nil {
			return nil, fmt.Errorf("tracing init failed: %w", err)
		}
		srv.tracingStop = stop
	}

	return srv, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests.
func NewServerWithDeps(cfg *config.Config, store *storage.FileStore, limiter ratelimit.Limiter) *Server {
	return newServer(cfg, store, limiter, nil)
}

func newServer(cfg *config.Config, store *storage.FileStore, limiter ratelimit.Limiter, rdb *redis.Client) *Server {
	return &Server{
		config:       cfg,
		store:        store,
		wall:         wall.NewService(store, wall.NewFilter(cfg.SensitiveWordList()...)),
		limiter:      limiter,
		redis:        rdb,
		originPolicy: middleware.NewOriginPolicy(cfg.CORSOrigins),
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID into the request context
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// Origin check runs before anything that could mutate state, so denied
	// browsers never reach the identity or rate limit layers.
	app.Use(middleware.CORS(s.originPolicy))

	// Anonymous identity: every request past CORS gets a stable identity.
	app.Use(middleware.AnonIdentity())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	publishPolicy := ratelimit.Policy{
		Action: "post",
		Window: s.config.PostLimitWindow(),
		Max:    s.config.PostLimitMax,
	}
	likePolicy := ratelimit.Policy{
		Action: "like",
		Window: s.config.LikeLimitWindow(),
		Max:    s.config.LikeLimitMax,
	}
	// Likes are limited per post: exhausting the window on one post must not
	// block likes on another.
	perPost := func(c *fiber.Ctx) string { return c.Params("id") }

	api := app.Group("/api")
	api.Post("/posts", middleware.RateLimit(s.limiter, publishPolicy, nil), s.PublishPost)
	api.Get("/posts", s.GetPosts)
	api.Post("/posts/:id/like", middleware.RateLimit(s.limiter, likePolicy, perPost), s.LikePost)
	api.Delete("/posts/:id/like", middleware.RateLimit(s.limiter, likePolicy, perPost), s.UnlikePost)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if _, err := os.Stat(s.store.Dir()); err != nil {
		storeStatus = "unhealthy"
	}

	redisStatus := "not configured"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storeStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Anonymous Wall API",
		BodyLimit: 2 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.tracingStop != nil {
		if err := s.tracingStop(ctx); err != nil {
			log.Printf("error shutting down tracing: %v", err)
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
