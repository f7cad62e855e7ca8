// Package api exposes the catalog read path and the invalidation hooks
// over HTTP. The mutation surface proper (uploads, payments, auth) lives
// outside this service and calls the invalidation endpoints after its
// writes.
package api

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/agentmart/agentmart/internal/query"
	"github.com/agentmart/agentmart/internal/slogutil"
	"github.com/agentmart/agentmart/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
)

// Config represents API server configuration
type Config struct {
	Port   int
	Prefix string // API path prefix (default: "/api")
}

// DefaultConfig returns default API configuration
func DefaultConfig() *Config {
	return &Config{
		Port:   8080,
		Prefix: "/api",
	}
}

// AgentService is the read surface the handlers call into.
type AgentService interface {
	ListAgents(ctx context.Context, params query.Params) (*query.PagedResult, error)
	GetAgentDetail(ctx context.Context, id string, skipCache bool) (*store.AgentRecord, error)
}

// CacheInvalidator is the invalidation surface the handlers call into.
type CacheInvalidator interface {
	InvalidateAgent(ctx context.Context, id, category string)
	InvalidateCategory(ctx context.Context, category string)
	InvalidateAll(ctx context.Context)
}

// Server represents the API server
type Server struct {
	config      *Config
	app         *fiber.App
	service     AgentService
	invalidator CacheInvalidator
	stats       func() any
	logger      *slog.Logger
	startTime   time.Time
}

// NewServer creates the API server and registers all routes.
// statsFn may be nil, in which case the stats endpoint reports an empty
// object.
func NewServer(config *Config, service AgentService, invalidator CacheInvalidator, statsFn func() any) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	app := fiber.New(fiber.Config{
		AppName:               "agentmart",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	server := &Server{
		config:      config,
		app:         app,
		service:     service,
		invalidator: invalidator,
		stats:       statsFn,
		logger:      slog.Default(),
		startTime:   time.Now(),
	}

	server.setupRoutes()
	return server
}

// withRequestContext tags the request context so every log record
// emitted while serving the request carries the request id and route.
func (s *Server) withRequestContext(c *fiber.Ctx) error {
	c.SetUserContext(slogutil.With(c.UserContext(),
		"request_id", uuid.NewString(),
		"method", c.Method(),
		"path", c.Path(),
	))
	return c.Next()
}

func (s *Server) setupRoutes() {
	s.app.Use(s.withRequestContext)

	api := s.app.Group(s.config.Prefix)

	api.Get("/agents", s.handleListAgents)
	api.Get("/agents/:id", s.handleGetAgent)
	api.Post("/agents/:id/invalidate", s.handleInvalidateAgent)
	api.Post("/categories/:category/invalidate", s.handleInvalidateCategory)
	api.Post("/cache/invalidate", s.handleInvalidateAll)
	api.Get("/cache/stats", s.handleCacheStats)

	s.app.Get("/live", s.handleLive)
}

// App returns the underlying fiber app, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts serving on the configured port and blocks.
func (s *Server) Listen() error {
	return s.app.Listen(":" + strconv.Itoa(s.config.Port))
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}
