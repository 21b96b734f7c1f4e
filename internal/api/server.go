// Package api serves the simulation engine over HTTP.
package api

import (
	"context"
	"errors"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/reviewsim/internal/cache"
	"github.com/tensorplex-labs/reviewsim/internal/config"
	"github.com/tensorplex-labs/reviewsim/pkg/simapi"
)

// Server wraps the fiber app and the defaults applied to incoming requests.
type Server struct {
	App      *fiber.App
	config   config.ServerEnvConfig
	defaults config.SimEnvConfig
	results  *cache.ResultCache[simapi.SimulateResponse]
}

type ServerOption func(*Server)

// WithResultCache enables caching of deterministic simulate requests.
func WithResultCache(c *cache.ResultCache[simapi.SimulateResponse]) ServerOption {
	return func(s *Server) {
		s.results = c
	}
}

func NewServer(serverCfg config.ServerEnvConfig, defaults config.SimEnvConfig, opts ...ServerOption) *Server {
	app := fiber.New(fiber.Config{
		Prefork:               false,
		ErrorHandler:          fiberErrHandler,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		BodyLimit:             serverCfg.BodySizeLimit,
		ReadTimeout:           serverCfg.ReadTimeout,
		WriteTimeout:          serverCfg.WriteTimeout,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())

	s := &Server{
		App:      app,
		config:   serverCfg,
		defaults: defaults,
	}
	for _, opt := range opts {
		opt(s)
	}

	whitelistedRoutes := []string{simapi.HealthPath}
	app.Use(ZstdMiddleware(whitelistedRoutes))

	s.routes()

	log.Info().
		Str("address", serverCfg.ListenAddress()).
		Int("body_limit", serverCfg.BodySizeLimit).
		Bool("cache", s.results != nil).
		Msg("Server configuration loaded")

	return s
}

func (s *Server) routes() {
	s.App.Get(simapi.HealthPath, s.handleHealth)

	v1 := s.App.Group("/api/v1")
	v1.Get("/presets", s.handlePresets)
	v1.Get("/weight-systems", s.handleWeightSystems)
	v1.Post("/simulate", s.handleSimulate)
	v1.Post("/score", s.handleScore)
}

func fiberErrHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	log.Error().
		Err(err).
		Int("status_code", code).
		Str("path", ctx.Path()).
		Str("method", ctx.Method()).
		Msg("Fiber error handler triggered")

	return ctx.Status(code).JSON(createResponse(map[string]any{}, err))
}

// Start listens until ctx is cancelled, then shuts the app down.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.App.Listen(s.config.ListenAddress())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		return s.App.ShutdownWithTimeout(s.config.WriteTimeout)
	}
}
