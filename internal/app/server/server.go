package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/linkpro/linkpro/internal/app/repository"
	"github.com/linkpro/linkpro/internal/app/service"
	"github.com/linkpro/linkpro/internal/app/token"
	inthttp "github.com/linkpro/linkpro/internal/http/handler"
	"github.com/linkpro/linkpro/internal/http/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies bundles everything the HTTP server needs.
type Dependencies struct {
	Logger           *zap.Logger
	Redis            *redis.Client
	Users            repository.UserRepository
	Identity         *service.IdentityService
	Sessions         *service.SessionController
	Links            *service.LinkService
	Hub              *service.RefreshHub
	RedirectTokens   *token.RedirectSigner
	CountdownSeconds int
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with default routes.
func New(deps Dependencies) *Server {
	app := fiber.New()

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerMiddleware()
	s.registerRoutes()
	return s
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerMiddleware() {
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Recovery(s.deps.Logger))
	s.app.Use(middleware.Logger(s.deps.Logger))
	s.app.Use(middleware.CORS())

	// Rate limiting is only active when a Redis client was provided.
	if s.deps.Redis != nil {
		s.app.Use(middleware.RateLimit(s.deps.Redis, middleware.DefaultRateLimitConfig(), s.deps.Logger))
	}
}

func (s *Server) registerRoutes() {
	authHandler := inthttp.NewAuthHandler(inthttp.AuthDeps{
		Logger:   s.deps.Logger,
		Identity: s.deps.Identity,
		Sessions: s.deps.Sessions,
	})
	authHandler.Register(s.app)

	linkHandler := inthttp.NewLinkHandler(inthttp.LinkDeps{
		Logger:   s.deps.Logger,
		Identity: s.deps.Identity,
		Links:    s.deps.Links,
	})
	linkHandler.Register(s.app)

	dashboardHandler := inthttp.NewDashboardHandler(inthttp.DashboardDeps{
		Logger:   s.deps.Logger,
		Identity: s.deps.Identity,
		Hub:      s.deps.Hub,
	})
	dashboardHandler.Register(s.app)

	profileHandler := inthttp.NewProfileHandler(inthttp.ProfileDeps{
		Logger: s.deps.Logger,
		Users:  s.deps.Users,
		Links:  s.deps.Links,
	})
	profileHandler.Register(s.app)

	redirectHandler := inthttp.NewRedirectHandler(inthttp.RedirectDeps{
		Logger:           s.deps.Logger,
		Users:            s.deps.Users,
		Links:            s.deps.Links,
		Tokens:           s.deps.RedirectTokens,
		CountdownSeconds: s.deps.CountdownSeconds,
	})
	redirectHandler.Register(s.app)
}
