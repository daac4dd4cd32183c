package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/avilachehab/christmas-gifts/internal/api/http/handlers"
	"github.com/avilachehab/christmas-gifts/internal/auth"
)

// LoginPath is the only /api route that does not require a token.
const LoginPath = "/api/auth/login"

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.AuthMiddleware
	// LoginThrottle runs before the login handler when set.
	LoginThrottle fiber.Handler
	// Protected mounts further handlers behind the auth middleware.
	Protected []func(fiber.Router)
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
		app.Get("/metrics", cfg.Health.Metrics)
	}

	loginChain := []fiber.Handler{}
	if cfg.LoginThrottle != nil {
		loginChain = append(loginChain, cfg.LoginThrottle)
	}
	loginChain = append(loginChain, cfg.Auth.Login)
	app.Post(LoginPath, loginChain...)

	protected := app.Group("/api", cfg.AuthMiddleware.Handle)
	protected.Get("/auth/session", cfg.Auth.Session)
	for _, mount := range cfg.Protected {
		mount(protected)
	}
}
