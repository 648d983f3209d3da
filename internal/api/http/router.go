package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Me             *handlers.MeHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. The bearer filter runs on every /auth/v1
// route; login, signup, and refreshToken stay reachable because the filter
// passes unauthenticated requests through. Only routes behind RequireAuth
// reject them.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	v1 := app.Group("/auth/v1", cfg.AuthMiddleware.Handle)
	v1.Post("/signup", cfg.Auth.Signup)
	v1.Post("/login", cfg.Auth.Login)
	v1.Post("/refreshToken", cfg.Auth.Refresh)

	protected := v1.Group("", auth.RequireAuth())
	protected.Get("/me", cfg.Me.Me)
}
