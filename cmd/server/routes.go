package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes registers all HTTP routes
func registerRoutes(app *fiber.App, deps *Dependencies) {
	// Health and version routes (no auth required)
	deps.HealthHandler.RegisterRoutes(app)

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API documentation
	deps.DocsHandler.RegisterRoutes(app)

	// Authentication (register/login public, /me behind auth)
	deps.AuthHandler.RegisterRoutes(app, deps.AuthMiddleware)

	// Authenticated API surface
	deps.AccountHandler.RegisterRoutes(app, deps.AuthMiddleware)
	deps.RiskProfileHandler.RegisterRoutes(app, deps.AuthMiddleware)
	deps.AuditHandler.RegisterRoutes(app, deps.AuthMiddleware)
	deps.APIKeyHandler.RegisterRoutes(app, deps.AuthMiddleware)
	deps.TradingAccountHandler.RegisterRoutes(app, deps.AuthMiddleware)
	deps.MarketHandler.RegisterRoutes(app, deps.AuthMiddleware)
	deps.IntelligenceHandler.RegisterRoutes(app, deps.AuthMiddleware)
	deps.ServicesHandler.RegisterRoutes(app, deps.AuthMiddleware)
}
