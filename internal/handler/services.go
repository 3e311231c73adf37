package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/middleware"
	"github.com/tradeboard/tradeboard/internal/service"
)

// ServicesHandler reports the health of sibling deployment services
type ServicesHandler struct {
	probeService *service.ProbeService
	logger       *zap.Logger
}

// NewServicesHandler creates a new services handler
func NewServicesHandler(probeService *service.ProbeService, logger *zap.Logger) *ServicesHandler {
	return &ServicesHandler{
		probeService: probeService,
		logger:       logger,
	}
}

// Status handles GET /services. All configured endpoints are probed
// concurrently on each call.
func (h *ServicesHandler) Status(c *fiber.Ctx) error {
	report := h.probeService.Probe(c.Context())

	status := fiber.StatusOK
	if !report.AllUp {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(report)
}

// RegisterRoutes registers service status routes
func (h *ServicesHandler) RegisterRoutes(app *fiber.App, authMiddleware *middleware.AuthMiddleware) {
	services := app.Group("/api/v1/services", authMiddleware.RequireAuth())

	services.Get("/", h.Status)
}
