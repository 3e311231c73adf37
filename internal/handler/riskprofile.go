package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/middleware"
	"github.com/tradeboard/tradeboard/internal/service"
	"github.com/tradeboard/tradeboard/internal/validator"
)

// RiskProfileHandler handles risk profile endpoints
type RiskProfileHandler struct {
	profileService *service.RiskProfileService
	logger         *zap.Logger
}

// NewRiskProfileHandler creates a new risk profile handler
func NewRiskProfileHandler(profileService *service.RiskProfileService, logger *zap.Logger) *RiskProfileHandler {
	return &RiskProfileHandler{
		profileService: profileService,
		logger:         logger,
	}
}

// Get handles GET /risk-profile. A default profile is created on the
// first read.
func (h *RiskProfileHandler) Get(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	profile, err := h.profileService.GetOrCreate(c.Context(), userID)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to load risk profile")
	}

	return c.JSON(profile)
}

// Update handles PATCH /risk-profile
func (h *RiskProfileHandler) Update(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	var update domain.RiskProfileUpdate
	if err := c.BodyParser(&update); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validator.Validate(&update); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	profile, err := h.profileService.Update(c.Context(), userID, &update)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to update risk profile")
	}

	return c.JSON(profile)
}

// RegisterRoutes registers risk profile routes
func (h *RiskProfileHandler) RegisterRoutes(app *fiber.App, authMiddleware *middleware.AuthMiddleware) {
	profile := app.Group("/api/v1/risk-profile", authMiddleware.RequireAuth())

	profile.Get("/", h.Get)
	profile.Patch("/", h.Update)
}
