package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/middleware"
	"github.com/tradeboard/tradeboard/internal/service"
	"github.com/tradeboard/tradeboard/internal/validator"
)

// APIKeyHandler handles the encrypted provider key store endpoints
type APIKeyHandler struct {
	keyService *service.APIKeyService
	logger     *zap.Logger
}

// NewAPIKeyHandler creates a new API key handler
func NewAPIKeyHandler(keyService *service.APIKeyService, logger *zap.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		keyService: keyService,
		logger:     logger,
	}
}

// RevealResponse carries a decrypted key value
type RevealResponse struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Create handles POST /apikeys
func (h *APIKeyHandler) Create(c *fiber.Ctx) error {
	if _, err := RequireUserID(c); err != nil {
		return err
	}

	var input domain.APIKeyInput
	if err := c.BodyParser(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validator.Validate(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	key, err := h.keyService.Create(c.Context(), &input)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to store API key")
	}

	h.logger.Info("API key stored",
		zap.String("key_id", key.ID.String()),
		zap.String("provider", key.Provider),
	)

	return c.Status(fiber.StatusCreated).JSON(key)
}

// List handles GET /apikeys. Values stay sealed; only previews are
// returned.
func (h *APIKeyHandler) List(c *fiber.Ctx) error {
	if _, err := RequireUserID(c); err != nil {
		return err
	}

	list, err := h.keyService.List(c.Context())
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to list API keys")
	}

	return c.JSON(list)
}

// Get handles GET /apikeys/:id
func (h *APIKeyHandler) Get(c *fiber.Ctx) error {
	if _, err := RequireUserID(c); err != nil {
		return err
	}

	id, err := parseParamUUID(c, "id")
	if err != nil {
		return err
	}

	key, err := h.keyService.Get(c.Context(), id)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to get API key")
	}

	return c.JSON(key)
}

// Reveal handles POST /apikeys/:id/reveal
func (h *APIKeyHandler) Reveal(c *fiber.Ctx) error {
	if _, err := RequireUserID(c); err != nil {
		return err
	}

	id, err := parseParamUUID(c, "id")
	if err != nil {
		return err
	}

	value, err := h.keyService.Reveal(c.Context(), id)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to reveal API key")
	}

	h.logger.Info("API key revealed", zap.String("key_id", id.String()))

	return c.JSON(RevealResponse{ID: id.String(), Value: value})
}

// Update handles PATCH /apikeys/:id
func (h *APIKeyHandler) Update(c *fiber.Ctx) error {
	if _, err := RequireUserID(c); err != nil {
		return err
	}

	id, err := parseParamUUID(c, "id")
	if err != nil {
		return err
	}

	var update domain.APIKeyUpdate
	if err := c.BodyParser(&update); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validator.Validate(&update); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	key, err := h.keyService.Update(c.Context(), id, &update)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to update API key")
	}

	return c.JSON(key)
}

// Delete handles DELETE /apikeys/:id
func (h *APIKeyHandler) Delete(c *fiber.Ctx) error {
	if _, err := RequireUserID(c); err != nil {
		return err
	}

	id, err := parseParamUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.keyService.Delete(c.Context(), id); err != nil {
		return serviceError(c, h.logger, err, "Failed to delete API key")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RegisterRoutes registers API key routes
func (h *APIKeyHandler) RegisterRoutes(app *fiber.App, authMiddleware *middleware.AuthMiddleware) {
	keys := app.Group("/api/v1/apikeys", authMiddleware.RequireAuth())

	keys.Post("/", h.Create)
	keys.Get("/", h.List)
	keys.Get("/:id", h.Get)
	keys.Post("/:id/reveal", h.Reveal)
	keys.Patch("/:id", h.Update)
	keys.Delete("/:id", h.Delete)
}
