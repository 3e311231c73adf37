package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/middleware"
	"github.com/tradeboard/tradeboard/internal/service"
	"github.com/tradeboard/tradeboard/internal/validator"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input domain.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validator.Validate(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Register(c.Context(), &input)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to register")
	}

	h.logger.Info("user registered", zap.String("user_id", result.User.ID.String()))

	return c.Status(fiber.StatusCreated).JSON(result)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input domain.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validator.Validate(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Login(c.Context(), &input)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to log in")
	}

	return c.JSON(result)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	user, err := h.authService.GetUser(c.Context(), userID)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to load user")
	}

	return c.JSON(user)
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(app *fiber.App, authMiddleware *middleware.AuthMiddleware) {
	auth := app.Group("/api/v1/auth")

	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Get("/me", authMiddleware.RequireAuth(), h.Me)
}
