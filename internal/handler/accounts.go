package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/middleware"
	"github.com/tradeboard/tradeboard/internal/service"
	"github.com/tradeboard/tradeboard/internal/validator"
)

// AccountHandler handles portfolio account endpoints
type AccountHandler struct {
	accountService *service.AccountService
	logger         *zap.Logger
}

// NewAccountHandler creates a new portfolio account handler
func NewAccountHandler(accountService *service.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// Create handles POST /accounts
func (h *AccountHandler) Create(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	var input domain.PortfolioAccountInput
	if err := c.BodyParser(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validator.Validate(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	account, err := h.accountService.Create(c.Context(), userID, &input)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to create account")
	}

	return c.Status(fiber.StatusCreated).JSON(account)
}

// List handles GET /accounts
func (h *AccountHandler) List(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	p := ParsePagination(c, 100)
	list, err := h.accountService.List(c.Context(), userID, p.Limit, p.Offset)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to list accounts")
	}

	return c.JSON(list)
}

// Get handles GET /accounts/:id
func (h *AccountHandler) Get(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	id, err := parseParamUUID(c, "id")
	if err != nil {
		return err
	}

	account, err := h.accountService.Get(c.Context(), userID, id)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to get account")
	}

	return c.JSON(account)
}

// Update handles PATCH /accounts/:id
func (h *AccountHandler) Update(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	id, err := parseParamUUID(c, "id")
	if err != nil {
		return err
	}

	var update domain.PortfolioAccountUpdate
	if err := c.BodyParser(&update); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validator.Validate(&update); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	account, err := h.accountService.Update(c.Context(), userID, id, &update)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to update account")
	}

	return c.JSON(account)
}

// Delete handles DELETE /accounts/:id
func (h *AccountHandler) Delete(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	id, err := parseParamUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.accountService.Delete(c.Context(), userID, id); err != nil {
		return serviceError(c, h.logger, err, "Failed to delete account")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RegisterRoutes registers portfolio account routes
func (h *AccountHandler) RegisterRoutes(app *fiber.App, authMiddleware *middleware.AuthMiddleware) {
	accounts := app.Group("/api/v1/accounts", authMiddleware.RequireAuth())

	accounts.Post("/", h.Create)
	accounts.Get("/", h.List)
	accounts.Get("/:id", h.Get)
	accounts.Patch("/:id", h.Update)
	accounts.Delete("/:id", h.Delete)
}
