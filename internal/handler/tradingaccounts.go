package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/middleware"
	"github.com/tradeboard/tradeboard/internal/service"
	"github.com/tradeboard/tradeboard/internal/validator"
)

// TradingAccountHandler handles trading account and signal log endpoints
type TradingAccountHandler struct {
	tradingService *service.TradingService
	logger         *zap.Logger
}

// NewTradingAccountHandler creates a new trading account handler
func NewTradingAccountHandler(tradingService *service.TradingService, logger *zap.Logger) *TradingAccountHandler {
	return &TradingAccountHandler{
		tradingService: tradingService,
		logger:         logger,
	}
}

// Create handles POST /trading-accounts
func (h *TradingAccountHandler) Create(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	var input domain.TradingAccountInput
	if err := c.BodyParser(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validator.Validate(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}
	if !input.Firm.IsValid() {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid prop firm")
	}

	account, err := h.tradingService.CreateAccount(c.Context(), userID, &input)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to register trading account")
	}

	return c.Status(fiber.StatusCreated).JSON(account)
}

// List handles GET /trading-accounts
func (h *TradingAccountHandler) List(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	accounts, err := h.tradingService.ListAccounts(c.Context(), userID)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to list trading accounts")
	}

	return c.JSON(fiber.Map{
		"accounts":   accounts,
		"totalCount": len(accounts),
	})
}

// Get handles GET /trading-accounts/:id
func (h *TradingAccountHandler) Get(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	id, err := parseParamUUID(c, "id")
	if err != nil {
		return err
	}

	account, err := h.tradingService.GetAccount(c.Context(), userID, id)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to get trading account")
	}

	return c.JSON(account)
}

// Update handles PATCH /trading-accounts/:id
func (h *TradingAccountHandler) Update(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	id, err := parseParamUUID(c, "id")
	if err != nil {
		return err
	}

	var update domain.TradingAccountUpdate
	if err := c.BodyParser(&update); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validator.Validate(&update); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	account, err := h.tradingService.UpdateAccount(c.Context(), userID, id, &update)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to update trading account")
	}

	return c.JSON(account)
}

// Delete handles DELETE /trading-accounts/:id
func (h *TradingAccountHandler) Delete(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	id, err := parseParamUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.tradingService.DeleteAccount(c.Context(), userID, id); err != nil {
		return serviceError(c, h.logger, err, "Failed to delete trading account")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RecordSignal handles POST /trading-accounts/:id/signals
func (h *TradingAccountHandler) RecordSignal(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	id, err := parseParamUUID(c, "id")
	if err != nil {
		return err
	}

	var input domain.SignalLogInput
	if err := c.BodyParser(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validator.Validate(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	log, err := h.tradingService.RecordSignal(c.Context(), userID, id, &input)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to record signal")
	}

	return c.Status(fiber.StatusCreated).JSON(log)
}

// ListSignals handles GET /trading-accounts/:id/signals
func (h *TradingAccountHandler) ListSignals(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	id, err := parseParamUUID(c, "id")
	if err != nil {
		return err
	}

	from := parseQueryTime(c, "from")
	to := parseQueryTime(c, "to")
	limit := parseQueryInt(c, "limit", 100)

	signals, err := h.tradingService.ListSignals(c.Context(), userID, id, from, to, limit)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to list signals")
	}

	return c.JSON(fiber.Map{
		"signals":    signals,
		"totalCount": len(signals),
	})
}

// SignalStats handles GET /trading-accounts/:id/signals/stats
func (h *TradingAccountHandler) SignalStats(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	id, err := parseParamUUID(c, "id")
	if err != nil {
		return err
	}

	from := parseQueryTime(c, "from")
	to := parseQueryTime(c, "to")

	stats, err := h.tradingService.SignalStats(c.Context(), userID, id, from, to)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to load signal stats")
	}

	return c.JSON(stats)
}

// RegisterRoutes registers trading account routes
func (h *TradingAccountHandler) RegisterRoutes(app *fiber.App, authMiddleware *middleware.AuthMiddleware) {
	accounts := app.Group("/api/v1/trading-accounts", authMiddleware.RequireAuth())

	accounts.Post("/", h.Create)
	accounts.Get("/", h.List)
	accounts.Get("/:id", h.Get)
	accounts.Patch("/:id", h.Update)
	accounts.Delete("/:id", h.Delete)
	accounts.Post("/:id/signals", h.RecordSignal)
	accounts.Get("/:id/signals", h.ListSignals)
	accounts.Get("/:id/signals/stats", h.SignalStats)
}
