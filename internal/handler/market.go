package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/middleware"
	"github.com/tradeboard/tradeboard/internal/service"
	"github.com/tradeboard/tradeboard/internal/worker"
)

// MarketHandler handles market data endpoints
type MarketHandler struct {
	marketService *service.MarketDataService
	asynqClient   *asynq.Client
	logger        *zap.Logger
}

// NewMarketHandler creates a new market data handler
func NewMarketHandler(marketService *service.MarketDataService, asynqClient *asynq.Client, logger *zap.Logger) *MarketHandler {
	return &MarketHandler{
		marketService: marketService,
		asynqClient:   asynqClient,
		logger:        logger,
	}
}

// Overview handles GET /market/overview
func (h *MarketHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.marketService.Overview(c.Context())
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to build market overview")
	}

	return c.JSON(fiber.Map{
		"symbols":   overview,
		"updatedAt": time.Now().UTC(),
	})
}

// Candles handles GET /market/candles
func (h *MarketHandler) Candles(c *fiber.Ctx) error {
	filter := domain.CandleFilter{
		Symbol:      c.Query("symbol"),
		Granularity: domain.Granularity(c.Query("granularity")),
		Limit:       parseQueryInt(c, "limit", 0),
	}

	if from := parseQueryTime(c, "from"); !from.IsZero() {
		filter.From = &from
	}
	if to := parseQueryTime(c, "to"); !to.IsZero() {
		filter.To = &to
	}

	candles, err := h.marketService.Candles(c.Context(), filter)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to load candles")
	}

	return c.JSON(fiber.Map{
		"candles":    candles,
		"totalCount": len(candles),
	})
}

// Collections handles GET /market/collections
func (h *MarketHandler) Collections(c *fiber.Ctx) error {
	limit := parseQueryInt(c, "limit", 0)

	runs, err := h.marketService.Collections(c.Context(), limit)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to list collection runs")
	}

	return c.JSON(fiber.Map{
		"collections": runs,
		"totalCount":  len(runs),
	})
}

// Collect handles POST /market/collect. It queues an out-of-schedule
// collection run for the given asset type.
func (h *MarketHandler) Collect(c *fiber.Ctx) error {
	assetType := domain.AssetType(c.Query("assetType", string(domain.AssetTypeCrypto)))

	var task *asynq.Task
	switch assetType {
	case domain.AssetTypeCrypto:
		task = worker.NewCollectCryptoTask()
	case domain.AssetTypeStock:
		task = worker.NewCollectStocksTask()
	default:
		return errorResponse(c, fiber.StatusBadRequest, "Invalid asset type. Valid types: crypto, stock")
	}

	info, err := h.asynqClient.Enqueue(task, asynq.Queue("critical"))
	if err != nil {
		h.logger.Error("failed to enqueue collection task", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to queue collection run")
	}

	h.logger.Info("collection run queued",
		zap.String("asset_type", string(assetType)),
		zap.String("task_id", info.ID),
	)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":    "queued",
		"assetType": assetType,
	})
}

// RegisterRoutes registers market data routes
func (h *MarketHandler) RegisterRoutes(app *fiber.App, authMiddleware *middleware.AuthMiddleware) {
	market := app.Group("/api/v1/market", authMiddleware.RequireAuth())

	market.Get("/overview", h.Overview)
	market.Get("/candles", h.Candles)
	market.Get("/collections", h.Collections)
	market.Post("/collect", h.Collect)
}
