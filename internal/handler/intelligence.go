package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/middleware"
	"github.com/tradeboard/tradeboard/internal/service"
	"github.com/tradeboard/tradeboard/internal/validator"
	"github.com/tradeboard/tradeboard/internal/worker"
)

// IntelligenceHandler handles document ingestion and retrieval endpoints
type IntelligenceHandler struct {
	intelligence *service.IntelligenceService
	asynqClient  *asynq.Client
	logger       *zap.Logger
}

// NewIntelligenceHandler creates a new intelligence handler
func NewIntelligenceHandler(intelligence *service.IntelligenceService, asynqClient *asynq.Client, logger *zap.Logger) *IntelligenceHandler {
	return &IntelligenceHandler{
		intelligence: intelligence,
		asynqClient:  asynqClient,
		logger:       logger,
	}
}

// IngestResponse describes the outcome of a document ingestion
type IngestResponse struct {
	Document *domain.Document `json:"document"`
	Chunks   int              `json:"chunks"`
	Status   string           `json:"status"`
}

// CreateDocument handles POST /documents. With async set the document
// is stored immediately and embedded in the background.
func (h *IntelligenceHandler) CreateDocument(c *fiber.Ctx) error {
	if _, err := RequireUserID(c); err != nil {
		return err
	}

	var input domain.DocumentInput
	if err := c.BodyParser(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validator.Validate(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	if input.Async {
		doc, err := h.intelligence.CreateDocument(c.Context(), &input)
		if err != nil {
			return serviceError(c, h.logger, err, "Failed to store document")
		}

		task, err := worker.NewDocumentIngestTask(&worker.DocumentIngestPayload{DocumentID: doc.ID})
		if err != nil {
			h.logger.Error("failed to create ingest task", zap.Error(err))
			return errorResponse(c, fiber.StatusInternalServerError, "Failed to queue document ingestion")
		}
		if _, err := h.asynqClient.Enqueue(task, asynq.Queue("default")); err != nil {
			h.logger.Error("failed to enqueue ingest task", zap.Error(err))
			return errorResponse(c, fiber.StatusInternalServerError, "Failed to queue document ingestion")
		}

		h.logger.Info("document ingestion queued", zap.String("document_id", doc.ID.String()))

		return c.Status(fiber.StatusAccepted).JSON(IngestResponse{
			Document: doc,
			Status:   "queued",
		})
	}

	doc, chunks, err := h.intelligence.IngestDocument(c.Context(), &input)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to ingest document")
	}

	return c.Status(fiber.StatusCreated).JSON(IngestResponse{
		Document: doc,
		Chunks:   chunks,
		Status:   "embedded",
	})
}

// GetDocument handles GET /documents/:id
func (h *IntelligenceHandler) GetDocument(c *fiber.Ctx) error {
	if _, err := RequireUserID(c); err != nil {
		return err
	}

	id, err := parseParamUUID(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.intelligence.GetDocument(c.Context(), id)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to get document")
	}

	return c.JSON(doc)
}

// DeleteDocument handles DELETE /documents/:id
func (h *IntelligenceHandler) DeleteDocument(c *fiber.Ctx) error {
	if _, err := RequireUserID(c); err != nil {
		return err
	}

	id, err := parseParamUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.intelligence.DeleteDocument(c.Context(), id); err != nil {
		return serviceError(c, h.logger, err, "Failed to delete document")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Query handles POST /query
func (h *IntelligenceHandler) Query(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	var input domain.QueryInput
	if err := c.BodyParser(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validator.Validate(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.intelligence.Query(c.Context(), userID, &input)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to answer query")
	}

	return c.JSON(result)
}

// Recommend handles POST /recommend
func (h *IntelligenceHandler) Recommend(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	var input domain.RecommendationInput
	if err := c.BodyParser(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validator.Validate(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	rec, err := h.intelligence.Recommend(c.Context(), userID, &input)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to build recommendation")
	}

	return c.JSON(rec)
}

// History handles GET /query/history
func (h *IntelligenceHandler) History(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	limit := parseQueryInt(c, "limit", 20)

	history, err := h.intelligence.History(c.Context(), userID, limit)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to load query history")
	}

	return c.JSON(fiber.Map{
		"queries":    history,
		"totalCount": len(history),
	})
}

// RegisterRoutes registers intelligence routes
func (h *IntelligenceHandler) RegisterRoutes(app *fiber.App, authMiddleware *middleware.AuthMiddleware) {
	v1 := app.Group("/api/v1", authMiddleware.RequireAuth())

	v1.Post("/documents", h.CreateDocument)
	v1.Get("/documents/:id", h.GetDocument)
	v1.Delete("/documents/:id", h.DeleteDocument)

	v1.Post("/query", h.Query)
	v1.Get("/query/history", h.History)
	v1.Post("/recommend", h.Recommend)
}
