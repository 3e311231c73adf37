package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/middleware"
	"github.com/tradeboard/tradeboard/internal/service"
	"github.com/tradeboard/tradeboard/internal/validator"
	"github.com/tradeboard/tradeboard/internal/worker"
)

// AuditHandler handles portfolio audit endpoints
type AuditHandler struct {
	auditService *service.AuditService
	asynqClient  *asynq.Client
	logger       *zap.Logger
}

// NewAuditHandler creates a new portfolio audit handler
func NewAuditHandler(auditService *service.AuditService, asynqClient *asynq.Client, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		asynqClient:  asynqClient,
		logger:       logger,
	}
}

// ExportRequest represents a request to export a dataset as CSV
type ExportRequest struct {
	Dataset string `json:"dataset"`
	Since   string `json:"since,omitempty"`
}

// ExportResponse represents a queued export job
type ExportResponse struct {
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Create handles POST /audits
func (h *AuditHandler) Create(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	var input domain.PortfolioAuditInput
	if err := c.BodyParser(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validator.Validate(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	audit, err := h.auditService.Create(c.Context(), userID, &input)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to record audit")
	}

	return c.Status(fiber.StatusCreated).JSON(audit)
}

// List handles GET /audits
func (h *AuditHandler) List(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	p := ParsePagination(c, 100)
	list, err := h.auditService.List(c.Context(), userID, p.Limit, p.Offset)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to list audits")
	}

	return c.JSON(list)
}

// Get handles GET /audits/:id
func (h *AuditHandler) Get(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	id, err := parseParamUUID(c, "id")
	if err != nil {
		return err
	}

	audit, err := h.auditService.Get(c.Context(), userID, id)
	if err != nil {
		return serviceError(c, h.logger, err, "Failed to get audit")
	}

	return c.JSON(audit)
}

// Delete handles DELETE /audits/:id
func (h *AuditHandler) Delete(c *fiber.Ctx) error {
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}

	id, err := parseParamUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.auditService.Delete(c.Context(), userID, id); err != nil {
		return serviceError(c, h.logger, err, "Failed to delete audit")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Export handles POST /audits/export. The CSV is built in the
// background and uploaded to object storage.
func (h *AuditHandler) Export(c *fiber.Ctx) error {
	if _, err := RequireUserID(c); err != nil {
		return err
	}

	var request ExportRequest
	if err := c.BodyParser(&request); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if request.Dataset == "" {
		request.Dataset = "audits"
	}
	if request.Dataset != "audits" && request.Dataset != "collections" {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid dataset. Valid datasets: audits, collections")
	}

	jobID := uuid.New()
	payload := &worker.CSVExportPayload{
		JobID:   jobID,
		Dataset: request.Dataset,
		Since:   parseQueryTime(c, "since"),
	}

	task, err := worker.NewCSVExportTask(payload)
	if err != nil {
		h.logger.Error("failed to create export task", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to create export job")
	}

	info, err := h.asynqClient.Enqueue(task, asynq.Queue("low"))
	if err != nil {
		h.logger.Error("failed to enqueue export task", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to enqueue export job")
	}

	h.logger.Info("export job queued",
		zap.String("job_id", jobID.String()),
		zap.String("task_id", info.ID),
		zap.String("dataset", request.Dataset),
	)

	return c.Status(fiber.StatusAccepted).JSON(ExportResponse{
		JobID:   jobID.String(),
		Status:  "queued",
		Message: "Export job has been queued for processing",
	})
}

// RegisterRoutes registers portfolio audit routes
func (h *AuditHandler) RegisterRoutes(app *fiber.App, authMiddleware *middleware.AuthMiddleware) {
	audits := app.Group("/api/v1/audits", authMiddleware.RequireAuth())

	audits.Post("/", h.Create)
	audits.Get("/", h.List)
	audits.Post("/export", h.Export)
	audits.Get("/:id", h.Get)
	audits.Delete("/:id", h.Delete)
}
