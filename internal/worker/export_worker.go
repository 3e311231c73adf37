package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/service"
)

// TypeCSVExport is the task type for CSV exports
const TypeCSVExport = "export:csv"

// CSVExportPayload is the payload for CSV export tasks
type CSVExportPayload struct {
	JobID   uuid.UUID `json:"job_id"`
	Dataset string    `json:"dataset"`
	Since   time.Time `json:"since,omitempty"`
}

// NewCSVExportTask creates a CSV export task
func NewCSVExportTask(payload *CSVExportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal CSV export payload: %w", err)
	}
	return asynq.NewTask(TypeCSVExport, data, asynq.MaxRetry(3), asynq.Timeout(30*time.Minute)), nil
}

// ExportWorker writes CSV exports to object storage
type ExportWorker struct {
	logger  *zap.Logger
	exports *service.ExportService
}

// NewExportWorker creates a new export worker
func NewExportWorker(logger *zap.Logger, exports *service.ExportService) *ExportWorker {
	return &ExportWorker{
		logger:  logger,
		exports: exports,
	}
}

// ProcessTask builds one CSV export and uploads it
func (w *ExportWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload CSVExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal CSV export payload: %w", err)
	}

	w.logger.Info("processing CSV export",
		zap.String("job_id", payload.JobID.String()),
		zap.String("dataset", payload.Dataset),
	)

	key, err := w.exports.ExportCSV(ctx, payload.Dataset, payload.Since)
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", payload.Dataset, err)
	}

	w.logger.Info("CSV export completed",
		zap.String("job_id", payload.JobID.String()),
		zap.String("object_key", key),
	)

	return nil
}
