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

// TypeDocumentIngest is the task type for background document embedding
const TypeDocumentIngest = "rag:ingest"

// DocumentIngestPayload is the payload for document ingest tasks
type DocumentIngestPayload struct {
	DocumentID uuid.UUID `json:"document_id"`
}

// NewDocumentIngestTask creates a document ingest task
func NewDocumentIngestTask(payload *DocumentIngestPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document ingest payload: %w", err)
	}
	return asynq.NewTask(TypeDocumentIngest, data, asynq.MaxRetry(3), asynq.Timeout(10*time.Minute)), nil
}

// IngestWorker embeds documents queued for asynchronous ingestion
type IngestWorker struct {
	logger       *zap.Logger
	intelligence *service.IntelligenceService
}

// NewIngestWorker creates a new ingest worker
func NewIngestWorker(logger *zap.Logger, intelligence *service.IntelligenceService) *IngestWorker {
	return &IngestWorker{
		logger:       logger,
		intelligence: intelligence,
	}
}

// ProcessTask chunks and embeds one stored document
func (w *IngestWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload DocumentIngestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal document ingest payload: %w", err)
	}

	count, err := w.intelligence.EmbedDocument(ctx, payload.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to embed document %s: %w", payload.DocumentID, err)
	}

	w.logger.Info("document embedded",
		zap.String("document_id", payload.DocumentID.String()),
		zap.Int("chunks", count),
	)

	return nil
}
