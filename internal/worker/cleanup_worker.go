package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeDataCleanup is the task type for retention-based data cleanup
const TypeDataCleanup = "cleanup:data"

// DataCleanupPayload is the payload for data cleanup tasks
type DataCleanupPayload struct {
	RetentionDays int  `json:"retention_days"`
	DryRun        bool `json:"dry_run"`
}

// NewDataCleanupTask creates a data cleanup task
func NewDataCleanupTask(payload *DataCleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal data cleanup payload: %w", err)
	}
	return asynq.NewTask(TypeDataCleanup, data, asynq.MaxRetry(3), asynq.Timeout(1*time.Hour)), nil
}

// CandlePruner removes market data rows older than a cutoff
type CandlePruner interface {
	PruneBefore(ctx context.Context, before time.Time) error
}

// SignalPruner removes signal log rows older than a cutoff
type SignalPruner interface {
	PruneBefore(ctx context.Context, before time.Time) error
}

// CollectionLogPruner removes collection run rows older than a cutoff
type CollectionLogPruner interface {
	PruneBefore(ctx context.Context, before time.Time) (int64, error)
}

// QueryHistoryPruner removes answered query rows older than a cutoff
type QueryHistoryPruner interface {
	PruneQueryHistory(ctx context.Context, before time.Time) (int64, error)
}

// CleanupWorker applies the retention policy to time series and logs
type CleanupWorker struct {
	logger      *zap.Logger
	candleRepo  CandlePruner
	signalRepo  SignalPruner
	logRepo     CollectionLogPruner
	historyRepo QueryHistoryPruner
}

// NewCleanupWorker creates a new cleanup worker
func NewCleanupWorker(
	logger *zap.Logger,
	candleRepo CandlePruner,
	signalRepo SignalPruner,
	logRepo CollectionLogPruner,
	historyRepo QueryHistoryPruner,
) *CleanupWorker {
	return &CleanupWorker{
		logger:      logger,
		candleRepo:  candleRepo,
		signalRepo:  signalRepo,
		logRepo:     logRepo,
		historyRepo: historyRepo,
	}
}

// ProcessTask prunes all retained datasets past the cutoff
func (w *CleanupWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload DataCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal data cleanup payload: %w", err)
	}

	if payload.RetentionDays <= 0 {
		w.logger.Info("retention disabled, skipping cleanup")
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -payload.RetentionDays)

	w.logger.Info("processing data cleanup",
		zap.Int("retention_days", payload.RetentionDays),
		zap.Time("cutoff", cutoff),
		zap.Bool("dry_run", payload.DryRun),
	)

	if payload.DryRun {
		w.logger.Info("dry run, skipping deletion")
		return nil
	}

	if err := w.candleRepo.PruneBefore(ctx, cutoff); err != nil {
		return fmt.Errorf("failed to prune market data: %w", err)
	}

	if err := w.signalRepo.PruneBefore(ctx, cutoff); err != nil {
		return fmt.Errorf("failed to prune signal logs: %w", err)
	}

	runs, err := w.logRepo.PruneBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune collection logs: %w", err)
	}

	queries, err := w.historyRepo.PruneQueryHistory(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune query history: %w", err)
	}

	w.logger.Info("data cleanup completed",
		zap.Int64("collection_runs_deleted", runs),
		zap.Int64("queries_deleted", queries),
	)

	return nil
}
