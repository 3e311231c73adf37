package worker

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/service"
)

const (
	// TypeCollectCrypto is the task type for crypto market data collection
	TypeCollectCrypto = "collect:crypto"
	// TypeCollectStocks is the task type for stock market data collection
	TypeCollectStocks = "collect:stocks"
	// TypeRefreshOverview is the task type for rebuilding the market overview cache
	TypeRefreshOverview = "collect:overview"
)

// NewCollectCryptoTask creates a crypto collection task
func NewCollectCryptoTask() *asynq.Task {
	return asynq.NewTask(TypeCollectCrypto, nil, asynq.MaxRetry(3), asynq.Timeout(5*time.Minute))
}

// NewCollectStocksTask creates a stock collection task
func NewCollectStocksTask() *asynq.Task {
	return asynq.NewTask(TypeCollectStocks, nil, asynq.MaxRetry(3), asynq.Timeout(5*time.Minute))
}

// NewRefreshOverviewTask creates an overview refresh task
func NewRefreshOverviewTask() *asynq.Task {
	return asynq.NewTask(TypeRefreshOverview, nil, asynq.MaxRetry(2), asynq.Timeout(2*time.Minute))
}

// CollectWorker runs scheduled market data collection
type CollectWorker struct {
	logger    *zap.Logger
	collector *service.CollectorService
	market    *service.MarketDataService
}

// NewCollectWorker creates a new collect worker
func NewCollectWorker(logger *zap.Logger, collector *service.CollectorService, market *service.MarketDataService) *CollectWorker {
	return &CollectWorker{
		logger:    logger,
		collector: collector,
		market:    market,
	}
}

// ProcessCryptoTask collects candles for all configured crypto symbols
func (w *CollectWorker) ProcessCryptoTask(ctx context.Context, _ *asynq.Task) error {
	run, err := w.collector.CollectCrypto(ctx)
	if err != nil {
		return err
	}

	w.logger.Info("crypto collection run finished",
		zap.String("run_id", run.ID.String()),
		zap.String("status", string(run.Status)),
		zap.Int("succeeded", run.SymbolsSucceeded),
		zap.Int("failed", run.SymbolsFailed),
	)

	return nil
}

// ProcessStocksTask collects candles for all configured stock symbols
func (w *CollectWorker) ProcessStocksTask(ctx context.Context, _ *asynq.Task) error {
	run, err := w.collector.CollectStocks(ctx)
	if err != nil {
		return err
	}

	w.logger.Info("stock collection run finished",
		zap.String("run_id", run.ID.String()),
		zap.String("status", string(run.Status)),
		zap.Int("succeeded", run.SymbolsSucceeded),
		zap.Int("failed", run.SymbolsFailed),
	)

	return nil
}

// ProcessOverviewTask recomputes the cached market overview
func (w *CollectWorker) ProcessOverviewTask(ctx context.Context, _ *asynq.Task) error {
	if err := w.market.RefreshOverview(ctx); err != nil {
		return err
	}

	w.logger.Debug("market overview refreshed")
	return nil
}
