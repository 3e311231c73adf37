package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/config"
	"github.com/tradeboard/tradeboard/internal/pkg/database"
	"github.com/tradeboard/tradeboard/internal/service"
)

// HeartbeatKey is the Redis key the worker refreshes while alive. The
// API health endpoint checks it to report worker liveness.
const HeartbeatKey = "worker:heartbeat"

// HeartbeatTTL is how long a heartbeat stays valid without refresh
const HeartbeatTTL = 90 * time.Second

const heartbeatInterval = 30 * time.Second

// Server is the worker server
type Server struct {
	logger    *zap.Logger
	config    *config.Config
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	client    *asynq.Client
	redis     *database.RedisDB
	stopBeat  chan struct{}
}

// Dependencies holds dependencies for workers
type Dependencies struct {
	CollectorService    *service.CollectorService
	MarketDataService   *service.MarketDataService
	IntelligenceService *service.IntelligenceService
	ExportService       *service.ExportService
	CandleRepo          CandlePruner
	SignalRepo          SignalPruner
	CollectionLogRepo   CollectionLogPruner
	QueryHistoryRepo    QueryHistoryPruner
	Redis               *database.RedisDB
}

// NewServer creates a new worker server
func NewServer(logger *zap.Logger, cfg *config.Config, deps *Dependencies) (*Server, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	queueCritical := cfg.Worker.QueueCritical
	if queueCritical == "" {
		queueCritical = "critical"
	}
	queueDefault := cfg.Worker.QueueDefault
	if queueDefault == "" {
		queueDefault = "default"
	}
	queueLow := cfg.Worker.QueueLow
	if queueLow == "" {
		queueLow = "low"
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				queueCritical: 6,
				queueDefault:  3,
				queueLow:      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task processing failed",
					zap.String("type", task.Type()),
					zap.Error(err),
				)
			}),
			Logger: &asynqLogger{logger: logger},
		},
	)

	collectWorker := NewCollectWorker(logger, deps.CollectorService, deps.MarketDataService)
	ingestWorker := NewIngestWorker(logger, deps.IntelligenceService)
	exportWorker := NewExportWorker(logger, deps.ExportService)
	cleanupWorker := NewCleanupWorker(
		logger,
		deps.CandleRepo,
		deps.SignalRepo,
		deps.CollectionLogRepo,
		deps.QueryHistoryRepo,
	)

	mux := asynq.NewServeMux()

	mux.HandleFunc(TypeCollectCrypto, collectWorker.ProcessCryptoTask)
	mux.HandleFunc(TypeCollectStocks, collectWorker.ProcessStocksTask)
	mux.HandleFunc(TypeRefreshOverview, collectWorker.ProcessOverviewTask)

	mux.HandleFunc(TypeDocumentIngest, ingestWorker.ProcessTask)
	mux.HandleFunc(TypeCSVExport, exportWorker.ProcessTask)
	mux.HandleFunc(TypeDataCleanup, cleanupWorker.ProcessTask)

	scheduler := asynq.NewScheduler(redisOpt, nil)
	client := asynq.NewClient(redisOpt)

	return &Server{
		logger:    logger,
		config:    cfg,
		server:    server,
		mux:       mux,
		scheduler: scheduler,
		client:    client,
		redis:     deps.Redis,
		stopBeat:  make(chan struct{}),
	}, nil
}

// Start starts the worker server
func (s *Server) Start() error {
	if err := s.registerScheduledTasks(); err != nil {
		return fmt.Errorf("failed to register scheduled tasks: %w", err)
	}

	go func() {
		if err := s.scheduler.Run(); err != nil {
			s.logger.Error("scheduler stopped", zap.Error(err))
		}
	}()

	go s.heartbeat()

	s.logger.Info("starting worker server",
		zap.Int("concurrency", s.config.Worker.Concurrency),
	)

	return s.server.Run(s.mux)
}

// Stop stops the worker server
func (s *Server) Stop() {
	close(s.stopBeat)
	s.server.Shutdown()
	s.scheduler.Shutdown()
	s.client.Close()
}

// Client returns the asynq client for enqueuing tasks
func (s *Server) Client() *asynq.Client {
	return s.client
}

// registerScheduledTasks registers periodic tasks with the scheduler
func (s *Server) registerScheduledTasks() error {
	queueCritical := s.config.Worker.QueueCritical
	if queueCritical == "" {
		queueCritical = "critical"
	}
	queueDefault := s.config.Worker.QueueDefault
	if queueDefault == "" {
		queueDefault = "default"
	}
	queueLow := s.config.Worker.QueueLow
	if queueLow == "" {
		queueLow = "low"
	}

	if s.config.Collector.Enabled {
		if _, err := s.scheduler.Register(
			"*/5 * * * *",
			NewCollectCryptoTask(),
			asynq.Queue(queueCritical),
		); err != nil {
			return fmt.Errorf("failed to register crypto collection: %w", err)
		}

		if _, err := s.scheduler.Register(
			"*/15 * * * *",
			NewCollectStocksTask(),
			asynq.Queue(queueCritical),
		); err != nil {
			return fmt.Errorf("failed to register stock collection: %w", err)
		}

		if _, err := s.scheduler.Register(
			"*/10 * * * *",
			NewRefreshOverviewTask(),
			asynq.Queue(queueDefault),
		); err != nil {
			return fmt.Errorf("failed to register overview refresh: %w", err)
		}
	}

	if s.config.Retention.Enabled {
		task, err := NewDataCleanupTask(&DataCleanupPayload{
			RetentionDays: s.config.Retention.Days,
		})
		if err != nil {
			return err
		}

		// Daily cleanup at 3 AM UTC
		if _, err := s.scheduler.Register("0 3 * * *", task, asynq.Queue(queueLow)); err != nil {
			return fmt.Errorf("failed to register data cleanup: %w", err)
		}
	}

	return nil
}

// heartbeat keeps the liveness key fresh while the worker runs
func (s *Server) heartbeat() {
	if s.redis == nil {
		return
	}

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	beat := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.redis.Set(ctx, HeartbeatKey, time.Now().Format(time.RFC3339), HeartbeatTTL); err != nil {
			s.logger.Warn("failed to refresh worker heartbeat", zap.Error(err))
		}
	}

	beat()
	for {
		select {
		case <-ticker.C:
			beat()
		case <-s.stopBeat:
			return
		}
	}
}

// asynqLogger adapts zap.Logger to asynq.Logger
type asynqLogger struct {
	logger *zap.Logger
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Fatal(fmt.Sprint(args...))
}
