package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/config"
	"github.com/tradeboard/tradeboard/internal/pkg/crypto"
	"github.com/tradeboard/tradeboard/internal/pkg/database"
	"github.com/tradeboard/tradeboard/internal/pkg/llm"
	"github.com/tradeboard/tradeboard/internal/pkg/logger"
	chrepo "github.com/tradeboard/tradeboard/internal/repository/clickhouse"
	pgrepo "github.com/tradeboard/tradeboard/internal/repository/postgres"
	"github.com/tradeboard/tradeboard/internal/service"
	"github.com/tradeboard/tradeboard/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.Log
	defer logger.Sync()

	log.Info("starting worker service")

	// Initialize dependencies
	deps, cleanup, err := initWorkerDependencies(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize dependencies", zap.Error(err))
	}
	defer cleanup()

	// Create worker server
	workerServer, err := worker.NewServer(log, cfg, deps)
	if err != nil {
		log.Fatal("failed to create worker server", zap.Error(err))
	}

	// Start worker in a goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- workerServer.Start()
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("shutting down worker...")
		workerServer.Stop()
	case err := <-errCh:
		if err != nil {
			log.Error("worker server error", zap.Error(err))
		}
	}

	log.Info("worker stopped")
}

// initWorkerDependencies initializes dependencies for the worker
func initWorkerDependencies(cfg *config.Config, log *zap.Logger) (*worker.Dependencies, func(), error) {
	ctx := context.Background()

	pgDB, err := database.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	sqlxDB, err := database.NewSQLX(cfg.Postgres)
	if err != nil {
		pgDB.Close()
		return nil, nil, fmt.Errorf("failed to initialize sqlx: %w", err)
	}

	chDB, err := database.NewClickHouse(ctx, cfg.ClickHouse)
	if err != nil {
		pgDB.Close()
		sqlxDB.Close()
		return nil, nil, fmt.Errorf("failed to initialize ClickHouse: %w", err)
	}

	redisDB, err := database.NewRedis(ctx, cfg.Redis)
	if err != nil {
		pgDB.Close()
		sqlxDB.Close()
		chDB.Close()
		return nil, nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	minioClient, err := initMinio(cfg)
	if err != nil {
		log.Warn("failed to initialize MinIO, exports disabled", zap.Error(err))
	}

	box, err := crypto.NewSecretBox(cfg.Crypto.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize secret box: %w", err)
	}

	llmClient := llm.NewClient(cfg.OpenAI)
	overviewCache := database.NewCache(redisDB, 5*time.Minute)

	// Repositories
	auditRepo := pgrepo.NewAuditRepository(sqlxDB)
	keyRepo := pgrepo.NewAPIKeyRepository(pgDB)
	documentRepo := pgrepo.NewDocumentRepository(pgDB)
	collectionLogRepo := pgrepo.NewCollectionLogRepository(sqlxDB)
	candleRepo := chrepo.NewMarketDataRepository(chDB)
	signalRepo := chrepo.NewSignalLogRepository(chDB)

	// Services
	keyService := service.NewAPIKeyService(keyRepo, box)
	collectorService := service.NewCollectorService(cfg, keyService, candleRepo, collectionLogRepo, redisDB)
	marketService := service.NewMarketDataService(cfg, candleRepo, collectionLogRepo, overviewCache)
	intelligenceService := service.NewIntelligenceService(cfg, documentRepo, llmClient, llmClient, keyService)
	exportService := service.NewExportService(auditRepo, collectionLogRepo, minioClient, cfg.MinIO.Bucket)

	deps := &worker.Dependencies{
		CollectorService:    collectorService,
		MarketDataService:   marketService,
		IntelligenceService: intelligenceService,
		ExportService:       exportService,
		CandleRepo:          candleRepo,
		SignalRepo:          signalRepo,
		CollectionLogRepo:   collectionLogRepo,
		QueryHistoryRepo:    documentRepo,
		Redis:               redisDB,
	}

	cleanup := func() {
		if err := redisDB.Close(); err != nil {
			log.Error("failed to close Redis", zap.Error(err))
		}
		if err := chDB.Close(); err != nil {
			log.Error("failed to close ClickHouse", zap.Error(err))
		}
		if err := sqlxDB.Close(); err != nil {
			log.Error("failed to close sqlx", zap.Error(err))
		}
		pgDB.Close()
	}

	return deps, cleanup, nil
}

// initMinio initializes the object storage client used for CSV exports
func initMinio(cfg *config.Config) (*minio.Client, error) {
	if cfg.MinIO.Endpoint == "" {
		return nil, nil
	}

	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return client, nil
}
