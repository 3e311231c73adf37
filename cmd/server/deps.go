package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/config"
	"github.com/tradeboard/tradeboard/internal/handler"
	"github.com/tradeboard/tradeboard/internal/middleware"
	"github.com/tradeboard/tradeboard/internal/pkg/crypto"
	"github.com/tradeboard/tradeboard/internal/pkg/database"
	"github.com/tradeboard/tradeboard/internal/pkg/llm"
	chrepo "github.com/tradeboard/tradeboard/internal/repository/clickhouse"
	pgrepo "github.com/tradeboard/tradeboard/internal/repository/postgres"
	"github.com/tradeboard/tradeboard/internal/service"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	// Database connections
	Postgres   *database.PostgresDB
	SQLX       *sqlx.DB
	ClickHouse *database.ClickHouseDB
	Redis      *database.RedisDB
	Minio      *minio.Client

	// Task queue client
	AsynqClient *asynq.Client

	// Services
	AuthService         *service.AuthService
	AccountService      *service.AccountService
	RiskProfileService  *service.RiskProfileService
	AuditService        *service.AuditService
	APIKeyService       *service.APIKeyService
	TradingService      *service.TradingService
	MarketDataService   *service.MarketDataService
	CollectorService    *service.CollectorService
	IntelligenceService *service.IntelligenceService
	ExportService       *service.ExportService
	ProbeService        *service.ProbeService

	// Handlers
	HealthHandler         *handler.HealthHandler
	AuthHandler           *handler.AuthHandler
	AccountHandler        *handler.AccountHandler
	RiskProfileHandler    *handler.RiskProfileHandler
	AuditHandler          *handler.AuditHandler
	APIKeyHandler         *handler.APIKeyHandler
	TradingAccountHandler *handler.TradingAccountHandler
	MarketHandler         *handler.MarketHandler
	IntelligenceHandler   *handler.IntelligenceHandler
	ServicesHandler       *handler.ServicesHandler
	DocsHandler           *handler.DocsHandler

	// Middleware
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
}

// initDependencies wires databases, repositories, services and handlers
func initDependencies(cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	ctx := context.Background()

	pgDB, err := database.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	sqlxDB, err := database.NewSQLX(cfg.Postgres)
	if err != nil {
		pgDB.Close()
		return nil, fmt.Errorf("failed to initialize sqlx: %w", err)
	}

	chDB, err := database.NewClickHouse(ctx, cfg.ClickHouse)
	if err != nil {
		pgDB.Close()
		sqlxDB.Close()
		return nil, fmt.Errorf("failed to initialize ClickHouse: %w", err)
	}

	redisDB, err := database.NewRedis(ctx, cfg.Redis)
	if err != nil {
		pgDB.Close()
		sqlxDB.Close()
		chDB.Close()
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	minioClient, err := initMinio(cfg)
	if err != nil {
		logger.Warn("failed to initialize MinIO, exports disabled", zap.Error(err))
	}

	box, err := crypto.NewSecretBox(cfg.Crypto.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secret box: %w", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	llmClient := llm.NewClient(cfg.OpenAI)
	overviewCache := database.NewCache(redisDB, 5*time.Minute)

	// Repositories
	userRepo := pgrepo.NewUserRepository(pgDB)
	accountRepo := pgrepo.NewAccountRepository(pgDB)
	profileRepo := pgrepo.NewRiskProfileRepository(pgDB)
	auditRepo := pgrepo.NewAuditRepository(sqlxDB)
	keyRepo := pgrepo.NewAPIKeyRepository(pgDB)
	tradingRepo := pgrepo.NewTradingAccountRepository(pgDB)
	documentRepo := pgrepo.NewDocumentRepository(pgDB)
	collectionLogRepo := pgrepo.NewCollectionLogRepository(sqlxDB)
	candleRepo := chrepo.NewMarketDataRepository(chDB)
	signalRepo := chrepo.NewSignalLogRepository(chDB)

	// Services
	authService := service.NewAuthService(cfg, userRepo)
	accountService := service.NewAccountService(accountRepo)
	profileService := service.NewRiskProfileService(profileRepo)
	auditService := service.NewAuditService(auditRepo)
	keyService := service.NewAPIKeyService(keyRepo, box)
	tradingService := service.NewTradingService(tradingRepo, signalRepo)
	marketService := service.NewMarketDataService(cfg, candleRepo, collectionLogRepo, overviewCache)
	collectorService := service.NewCollectorService(cfg, keyService, candleRepo, collectionLogRepo, redisDB)
	intelligenceService := service.NewIntelligenceService(cfg, documentRepo, llmClient, llmClient, keyService)
	exportService := service.NewExportService(auditRepo, collectionLogRepo, minioClient, cfg.MinIO.Bucket)
	probeService := service.NewProbeService(cfg)

	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		Postgres:    pgDB,
		SQLX:        sqlxDB,
		ClickHouse:  chDB,
		Redis:       redisDB,
		Minio:       minioClient,
		AsynqClient: asynqClient,

		AuthService:         authService,
		AccountService:      accountService,
		RiskProfileService:  profileService,
		AuditService:        auditService,
		APIKeyService:       keyService,
		TradingService:      tradingService,
		MarketDataService:   marketService,
		CollectorService:    collectorService,
		IntelligenceService: intelligenceService,
		ExportService:       exportService,
		ProbeService:        probeService,

		HealthHandler:         handler.NewHealthHandler(pgDB, chDB, redisDB, appVersion),
		AuthHandler:           handler.NewAuthHandler(authService, logger),
		AccountHandler:        handler.NewAccountHandler(accountService, logger),
		RiskProfileHandler:    handler.NewRiskProfileHandler(profileService, logger),
		AuditHandler:          handler.NewAuditHandler(auditService, asynqClient, logger),
		APIKeyHandler:         handler.NewAPIKeyHandler(keyService, logger),
		TradingAccountHandler: handler.NewTradingAccountHandler(tradingService, logger),
		MarketHandler:         handler.NewMarketHandler(marketService, asynqClient, logger),
		IntelligenceHandler:   handler.NewIntelligenceHandler(intelligenceService, asynqClient, logger),
		ServicesHandler:       handler.NewServicesHandler(probeService, logger),
		DocsHandler:           handler.NewDocsHandler(),

		AuthMiddleware: middleware.NewAuthMiddleware(authService),
	}

	if cfg.RateLimit.Enabled {
		rlConfig := middleware.DefaultRateLimitConfig()
		if cfg.RateLimit.RequestsPerMinute > 0 {
			rlConfig.Max = cfg.RateLimit.RequestsPerMinute
		}
		deps.RateLimitMiddleware = middleware.NewRateLimitMiddleware(redisDB.Client, rlConfig)
	}

	return deps, nil
}

// Close releases all held connections
func (d *Dependencies) Close() {
	if d.AsynqClient != nil {
		if err := d.AsynqClient.Close(); err != nil {
			d.Logger.Error("failed to close asynq client", zap.Error(err))
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("failed to close Redis", zap.Error(err))
		}
	}
	if d.ClickHouse != nil {
		if err := d.ClickHouse.Close(); err != nil {
			d.Logger.Error("failed to close ClickHouse", zap.Error(err))
		}
	}
	if d.SQLX != nil {
		if err := d.SQLX.Close(); err != nil {
			d.Logger.Error("failed to close sqlx", zap.Error(err))
		}
	}
	if d.Postgres != nil {
		d.Postgres.Close()
	}
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
