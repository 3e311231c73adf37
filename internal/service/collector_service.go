package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/config"
	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/middleware"
	"github.com/tradeboard/tradeboard/internal/pkg/database"
	apperrors "github.com/tradeboard/tradeboard/internal/pkg/errors"
	"github.com/tradeboard/tradeboard/internal/pkg/logger"
)

// CandleWriter defines candle write operations
type CandleWriter interface {
	InsertBatch(ctx context.Context, points []domain.MarketDataPoint) error
	LatestClose(ctx context.Context, symbol string) (float64, time.Time, error)
}

// CollectionLogWriter defines collection log write operations
type CollectionLogWriter interface {
	Create(ctx context.Context, l *domain.DataCollectionLog) error
}

// ProviderKeyResolver resolves decrypted provider API keys
type ProviderKeyResolver interface {
	ResolveForProvider(ctx context.Context, userID *uuid.UUID, provider string) (string, error)
}

// CollectorService pulls OHLCV candles from upstream market data
// providers with ordered failover. A provider that fails a fetch is
// placed on a short cooldown so subsequent symbols skip it.
type CollectorService struct {
	cfg        *config.Config
	keys       ProviderKeyResolver
	candleRepo CandleWriter
	logRepo    CollectionLogWriter
	redis      *database.RedisDB
	client     *fasthttp.Client

	cryptoProviders []marketProvider
	stockProviders  []marketProvider
}

// NewCollectorService creates a new collector service
func NewCollectorService(cfg *config.Config, keys ProviderKeyResolver, candleRepo CandleWriter, logRepo CollectionLogWriter, redis *database.RedisDB) *CollectorService {
	return &CollectorService{
		cfg:        cfg,
		keys:       keys,
		candleRepo: candleRepo,
		logRepo:    logRepo,
		redis:      redis,
		client: &fasthttp.Client{
			ReadTimeout:         cfg.Collector.RequestTimeout,
			WriteTimeout:        cfg.Collector.RequestTimeout,
			MaxIdleConnDuration: time.Minute,
		},
		cryptoProviders: []marketProvider{
			binanceProvider{},
			coinMarketCapProvider{},
			coinGeckoProvider{},
			polygonProvider{assetType: domain.AssetTypeCrypto},
		},
		stockProviders: []marketProvider{
			polygonProvider{assetType: domain.AssetTypeStock},
			alphaVantageProvider{},
			eodhdProvider{},
		},
	}
}

// CollectCrypto runs one collection pass over the tracked crypto symbols
func (s *CollectorService) CollectCrypto(ctx context.Context) (*domain.DataCollectionLog, error) {
	return s.collect(ctx, domain.AssetTypeCrypto, s.cfg.Collector.CryptoSymbols, s.cryptoProviders)
}

// CollectStocks runs one collection pass over the tracked stock symbols
func (s *CollectorService) CollectStocks(ctx context.Context) (*domain.DataCollectionLog, error) {
	return s.collect(ctx, domain.AssetTypeStock, s.cfg.Collector.StockSymbols, s.stockProviders)
}

func (s *CollectorService) collect(ctx context.Context, assetType domain.AssetType, symbols []string, providers []marketProvider) (*domain.DataCollectionLog, error) {
	if !s.cfg.Collector.Enabled {
		return nil, apperrors.Unavailable("market data collection is disabled")
	}
	if len(symbols) == 0 {
		return nil, apperrors.Validation("no symbols configured")
	}

	start := time.Now()
	run := &domain.DataCollectionLog{
		ID:               uuid.New(),
		AssetType:        assetType,
		SymbolsRequested: len(symbols),
		StartedAt:        start,
	}

	var (
		points         []domain.MarketDataPoint
		usedBy         = map[string]int{}
		errDetails     []string
		verifyWarnings int
	)

	for _, symbol := range symbols {
		fetched, provider, err := s.fetchWithFailover(ctx, assetType, symbol, providers)
		if err != nil {
			run.SymbolsFailed++
			errDetails = append(errDetails, fmt.Sprintf("%s: %v", symbol, err))
			continue
		}

		if warn := s.verify(ctx, symbol, fetched); warn != "" {
			errDetails = append(errDetails, warn)
			verifyWarnings++
		}

		points = append(points, fetched...)
		usedBy[provider]++
		run.SymbolsSucceeded++
	}

	if len(points) > 0 {
		if err := s.candleRepo.InsertBatch(ctx, points); err != nil {
			return nil, err
		}
	}

	run.Provider = dominantProvider(usedBy)
	run.DurationMs = time.Since(start).Milliseconds()
	run.ErrorDetail = strings.Join(errDetails, "; ")
	run.Status = run.Outcome()

	// A flagged close downgrades an otherwise clean run
	if verifyWarnings > 0 && run.Status == domain.CollectionStatusSuccess {
		run.Status = domain.CollectionStatusPartial
	}

	if err := s.logRepo.Create(ctx, run); err != nil {
		logger.Error("failed to record collection run", zap.Error(err))
	}

	middleware.RecordCollectorRun(string(assetType), run.Provider, len(points), time.Since(start))

	logger.Info("collection run finished",
		zap.String("asset_type", string(assetType)),
		zap.String("provider", run.Provider),
		zap.Int("succeeded", run.SymbolsSucceeded),
		zap.Int("failed", run.SymbolsFailed),
		zap.Int("points", len(points)),
	)

	return run, nil
}

// fetchWithFailover tries each provider in order until one returns
// candles for the symbol. Failing providers are cooled down.
func (s *CollectorService) fetchWithFailover(ctx context.Context, assetType domain.AssetType, symbol string, providers []marketProvider) ([]domain.MarketDataPoint, string, error) {
	var lastErr error

	for _, provider := range providers {
		if s.coolingDown(ctx, provider.Name()) {
			continue
		}

		var apiKey string
		if provider.RequiresKey() {
			key, err := s.keys.ResolveForProvider(ctx, nil, provider.Name())
			if err != nil {
				lastErr = fmt.Errorf("%s: no usable API key", provider.Name())
				continue
			}
			apiKey = key
		}

		points, err := provider.FetchCandles(s.client, s.cfg.Collector.RequestTimeout, apiKey, symbol)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", provider.Name(), err)
			s.coolDown(ctx, provider.Name())
			middleware.RecordCollectorFailure(string(assetType), provider.Name())
			logger.Warn("provider fetch failed",
				zap.String("provider", provider.Name()),
				zap.String("symbol", symbol),
				zap.Error(err),
			)
			continue
		}

		return points, provider.Name(), nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("all providers cooling down")
	}
	return nil, "", lastErr
}

// verify flags fetched closes that deviate from the last stored close
// by more than the verification threshold. Flagged points are still
// stored; the run is annotated.
func (s *CollectorService) verify(ctx context.Context, symbol string, points []domain.MarketDataPoint) string {
	if len(points) == 0 || s.cfg.Collector.VerificationThreshold <= 0 {
		return ""
	}

	known, _, err := s.candleRepo.LatestClose(ctx, symbol)
	if err != nil || known <= 0 {
		return ""
	}

	latest := points[0]
	for _, p := range points[1:] {
		if p.Timestamp.After(latest.Timestamp) {
			latest = p
		}
	}

	deviation := (latest.Close - known) / known
	if deviation < 0 {
		deviation = -deviation
	}
	if deviation > s.cfg.Collector.VerificationThreshold {
		return fmt.Sprintf("%s: close %.4f deviates %.2f%% from last stored %.4f",
			symbol, latest.Close, deviation*100, known)
	}

	return ""
}

func (s *CollectorService) cooldownKey(provider string) string {
	return "collector:cooldown:" + provider
}

func (s *CollectorService) coolingDown(ctx context.Context, provider string) bool {
	if s.redis == nil {
		return false
	}
	n, err := s.redis.Exists(ctx, s.cooldownKey(provider))
	return err == nil && n > 0
}

func (s *CollectorService) coolDown(ctx context.Context, provider string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, s.cooldownKey(provider), "1", s.cfg.Collector.ProviderCooldown); err != nil {
		logger.Warn("failed to set provider cooldown",
			zap.String("provider", provider),
			zap.Error(err),
		)
	}
}

func dominantProvider(usedBy map[string]int) string {
	var name string
	var max int
	for provider, n := range usedBy {
		if n > max {
			name, max = provider, n
		}
	}
	if name == "" {
		name = "none"
	}
	return name
}
