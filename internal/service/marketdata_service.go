package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/config"
	"github.com/tradeboard/tradeboard/internal/domain"
	apperrors "github.com/tradeboard/tradeboard/internal/pkg/errors"
	"github.com/tradeboard/tradeboard/internal/pkg/logger"
)

const overviewCacheKey = "market:overview"

// CandleRepository defines candle read operations
type CandleRepository interface {
	ListCandles(ctx context.Context, filter domain.CandleFilter) ([]domain.MarketDataPoint, error)
	LatestClose(ctx context.Context, symbol string) (float64, time.Time, error)
}

// CollectionLogReader defines collection log read operations
type CollectionLogReader interface {
	ListRecent(ctx context.Context, limit int) ([]domain.DataCollectionLog, error)
}

// OverviewCache caches the computed market overview. Satisfied by
// database.Cache.
type OverviewCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MarketDataService serves candles, the market overview and collection
// run history
type MarketDataService struct {
	cfg        *config.Config
	candleRepo CandleRepository
	logRepo    CollectionLogReader
	cache      OverviewCache
}

// NewMarketDataService creates a new market data service
func NewMarketDataService(cfg *config.Config, candleRepo CandleRepository, logRepo CollectionLogReader, cache OverviewCache) *MarketDataService {
	return &MarketDataService{
		cfg:        cfg,
		candleRepo: candleRepo,
		logRepo:    logRepo,
		cache:      cache,
	}
}

// Candles retrieves candles for a symbol and granularity
func (s *MarketDataService) Candles(ctx context.Context, filter domain.CandleFilter) ([]domain.MarketDataPoint, error) {
	if filter.Symbol == "" {
		return nil, apperrors.Validation("symbol is required")
	}
	if filter.Granularity == "" {
		filter.Granularity = domain.Granularity1h
	}
	if !filter.Granularity.IsValid() {
		return nil, apperrors.Validation("invalid granularity")
	}

	filter.Symbol = strings.ToUpper(filter.Symbol)
	return s.candleRepo.ListCandles(ctx, filter)
}

// Overview builds a per-symbol snapshot of the latest market state for
// every tracked symbol. Snapshots are served from cache when fresh.
func (s *MarketDataService) Overview(ctx context.Context) ([]domain.MarketOverview, error) {
	if cached, ok := s.cache.Get(ctx, overviewCacheKey); ok {
		var overview []domain.MarketOverview
		if err := json.Unmarshal([]byte(cached), &overview); err == nil {
			return overview, nil
		}
	}

	overview := make([]domain.MarketOverview, 0,
		len(s.cfg.Collector.CryptoSymbols)+len(s.cfg.Collector.StockSymbols))

	for _, symbol := range s.cfg.Collector.CryptoSymbols {
		if o, err := s.snapshot(ctx, symbol, domain.AssetTypeCrypto); err == nil {
			overview = append(overview, *o)
		}
	}
	for _, symbol := range s.cfg.Collector.StockSymbols {
		if o, err := s.snapshot(ctx, symbol, domain.AssetTypeStock); err == nil {
			overview = append(overview, *o)
		}
	}

	if payload, err := json.Marshal(overview); err == nil {
		if err := s.cache.Set(ctx, overviewCacheKey, string(payload)); err != nil {
			logger.Warn("failed to cache market overview", zap.Error(err))
		}
	}

	return overview, nil
}

// snapshot computes one symbol's overview entry from its last 24 hours
// of hourly candles
func (s *MarketDataService) snapshot(ctx context.Context, symbol string, assetType domain.AssetType) (*domain.MarketOverview, error) {
	from := time.Now().Add(-24 * time.Hour)
	candles, err := s.candleRepo.ListCandles(ctx, domain.CandleFilter{
		Symbol:      symbol,
		Granularity: domain.Granularity1h,
		From:        &from,
		Limit:       48,
	})
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, apperrors.NotFound("market data")
	}

	// Candles arrive newest first
	latest := candles[0]
	oldest := candles[len(candles)-1]

	var changePct, volume float64
	if oldest.Open > 0 {
		changePct = (latest.Close - oldest.Open) / oldest.Open * 100
	}
	for _, c := range candles {
		volume += c.Volume
	}

	return &domain.MarketOverview{
		Symbol:       symbol,
		AssetType:    assetType,
		Price:        latest.Close,
		Change24hPct: changePct,
		Volume24h:    volume,
		UpdatedAt:    latest.Timestamp,
	}, nil
}

// RefreshOverview drops the cached overview and recomputes it
func (s *MarketDataService) RefreshOverview(ctx context.Context) error {
	if err := s.cache.Delete(ctx, overviewCacheKey); err != nil {
		logger.Warn("failed to drop cached market overview", zap.Error(err))
	}
	_, err := s.Overview(ctx)
	return err
}

// Collections retrieves recent collection run logs
func (s *MarketDataService) Collections(ctx context.Context, limit int) ([]domain.DataCollectionLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.logRepo.ListRecent(ctx, limit)
}
