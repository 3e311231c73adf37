package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/pkg/database"
)

// MarketDataRepository handles OHLCV candle storage in ClickHouse. The
// table is a ReplacingMergeTree keyed on (symbol, timestamp,
// granularity, provider) so re-collected candles overwrite duplicates.
type MarketDataRepository struct {
	db *database.ClickHouseDB
}

// NewMarketDataRepository creates a new market data repository
func NewMarketDataRepository(db *database.ClickHouseDB) *MarketDataRepository {
	return &MarketDataRepository{db: db}
}

// InsertBatch inserts a batch of candles
func (r *MarketDataRepository) InsertBatch(ctx context.Context, points []domain.MarketDataPoint) error {
	if len(points) == 0 {
		return nil
	}

	batch, err := r.db.PrepareBatch(ctx, `
		INSERT INTO market_data_points (
			symbol, asset_type, timestamp, granularity,
			open, high, low, close, volume, provider
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(
			p.Symbol,
			string(p.AssetType),
			p.Timestamp,
			string(p.Granularity),
			p.Open,
			p.High,
			p.Low,
			p.Close,
			p.Volume,
			p.Provider,
		); err != nil {
			return fmt.Errorf("failed to append to batch: %w", err)
		}
	}

	return batch.Send()
}

// ListCandles retrieves candles for a symbol and granularity, newest
// first, deduplicated across providers.
func (r *MarketDataRepository) ListCandles(ctx context.Context, filter domain.CandleFilter) ([]domain.MarketDataPoint, error) {
	query := `
		SELECT symbol, asset_type, timestamp, granularity,
		       open, high, low, close, volume, provider
		FROM market_data_points FINAL
		WHERE symbol = ? AND granularity = ?
	`
	args := []interface{}{filter.Symbol, string(filter.Granularity)}

	if filter.From != nil {
		query += " AND timestamp >= ?"
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		query += " AND timestamp <= ?"
		args = append(args, *filter.To)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 5000 {
		limit = 500
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var points []domain.MarketDataPoint
	for rows.Next() {
		var p domain.MarketDataPoint
		var assetType, granularity string
		err := rows.Scan(
			&p.Symbol,
			&assetType,
			&p.Timestamp,
			&granularity,
			&p.Open,
			&p.High,
			&p.Low,
			&p.Close,
			&p.Volume,
			&p.Provider,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		p.AssetType = domain.AssetType(assetType)
		p.Granularity = domain.Granularity(granularity)
		points = append(points, p)
	}

	return points, rows.Err()
}

// LatestClose returns the most recent close price for a symbol
func (r *MarketDataRepository) LatestClose(ctx context.Context, symbol string) (float64, time.Time, error) {
	query := `
		SELECT close, timestamp
		FROM market_data_points FINAL
		WHERE symbol = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var close float64
	var ts time.Time
	if err := r.db.QueryRow(ctx, query, symbol).Scan(&close, &ts); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to query latest close: %w", err)
	}

	return close, ts, nil
}

// PruneBefore drops candles older than the cutoff
func (r *MarketDataRepository) PruneBefore(ctx context.Context, before time.Time) error {
	return r.db.Exec(ctx,
		`ALTER TABLE market_data_points DELETE WHERE timestamp < ?`, before)
}
