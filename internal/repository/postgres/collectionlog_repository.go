package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tradeboard/tradeboard/internal/domain"
)

// CollectionLogRepository persists market data collection run logs
// over sqlx
type CollectionLogRepository struct {
	db *sqlx.DB
}

// NewCollectionLogRepository creates a new collection log repository
func NewCollectionLogRepository(db *sqlx.DB) *CollectionLogRepository {
	return &CollectionLogRepository{db: db}
}

type collectionLogRow struct {
	ID               uuid.UUID `db:"id"`
	Provider         string    `db:"provider"`
	AssetType        string    `db:"asset_type"`
	SymbolsRequested int       `db:"symbols_requested"`
	SymbolsSucceeded int       `db:"symbols_succeeded"`
	SymbolsFailed    int       `db:"symbols_failed"`
	Status           string    `db:"status"`
	ErrorDetail      string    `db:"error_detail"`
	DurationMs       int64     `db:"duration_ms"`
	StartedAt        time.Time `db:"started_at"`
}

func (row *collectionLogRow) toDomain() domain.DataCollectionLog {
	return domain.DataCollectionLog{
		ID:               row.ID,
		Provider:         row.Provider,
		AssetType:        domain.AssetType(row.AssetType),
		SymbolsRequested: row.SymbolsRequested,
		SymbolsSucceeded: row.SymbolsSucceeded,
		SymbolsFailed:    row.SymbolsFailed,
		Status:           domain.CollectionStatus(row.Status),
		ErrorDetail:      row.ErrorDetail,
		DurationMs:       row.DurationMs,
		StartedAt:        row.StartedAt,
	}
}

// Create records a collection run
func (r *CollectionLogRepository) Create(ctx context.Context, l *domain.DataCollectionLog) error {
	query := `
		INSERT INTO data_collection_logs (
			id, provider, asset_type, symbols_requested, symbols_succeeded,
			symbols_failed, status, error_detail, duration_ms, started_at
		) VALUES (:id, :provider, :asset_type, :symbols_requested, :symbols_succeeded,
			:symbols_failed, :status, :error_detail, :duration_ms, :started_at)`

	_, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":                l.ID,
		"provider":          l.Provider,
		"asset_type":        string(l.AssetType),
		"symbols_requested": l.SymbolsRequested,
		"symbols_succeeded": l.SymbolsSucceeded,
		"symbols_failed":    l.SymbolsFailed,
		"status":            string(l.Status),
		"error_detail":      l.ErrorDetail,
		"duration_ms":       l.DurationMs,
		"started_at":        l.StartedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to create collection log: %w", err)
	}

	return nil
}

// ListRecent retrieves the latest collection runs
func (r *CollectionLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.DataCollectionLog, error) {
	var rows []collectionLogRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM data_collection_logs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection logs: %w", err)
	}

	logs := make([]domain.DataCollectionLog, 0, len(rows))
	for i := range rows {
		logs = append(logs, rows[i].toDomain())
	}

	return logs, nil
}

// ListSince retrieves runs started after a cutoff, oldest first, for exports
func (r *CollectionLogRepository) ListSince(ctx context.Context, since time.Time) ([]domain.DataCollectionLog, error) {
	var rows []collectionLogRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM data_collection_logs
		WHERE started_at >= $1
		ORDER BY started_at`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection logs: %w", err)
	}

	logs := make([]domain.DataCollectionLog, 0, len(rows))
	for i := range rows {
		logs = append(logs, rows[i].toDomain())
	}

	return logs, nil
}

// PruneBefore deletes runs started before the cutoff
func (r *CollectionLogRepository) PruneBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM data_collection_logs WHERE started_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune collection logs: %w", err)
	}

	n, _ := res.RowsAffected()
	return n, nil
}
