package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/pkg/database"
)

// SignalLogRepository handles signal delivery logs in ClickHouse
type SignalLogRepository struct {
	db *database.ClickHouseDB
}

// NewSignalLogRepository creates a new signal log repository
func NewSignalLogRepository(db *database.ClickHouseDB) *SignalLogRepository {
	return &SignalLogRepository{db: db}
}

// Create inserts one signal log entry
func (r *SignalLogRepository) Create(ctx context.Context, log *domain.SignalLog) error {
	query := `
		INSERT INTO signal_logs (
			id, account_id, timestamp, signal_type, payload,
			success, error_message, latency_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	return r.db.Exec(ctx, query,
		log.ID,
		log.AccountID,
		log.Timestamp,
		log.SignalType,
		log.Payload,
		log.Success,
		log.ErrorMessage,
		log.LatencyMs,
	)
}

// ListByAccount retrieves signal logs for an account in a time range,
// newest first
func (r *SignalLogRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, from, to time.Time, limit int) ([]domain.SignalLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	query := `
		SELECT id, account_id, timestamp, signal_type, payload,
		       success, error_message, latency_ms
		FROM signal_logs
		WHERE account_id = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := r.db.Query(ctx, query, accountID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query signal logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.SignalLog
	for rows.Next() {
		var l domain.SignalLog
		err := rows.Scan(
			&l.ID,
			&l.AccountID,
			&l.Timestamp,
			&l.SignalType,
			&l.Payload,
			&l.Success,
			&l.ErrorMessage,
			&l.LatencyMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal log: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}

// Stats aggregates delivery outcomes for an account over a window
func (r *SignalLogRepository) Stats(ctx context.Context, accountID uuid.UUID, from, to time.Time) (*domain.SignalStats, error) {
	query := `
		SELECT count() AS total,
		       countIf(success) AS succeeded,
		       avgIf(latency_ms, success) AS avg_latency
		FROM signal_logs
		WHERE account_id = ? AND timestamp >= ? AND timestamp <= ?
	`

	var total, succeeded uint64
	var avgLatency float64
	if err := r.db.QueryRow(ctx, query, accountID, from, to).Scan(&total, &succeeded, &avgLatency); err != nil {
		return nil, fmt.Errorf("failed to query signal stats: %w", err)
	}

	stats := &domain.SignalStats{
		AccountID:    accountID,
		Total:        int64(total),
		Succeeded:    int64(succeeded),
		Failed:       int64(total - succeeded),
		AvgLatencyMs: avgLatency,
		WindowStart:  from,
		WindowEnd:    to,
	}
	if total > 0 {
		stats.SuccessRate = float64(succeeded) / float64(total)
	}

	return stats, nil
}

// PruneBefore drops signal logs older than the cutoff
func (r *SignalLogRepository) PruneBefore(ctx context.Context, before time.Time) error {
	return r.db.Exec(ctx,
		`ALTER TABLE signal_logs DELETE WHERE timestamp < ?`, before)
}
