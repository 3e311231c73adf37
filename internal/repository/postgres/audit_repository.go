package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tradeboard/tradeboard/internal/domain"
	apperrors "github.com/tradeboard/tradeboard/internal/pkg/errors"
)

// AuditRepository handles portfolio audit persistence over sqlx
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new portfolio audit repository
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// auditRow is the sqlx scan target; JSONB columns arrive as raw bytes.
type auditRow struct {
	ID           uuid.UUID `db:"id"`
	UserID       uuid.UUID `db:"user_id"`
	AuditDate    time.Time `db:"audit_date"`
	PeriodMonths int       `db:"period_months"`
	TWRPct       *float64  `db:"twr_pct"`
	IRRPct       *float64  `db:"irr_pct"`
	Sharpe       *float64  `db:"sharpe"`
	Sortino      *float64  `db:"sortino"`
	Beta         *float64  `db:"beta"`
	Allocations  []byte    `db:"allocations"`
	Strengths    []byte    `db:"strengths"`
	Weaknesses   []byte    `db:"weaknesses"`
	Actions      []byte    `db:"actions"`
	Notes        string    `db:"notes"`
	CreatedAt    time.Time `db:"created_at"`
}

func (row *auditRow) toDomain() (*domain.PortfolioAudit, error) {
	a := &domain.PortfolioAudit{
		ID:           row.ID,
		UserID:       row.UserID,
		AuditDate:    row.AuditDate,
		PeriodMonths: row.PeriodMonths,
		TWRPct:       row.TWRPct,
		IRRPct:       row.IRRPct,
		Sharpe:       row.Sharpe,
		Sortino:      row.Sortino,
		Beta:         row.Beta,
		Notes:        row.Notes,
		CreatedAt:    row.CreatedAt,
	}
	if len(row.Allocations) > 0 {
		if err := json.Unmarshal(row.Allocations, &a.Allocations); err != nil {
			return nil, fmt.Errorf("failed to decode allocations: %w", err)
		}
	}
	lists := []struct {
		raw []byte
		dst *[]string
	}{
		{row.Strengths, &a.Strengths},
		{row.Weaknesses, &a.Weaknesses},
		{row.Actions, &a.Actions},
	}
	for _, col := range lists {
		if len(col.raw) > 0 {
			if err := json.Unmarshal(col.raw, col.dst); err != nil {
				return nil, fmt.Errorf("failed to decode audit list: %w", err)
			}
		}
	}
	return a, nil
}

// Create records a new portfolio audit
func (r *AuditRepository) Create(ctx context.Context, a *domain.PortfolioAudit) error {
	allocations, err := json.Marshal(a.Allocations)
	if err != nil {
		allocations = []byte("{}")
	}
	strengths, _ := json.Marshal(a.Strengths)
	weaknesses, _ := json.Marshal(a.Weaknesses)
	actions, _ := json.Marshal(a.Actions)

	query := `
		INSERT INTO portfolio_audits (
			id, user_id, audit_date, period_months, twr_pct, irr_pct,
			sharpe, sortino, beta, allocations, strengths, weaknesses,
			actions, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err = r.db.ExecContext(ctx, query,
		a.ID, a.UserID, a.AuditDate, a.PeriodMonths, a.TWRPct, a.IRRPct,
		a.Sharpe, a.Sortino, a.Beta, allocations, strengths, weaknesses,
		actions, a.Notes, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create portfolio audit: %w", err)
	}

	return nil
}

// GetByID retrieves one audit owned by a user
func (r *AuditRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.PortfolioAudit, error) {
	var row auditRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM portfolio_audits WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("portfolio audit")
		}
		return nil, fmt.Errorf("failed to get portfolio audit: %w", err)
	}

	return row.toDomain()
}

// ListByUser retrieves a user's audits, newest audit date first
func (r *AuditRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*domain.PortfolioAuditList, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total,
		`SELECT count(*) FROM portfolio_audits WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("failed to count portfolio audits: %w", err)
	}

	var rows []auditRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM portfolio_audits
		WHERE user_id = $1
		ORDER BY audit_date DESC, created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolio audits: %w", err)
	}

	audits := make([]domain.PortfolioAudit, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		audits = append(audits, *a)
	}

	return &domain.PortfolioAuditList{
		Audits:     audits,
		TotalCount: total,
		HasMore:    int64(offset+len(audits)) < total,
	}, nil
}

// ListAllSince retrieves every audit created after a cutoff, for exports
func (r *AuditRepository) ListAllSince(ctx context.Context, since time.Time) ([]domain.PortfolioAudit, error) {
	var rows []auditRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM portfolio_audits
		WHERE created_at >= $1
		ORDER BY created_at`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolio audits: %w", err)
	}

	audits := make([]domain.PortfolioAudit, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		audits = append(audits, *a)
	}

	return audits, nil
}

// Delete removes an audit owned by a user
func (r *AuditRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM portfolio_audits WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio audit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("portfolio audit")
	}

	return nil
}
