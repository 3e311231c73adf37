package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/pkg/database"
)

// RiskProfileRepository handles risk profile data operations in PostgreSQL
type RiskProfileRepository struct {
	db *database.PostgresDB
}

// NewRiskProfileRepository creates a new risk profile repository
func NewRiskProfileRepository(db *database.PostgresDB) *RiskProfileRepository {
	return &RiskProfileRepository{db: db}
}

const riskProfileColumns = `id, user_id, max_drawdown_pct, risk_per_trade_pct, max_open_positions, esg_screening, esg_min_score, prefer_index_funds, vanguard_style_score, created_at, updated_at`

func scanRiskProfile(row pgx.Row) (*domain.RiskProfile, error) {
	var p domain.RiskProfile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.MaxDrawdownPct,
		&p.RiskPerTradePct,
		&p.MaxOpenPositions,
		&p.ESGScreening,
		&p.ESGMinScore,
		&p.PreferIndexFunds,
		&p.VanguardStyleScore,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByUser retrieves a user's risk profile. Returns pgx.ErrNoRows
// wrapped as nil profile when none exists yet.
func (r *RiskProfileRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.RiskProfile, error) {
	query := `SELECT ` + riskProfileColumns + ` FROM risk_profiles WHERE user_id = $1`

	p, err := scanRiskProfile(r.db.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get risk profile: %w", err)
	}

	return p, nil
}

// Upsert inserts the profile or updates the existing one. The unique
// constraint on user_id keeps it one per user.
func (r *RiskProfileRepository) Upsert(ctx context.Context, p *domain.RiskProfile) error {
	query := `
		INSERT INTO risk_profiles (id, user_id, max_drawdown_pct, risk_per_trade_pct, max_open_positions, esg_screening, esg_min_score, prefer_index_funds, vanguard_style_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			max_drawdown_pct = EXCLUDED.max_drawdown_pct,
			risk_per_trade_pct = EXCLUDED.risk_per_trade_pct,
			max_open_positions = EXCLUDED.max_open_positions,
			esg_screening = EXCLUDED.esg_screening,
			esg_min_score = EXCLUDED.esg_min_score,
			prefer_index_funds = EXCLUDED.prefer_index_funds,
			vanguard_style_score = EXCLUDED.vanguard_style_score,
			updated_at = NOW()
	`

	_, err := r.db.Pool.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.MaxDrawdownPct,
		p.RiskPerTradePct,
		p.MaxOpenPositions,
		p.ESGScreening,
		p.ESGMinScore,
		p.PreferIndexFunds,
		p.VanguardStyleScore,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert risk profile: %w", err)
	}

	return nil
}
