package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/pkg/database"
	apperrors "github.com/tradeboard/tradeboard/internal/pkg/errors"
)

// AccountRepository handles portfolio account data operations in PostgreSQL
type AccountRepository struct {
	db *database.PostgresDB
}

// NewAccountRepository creates a new portfolio account repository
func NewAccountRepository(db *database.PostgresDB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, user_id, name, account_type, broker, currency, initial_balance, current_balance, drawdown_limit, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.PortfolioAccount, error) {
	var a domain.PortfolioAccount
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Name,
		&a.AccountType,
		&a.Broker,
		&a.Currency,
		&a.InitialBalance,
		&a.CurrentBalance,
		&a.DrawdownLimit,
		&a.IsActive,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create creates a new portfolio account
func (r *AccountRepository) Create(ctx context.Context, a *domain.PortfolioAccount) error {
	query := `
		INSERT INTO portfolio_accounts (id, user_id, name, account_type, broker, currency, initial_balance, current_balance, drawdown_limit, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		a.ID,
		a.UserID,
		a.Name,
		a.AccountType,
		a.Broker,
		a.Currency,
		a.InitialBalance,
		a.CurrentBalance,
		a.DrawdownLimit,
		a.IsActive,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create portfolio account: %w", err)
	}

	return nil
}

// GetByID retrieves a portfolio account owned by a user
func (r *AccountRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.PortfolioAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM portfolio_accounts WHERE id = $1 AND user_id = $2`

	a, err := scanAccount(r.db.Pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("portfolio account")
		}
		return nil, fmt.Errorf("failed to get portfolio account: %w", err)
	}

	return a, nil
}

// ListByUser retrieves a user's portfolio accounts, newest first
func (r *AccountRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*domain.PortfolioAccountList, error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM portfolio_accounts WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count portfolio accounts: %w", err)
	}

	query := `
		SELECT ` + accountColumns + `
		FROM portfolio_accounts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolio accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.PortfolioAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.PortfolioAccountList{
		Accounts:   accounts,
		TotalCount: total,
		HasMore:    int64(offset+len(accounts)) < total,
	}, nil
}

// Update updates a portfolio account
func (r *AccountRepository) Update(ctx context.Context, a *domain.PortfolioAccount) error {
	query := `
		UPDATE portfolio_accounts
		SET name = $3, broker = $4, current_balance = $5, drawdown_limit = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		a.ID,
		a.UserID,
		a.Name,
		a.Broker,
		a.CurrentBalance,
		a.DrawdownLimit,
		a.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("portfolio account")
	}

	return nil
}

// Delete deletes a portfolio account owned by a user
func (r *AccountRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM portfolio_accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("portfolio account")
	}

	return nil
}
