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

// TradingAccountRepository handles trading account data operations in PostgreSQL
type TradingAccountRepository struct {
	db *database.PostgresDB
}

// NewTradingAccountRepository creates a new trading account repository
func NewTradingAccountRepository(db *database.PostgresDB) *TradingAccountRepository {
	return &TradingAccountRepository{db: db}
}

const tradingAccountColumns = `id, user_id, firm, firm_name, account_number, socket_port, starting_balance, current_balance, daily_pnl, is_active, created_at, updated_at`

func scanTradingAccount(row pgx.Row) (*domain.TradingAccount, error) {
	var a domain.TradingAccount
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Firm,
		&a.FirmName,
		&a.AccountNumber,
		&a.SocketPort,
		&a.StartingBalance,
		&a.CurrentBalance,
		&a.DailyPnL,
		&a.IsActive,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create registers a new trading account. Unique constraints guard the
// socket port and the (user, firm name, account number) triple.
func (r *TradingAccountRepository) Create(ctx context.Context, a *domain.TradingAccount) error {
	query := `
		INSERT INTO trading_accounts (id, user_id, firm, firm_name, account_number, socket_port, starting_balance, current_balance, daily_pnl, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		a.ID,
		a.UserID,
		a.Firm,
		a.FirmName,
		a.AccountNumber,
		a.SocketPort,
		a.StartingBalance,
		a.CurrentBalance,
		a.DailyPnL,
		a.IsActive,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("socket port or account already registered")
		}
		return fmt.Errorf("failed to create trading account: %w", err)
	}

	return nil
}

// GetByID retrieves a trading account owned by a user
func (r *TradingAccountRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.TradingAccount, error) {
	query := `SELECT ` + tradingAccountColumns + ` FROM trading_accounts WHERE id = $1 AND user_id = $2`

	a, err := scanTradingAccount(r.db.Pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("trading account")
		}
		return nil, fmt.Errorf("failed to get trading account: %w", err)
	}

	return a, nil
}

// ListByUser retrieves a user's trading accounts
func (r *TradingAccountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.TradingAccount, error) {
	query := `SELECT ` + tradingAccountColumns + ` FROM trading_accounts WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trading accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.TradingAccount
	for rows.Next() {
		a, err := scanTradingAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trading account: %w", err)
		}
		accounts = append(accounts, *a)
	}

	return accounts, rows.Err()
}

// Update updates a trading account's mutable fields
func (r *TradingAccountRepository) Update(ctx context.Context, a *domain.TradingAccount) error {
	query := `
		UPDATE trading_accounts
		SET current_balance = $3, daily_pnl = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		a.ID,
		a.UserID,
		a.CurrentBalance,
		a.DailyPnL,
		a.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update trading account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("trading account")
	}

	return nil
}

// Delete removes a trading account owned by a user
func (r *TradingAccountRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM trading_accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete trading account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("trading account")
	}

	return nil
}
