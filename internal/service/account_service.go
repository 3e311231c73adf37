package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tradeboard/tradeboard/internal/domain"
	apperrors "github.com/tradeboard/tradeboard/internal/pkg/errors"
)

// AccountRepository defines portfolio account repository operations
type AccountRepository interface {
	Create(ctx context.Context, a *domain.PortfolioAccount) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.PortfolioAccount, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*domain.PortfolioAccountList, error)
	Update(ctx context.Context, a *domain.PortfolioAccount) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// AccountService handles portfolio account operations
type AccountService struct {
	accountRepo AccountRepository
}

// NewAccountService creates a new portfolio account service
func NewAccountService(accountRepo AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// Create creates a new portfolio account for a user
func (s *AccountService) Create(ctx context.Context, userID uuid.UUID, input *domain.PortfolioAccountInput) (*domain.PortfolioAccount, error) {
	if !input.AccountType.IsValid() {
		return nil, apperrors.Validation("invalid account type")
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	now := time.Now()
	account := &domain.PortfolioAccount{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           input.Name,
		AccountType:    input.AccountType,
		Broker:         input.Broker,
		Currency:       currency,
		InitialBalance: input.InitialBalance,
		CurrentBalance: input.InitialBalance,
		DrawdownLimit:  input.DrawdownLimit,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// Get retrieves one of the user's accounts
func (s *AccountService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.PortfolioAccount, error) {
	return s.accountRepo.GetByID(ctx, userID, id)
}

// List retrieves the user's accounts
func (s *AccountService) List(ctx context.Context, userID uuid.UUID, limit, offset int) (*domain.PortfolioAccountList, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.accountRepo.ListByUser(ctx, userID, limit, offset)
}

// Update applies a partial update to one of the user's accounts
func (s *AccountService) Update(ctx context.Context, userID, id uuid.UUID, update *domain.PortfolioAccountUpdate) (*domain.PortfolioAccount, error) {
	account, err := s.accountRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		account.Name = *update.Name
	}
	if update.Broker != nil {
		account.Broker = *update.Broker
	}
	if update.CurrentBalance != nil {
		account.CurrentBalance = *update.CurrentBalance
	}
	if update.DrawdownLimit != nil {
		account.DrawdownLimit = update.DrawdownLimit
	}
	if update.IsActive != nil {
		account.IsActive = *update.IsActive
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// Deactivate marks an account inactive without deleting its history
func (s *AccountService) Deactivate(ctx context.Context, userID, id uuid.UUID) (*domain.PortfolioAccount, error) {
	inactive := false
	return s.Update(ctx, userID, id, &domain.PortfolioAccountUpdate{IsActive: &inactive})
}

// Delete removes one of the user's accounts
func (s *AccountService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.accountRepo.Delete(ctx, userID, id)
}
