package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tradeboard/tradeboard/internal/domain"
)

// MockAccountRepository is a mock implementation of the portfolio
// account repository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, a *domain.PortfolioAccount) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.PortfolioAccount, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PortfolioAccount), args.Error(1)
}

func (m *MockAccountRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*domain.PortfolioAccountList, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PortfolioAccountList), args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, a *domain.PortfolioAccount) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAccountRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func TestAccountService_Create(t *testing.T) {
	t.Run("defaults currency and seeds current balance", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		svc := NewAccountService(accountRepo)

		userID := uuid.New()
		accountRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.PortfolioAccount) bool {
			return a.Currency == "USD" &&
				a.CurrentBalance == 25000 &&
				a.IsActive
		})).Return(nil)

		account, err := svc.Create(context.Background(), userID, &domain.PortfolioAccountInput{
			Name:           "Apex Eval",
			AccountType:    domain.AccountTypePropFirm,
			InitialBalance: 25000,
		})

		require.NoError(t, err)
		assert.Equal(t, 25000.0, account.InitialBalance)
		assert.Equal(t, "USD", account.Currency)
		accountRepo.AssertExpectations(t)
	})

	t.Run("keeps an explicit currency", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		svc := NewAccountService(accountRepo)

		accountRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.PortfolioAccount) bool {
			return a.Currency == "EUR"
		})).Return(nil)

		_, err := svc.Create(context.Background(), uuid.New(), &domain.PortfolioAccountInput{
			Name:        "IBKR",
			AccountType: domain.AccountTypeTaxable,
			Currency:    "EUR",
		})

		require.NoError(t, err)
		accountRepo.AssertExpectations(t)
	})

	t.Run("rejects invalid account type", func(t *testing.T) {
		svc := NewAccountService(new(MockAccountRepository))

		_, err := svc.Create(context.Background(), uuid.New(), &domain.PortfolioAccountInput{
			Name:        "bad",
			AccountType: "hedge_fund",
		})

		assert.Error(t, err)
	})
}

func TestAccountService_Update(t *testing.T) {
	t.Run("applies only provided fields", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		svc := NewAccountService(accountRepo)

		userID := uuid.New()
		accountID := uuid.New()
		existing := &domain.PortfolioAccount{
			ID:             accountID,
			UserID:         userID,
			Name:           "Apex Eval",
			CurrentBalance: 25000,
			IsActive:       true,
		}

		accountRepo.On("GetByID", mock.Anything, userID, accountID).Return(existing, nil)
		accountRepo.On("Update", mock.Anything, mock.MatchedBy(func(a *domain.PortfolioAccount) bool {
			return a.Name == "Apex Eval" && a.CurrentBalance == 26500
		})).Return(nil)

		balance := 26500.0
		updated, err := svc.Update(context.Background(), userID, accountID, &domain.PortfolioAccountUpdate{
			CurrentBalance: &balance,
		})

		require.NoError(t, err)
		assert.Equal(t, 26500.0, updated.CurrentBalance)
		assert.Equal(t, "Apex Eval", updated.Name)
		accountRepo.AssertExpectations(t)
	})
}
