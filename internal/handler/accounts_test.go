package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/domain"
	apperrors "github.com/tradeboard/tradeboard/internal/pkg/errors"
	"github.com/tradeboard/tradeboard/internal/service"
	"github.com/tradeboard/tradeboard/internal/testutil"
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

func setupAccountsTestApp(repo *MockAccountRepository, userID *uuid.UUID) *fiber.App {
	app := fiber.New()

	if userID != nil {
		app.Use(testutil.TestUserMiddleware(*userID))
	}

	h := NewAccountHandler(service.NewAccountService(repo), zap.NewNop())
	app.Post("/api/v1/accounts", h.Create)
	app.Get("/api/v1/accounts", h.List)
	app.Get("/api/v1/accounts/:id", h.Get)
	app.Patch("/api/v1/accounts/:id", h.Update)
	app.Delete("/api/v1/accounts/:id", h.Delete)

	return app
}

func TestAccountHandler_Create(t *testing.T) {
	t.Run("creates an account", func(t *testing.T) {
		repo := new(MockAccountRepository)
		userID := uuid.New()
		app := setupAccountsTestApp(repo, &userID)

		repo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.PortfolioAccount) bool {
			return a.UserID == userID && a.Name == "Apex Eval"
		})).Return(nil)

		body, _ := json.Marshal(domain.PortfolioAccountInput{
			Name:           "Apex Eval",
			AccountType:    domain.AccountTypePropFirm,
			InitialBalance: 25000,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var account domain.PortfolioAccount
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&account))
		assert.Equal(t, "Apex Eval", account.Name)
		assert.Equal(t, 25000.0, account.CurrentBalance)
		repo.AssertExpectations(t)
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		repo := new(MockAccountRepository)
		userID := uuid.New()
		app := setupAccountsTestApp(repo, &userID)

		body, _ := json.Marshal(domain.PortfolioAccountInput{
			AccountType: domain.AccountTypePersonal,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects an invalid account type", func(t *testing.T) {
		repo := new(MockAccountRepository)
		userID := uuid.New()
		app := setupAccountsTestApp(repo, &userID)

		body, _ := json.Marshal(domain.PortfolioAccountInput{
			Name:        "Misc",
			AccountType: domain.AccountType("crypto_wallet"),
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("requires authentication", func(t *testing.T) {
		repo := new(MockAccountRepository)
		app := setupAccountsTestApp(repo, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewReader([]byte("{}")))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAccountHandler_List(t *testing.T) {
	t.Run("lists accounts with pagination defaults", func(t *testing.T) {
		repo := new(MockAccountRepository)
		userID := uuid.New()
		app := setupAccountsTestApp(repo, &userID)

		account := testutil.NewTestAccount(userID)
		repo.On("ListByUser", mock.Anything, userID, 50, 0).Return(&domain.PortfolioAccountList{
			Accounts:   []domain.PortfolioAccount{*account},
			TotalCount: 1,
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var list domain.PortfolioAccountList
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		assert.Equal(t, int64(1), list.TotalCount)
		require.Len(t, list.Accounts, 1)
		assert.Equal(t, account.ID, list.Accounts[0].ID)
	})

	t.Run("passes an explicit limit through", func(t *testing.T) {
		repo := new(MockAccountRepository)
		userID := uuid.New()
		app := setupAccountsTestApp(repo, &userID)

		repo.On("ListByUser", mock.Anything, userID, 10, 20).Return(&domain.PortfolioAccountList{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts?limit=10&offset=20", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		repo.AssertExpectations(t)
	})
}

func TestAccountHandler_Get(t *testing.T) {
	t.Run("returns 404 for an unknown account", func(t *testing.T) {
		repo := new(MockAccountRepository)
		userID := uuid.New()
		app := setupAccountsTestApp(repo, &userID)

		id := uuid.New()
		repo.On("GetByID", mock.Anything, userID, id).Return(nil, apperrors.NotFound("account"))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+id.String(), nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("rejects a malformed ID", func(t *testing.T) {
		repo := new(MockAccountRepository)
		userID := uuid.New()
		app := setupAccountsTestApp(repo, &userID)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/not-a-uuid", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestAccountHandler_Delete(t *testing.T) {
	t.Run("deletes an account", func(t *testing.T) {
		repo := new(MockAccountRepository)
		userID := uuid.New()
		app := setupAccountsTestApp(repo, &userID)

		id := uuid.New()
		repo.On("Delete", mock.Anything, userID, id).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/accounts/"+id.String(), nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		repo.AssertExpectations(t)
	})
}
