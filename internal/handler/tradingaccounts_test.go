package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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

// MockTradingAccountRepository is a mock implementation of the trading
// account repository
type MockTradingAccountRepository struct {
	mock.Mock
}

func (m *MockTradingAccountRepository) Create(ctx context.Context, a *domain.TradingAccount) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockTradingAccountRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.TradingAccount, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TradingAccount), args.Error(1)
}

func (m *MockTradingAccountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.TradingAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TradingAccount), args.Error(1)
}

func (m *MockTradingAccountRepository) Update(ctx context.Context, a *domain.TradingAccount) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockTradingAccountRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockSignalLogRepository is a mock implementation of the signal log
// repository
type MockSignalLogRepository struct {
	mock.Mock
}

func (m *MockSignalLogRepository) Create(ctx context.Context, log *domain.SignalLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockSignalLogRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, from, to time.Time, limit int) ([]domain.SignalLog, error) {
	args := m.Called(ctx, accountID, from, to, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SignalLog), args.Error(1)
}

func (m *MockSignalLogRepository) Stats(ctx context.Context, accountID uuid.UUID, from, to time.Time) (*domain.SignalStats, error) {
	args := m.Called(ctx, accountID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SignalStats), args.Error(1)
}

func setupTradingTestApp(accountRepo *MockTradingAccountRepository, signalRepo *MockSignalLogRepository, userID uuid.UUID) *fiber.App {
	app := fiber.New()
	app.Use(testutil.TestUserMiddleware(userID))

	h := NewTradingAccountHandler(service.NewTradingService(accountRepo, signalRepo), zap.NewNop())
	app.Post("/api/v1/trading-accounts", h.Create)
	app.Get("/api/v1/trading-accounts", h.List)
	app.Get("/api/v1/trading-accounts/:id", h.Get)
	app.Post("/api/v1/trading-accounts/:id/signals", h.RecordSignal)
	app.Get("/api/v1/trading-accounts/:id/signals", h.ListSignals)
	app.Get("/api/v1/trading-accounts/:id/signals/stats", h.SignalStats)

	return app
}

func TestTradingAccountHandler_Create(t *testing.T) {
	t.Run("registers a trading account", func(t *testing.T) {
		accountRepo := new(MockTradingAccountRepository)
		signalRepo := new(MockSignalLogRepository)
		userID := uuid.New()
		app := setupTradingTestApp(accountRepo, signalRepo, userID)

		accountRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.TradingAccount) bool {
			return a.UserID == userID && a.Firm == domain.PropFirmTopStep && a.CurrentBalance == 50000
		})).Return(nil)

		body, _ := json.Marshal(domain.TradingAccountInput{
			Firm:            domain.PropFirmTopStep,
			FirmName:        "TopStep",
			AccountNumber:   "TS-98765432",
			SocketPort:      4002,
			StartingBalance: 50000,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/trading-accounts", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		accountRepo.AssertExpectations(t)
	})

	t.Run("rejects an unknown prop firm", func(t *testing.T) {
		accountRepo := new(MockTradingAccountRepository)
		signalRepo := new(MockSignalLogRepository)
		app := setupTradingTestApp(accountRepo, signalRepo, uuid.New())

		body, _ := json.Marshal(domain.TradingAccountInput{
			Firm:            domain.PropFirm("ftmo"),
			FirmName:        "FTMO",
			AccountNumber:   "FTMO-1",
			SocketPort:      4003,
			StartingBalance: 10000,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/trading-accounts", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		accountRepo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects a privileged socket port", func(t *testing.T) {
		accountRepo := new(MockTradingAccountRepository)
		signalRepo := new(MockSignalLogRepository)
		app := setupTradingTestApp(accountRepo, signalRepo, uuid.New())

		body, _ := json.Marshal(domain.TradingAccountInput{
			Firm:            domain.PropFirmApex,
			FirmName:        "Apex",
			AccountNumber:   "APEX-1",
			SocketPort:      80,
			StartingBalance: 10000,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/trading-accounts", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestTradingAccountHandler_RecordSignal(t *testing.T) {
	t.Run("records a signal for an owned account", func(t *testing.T) {
		accountRepo := new(MockTradingAccountRepository)
		signalRepo := new(MockSignalLogRepository)
		userID := uuid.New()
		app := setupTradingTestApp(accountRepo, signalRepo, userID)

		account := testutil.NewTestTradingAccount(userID)
		accountRepo.On("GetByID", mock.Anything, userID, account.ID).Return(account, nil)
		signalRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.SignalLog) bool {
			return l.AccountID == account.ID && l.SignalType == "entry" && l.Success
		})).Return(nil)

		body, _ := json.Marshal(domain.SignalLogInput{
			SignalType: "entry",
			Payload:    `{"symbol":"MNQ","side":"long"}`,
			Success:    true,
			LatencyMs:  42,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/trading-accounts/"+account.ID.String()+"/signals", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		signalRepo.AssertExpectations(t)
	})

	t.Run("returns 404 for an account the user does not own", func(t *testing.T) {
		accountRepo := new(MockTradingAccountRepository)
		signalRepo := new(MockSignalLogRepository)
		userID := uuid.New()
		app := setupTradingTestApp(accountRepo, signalRepo, userID)

		accountID := uuid.New()
		accountRepo.On("GetByID", mock.Anything, userID, accountID).Return(nil, apperrors.NotFound("trading account"))

		body, _ := json.Marshal(domain.SignalLogInput{
			SignalType: "entry",
			Payload:    "{}",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/trading-accounts/"+accountID.String()+"/signals", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		signalRepo.AssertNotCalled(t, "Create")
	})
}

func TestTradingAccountHandler_SignalStats(t *testing.T) {
	t.Run("returns aggregated stats", func(t *testing.T) {
		accountRepo := new(MockTradingAccountRepository)
		signalRepo := new(MockSignalLogRepository)
		userID := uuid.New()
		app := setupTradingTestApp(accountRepo, signalRepo, userID)

		account := testutil.NewTestTradingAccount(userID)
		accountRepo.On("GetByID", mock.Anything, userID, account.ID).Return(account, nil)
		signalRepo.On("Stats", mock.Anything, account.ID, mock.Anything, mock.Anything).Return(&domain.SignalStats{
			AccountID:   account.ID,
			Total:       10,
			Succeeded:   9,
			Failed:      1,
			SuccessRate: 0.9,
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/trading-accounts/"+account.ID.String()+"/signals/stats", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var stats domain.SignalStats
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
		assert.Equal(t, int64(10), stats.Total)
		assert.Equal(t, 0.9, stats.SuccessRate)
	})
}
