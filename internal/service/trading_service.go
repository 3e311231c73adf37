package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/middleware"
)

// TradingAccountRepository defines trading account repository operations
type TradingAccountRepository interface {
	Create(ctx context.Context, a *domain.TradingAccount) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.TradingAccount, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.TradingAccount, error)
	Update(ctx context.Context, a *domain.TradingAccount) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// SignalLogRepository defines signal log repository operations
type SignalLogRepository interface {
	Create(ctx context.Context, log *domain.SignalLog) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, from, to time.Time, limit int) ([]domain.SignalLog, error)
	Stats(ctx context.Context, accountID uuid.UUID, from, to time.Time) (*domain.SignalStats, error)
}

// TradingService handles trading accounts and signal delivery logs
type TradingService struct {
	accountRepo TradingAccountRepository
	signalRepo  SignalLogRepository
}

// NewTradingService creates a new trading service
func NewTradingService(accountRepo TradingAccountRepository, signalRepo SignalLogRepository) *TradingService {
	return &TradingService{accountRepo: accountRepo, signalRepo: signalRepo}
}

// CreateAccount registers a new trading account
func (s *TradingService) CreateAccount(ctx context.Context, userID uuid.UUID, input *domain.TradingAccountInput) (*domain.TradingAccount, error) {
	now := time.Now()
	account := &domain.TradingAccount{
		ID:              uuid.New(),
		UserID:          userID,
		Firm:            input.Firm,
		FirmName:        input.FirmName,
		AccountNumber:   input.AccountNumber,
		SocketPort:      input.SocketPort,
		StartingBalance: input.StartingBalance,
		CurrentBalance:  input.StartingBalance,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves one of the user's trading accounts
func (s *TradingService) GetAccount(ctx context.Context, userID, id uuid.UUID) (*domain.TradingAccount, error) {
	return s.accountRepo.GetByID(ctx, userID, id)
}

// ListAccounts retrieves the user's trading accounts
func (s *TradingService) ListAccounts(ctx context.Context, userID uuid.UUID) ([]domain.TradingAccount, error) {
	return s.accountRepo.ListByUser(ctx, userID)
}

// UpdateAccount applies a partial update to a trading account
func (s *TradingService) UpdateAccount(ctx context.Context, userID, id uuid.UUID, update *domain.TradingAccountUpdate) (*domain.TradingAccount, error) {
	account, err := s.accountRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if update.CurrentBalance != nil {
		account.CurrentBalance = *update.CurrentBalance
	}
	if update.DailyPnL != nil {
		account.DailyPnL = *update.DailyPnL
	}
	if update.IsActive != nil {
		account.IsActive = *update.IsActive
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// DeleteAccount removes a trading account
func (s *TradingService) DeleteAccount(ctx context.Context, userID, id uuid.UUID) error {
	return s.accountRepo.Delete(ctx, userID, id)
}

// RecordSignal logs a signal delivery attempt against an account the
// user owns
func (s *TradingService) RecordSignal(ctx context.Context, userID, accountID uuid.UUID, input *domain.SignalLogInput) (*domain.SignalLog, error) {
	if _, err := s.accountRepo.GetByID(ctx, userID, accountID); err != nil {
		return nil, err
	}

	log := &domain.SignalLog{
		ID:           uuid.New(),
		AccountID:    accountID,
		Timestamp:    time.Now(),
		SignalType:   input.SignalType,
		Payload:      input.Payload,
		Success:      input.Success,
		ErrorMessage: input.ErrorMessage,
		LatencyMs:    input.LatencyMs,
	}

	if err := s.signalRepo.Create(ctx, log); err != nil {
		return nil, err
	}

	middleware.RecordTradingSignal(input.SignalType, input.Success)

	return log, nil
}

// ListSignals retrieves signal logs for an account over a window
func (s *TradingService) ListSignals(ctx context.Context, userID, accountID uuid.UUID, from, to time.Time, limit int) ([]domain.SignalLog, error) {
	if _, err := s.accountRepo.GetByID(ctx, userID, accountID); err != nil {
		return nil, err
	}

	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.Add(-24 * time.Hour)
	}

	return s.signalRepo.ListByAccount(ctx, accountID, from, to, limit)
}

// SignalStats aggregates delivery outcomes for an account
func (s *TradingService) SignalStats(ctx context.Context, userID, accountID uuid.UUID, from, to time.Time) (*domain.SignalStats, error) {
	if _, err := s.accountRepo.GetByID(ctx, userID, accountID); err != nil {
		return nil, err
	}

	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.Add(-7 * 24 * time.Hour)
	}

	return s.signalRepo.Stats(ctx, accountID, from, to)
}
