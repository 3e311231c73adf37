package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradeboard/tradeboard/internal/domain"
)

// NewTestUser creates a test user with default values.
func NewTestUser() *domain.User {
	return &domain.User{
		ID:        uuid.New(),
		Email:     "test@example.com",
		Name:      "Test User",
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// NewTestAccount creates a test portfolio account with default values.
func NewTestAccount(userID uuid.UUID) *domain.PortfolioAccount {
	return &domain.PortfolioAccount{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           "test-account",
		AccountType:    domain.AccountTypePersonal,
		Broker:         "test-broker",
		Currency:       "USD",
		InitialBalance: 10000,
		CurrentBalance: 10000,
		IsActive:       true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

// NewTestTradingAccount creates a test prop firm account with default values.
func NewTestTradingAccount(userID uuid.UUID) *domain.TradingAccount {
	return &domain.TradingAccount{
		ID:              uuid.New(),
		UserID:          userID,
		Firm:            domain.PropFirmApex,
		FirmName:        "Apex",
		AccountNumber:   "APEX-12345678",
		SocketPort:      4001,
		StartingBalance: 50000,
		CurrentBalance:  50000,
		IsActive:        true,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

// NewTestAPIKey creates a test API key with default values.
func NewTestAPIKey() *domain.APIKey {
	return &domain.APIKey{
		ID:        uuid.New(),
		Name:      "test-key",
		Provider:  "openai",
		Preview:   "sk-...abcd",
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
