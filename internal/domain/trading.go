package domain

import (
	"time"

	"github.com/google/uuid"
)

// TradingAccount represents a NinjaTrader bridge account. Each account
// owns a dedicated socket port for signal delivery.
type TradingAccount struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"userId"`
	Firm            PropFirm  `json:"firm"`
	FirmName        string    `json:"firmName"`
	AccountNumber   string    `json:"-"`
	SocketPort      int       `json:"socketPort"`
	StartingBalance float64   `json:"startingBalance"`
	CurrentBalance  float64   `json:"currentBalance"`
	DailyPnL        float64   `json:"dailyPnl"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// MaskedNumber returns the account number with all but the last four
// characters hidden.
func (a *TradingAccount) MaskedNumber() string {
	if len(a.AccountNumber) <= 4 {
		return "****"
	}
	return "****" + a.AccountNumber[len(a.AccountNumber)-4:]
}

// TradingAccountInput represents input for registering an account
type TradingAccountInput struct {
	Firm            PropFirm `json:"firm" validate:"required"`
	FirmName        string   `json:"firmName" validate:"required,min=1,max=100"`
	AccountNumber   string   `json:"accountNumber" validate:"required,min=1,max=50"`
	SocketPort      int      `json:"socketPort" validate:"required,gte=1024,lte=65535"`
	StartingBalance float64  `json:"startingBalance" validate:"gte=0"`
}

// TradingAccountUpdate represents a partial trading account update
type TradingAccountUpdate struct {
	CurrentBalance *float64 `json:"currentBalance,omitempty" validate:"omitempty,gte=0"`
	DailyPnL       *float64 `json:"dailyPnl,omitempty"`
	IsActive       *bool    `json:"isActive,omitempty"`
}

// SignalLog records one signal delivery attempt to a trading account
type SignalLog struct {
	ID           uuid.UUID `json:"id"`
	AccountID    uuid.UUID `json:"accountId"`
	Timestamp    time.Time `json:"timestamp"`
	SignalType   string    `json:"signalType"`
	Payload      string    `json:"payload"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	LatencyMs    int64     `json:"latencyMs"`
}

// SignalLogInput represents input for recording a signal delivery
type SignalLogInput struct {
	SignalType   string `json:"signalType" validate:"required,min=1,max=50"`
	Payload      string `json:"payload" validate:"required"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage,omitempty" validate:"max=1000"`
	LatencyMs    int64  `json:"latencyMs" validate:"gte=0"`
}

// SignalStats aggregates delivery outcomes for an account over a window
type SignalStats struct {
	AccountID    uuid.UUID `json:"accountId"`
	Total        int64     `json:"total"`
	Succeeded    int64     `json:"succeeded"`
	Failed       int64     `json:"failed"`
	SuccessRate  float64   `json:"successRate"`
	AvgLatencyMs float64   `json:"avgLatencyMs"`
	WindowStart  time.Time `json:"windowStart"`
	WindowEnd    time.Time `json:"windowEnd"`
}
