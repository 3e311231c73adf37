package domain

import (
	"time"

	"github.com/google/uuid"
)

// PortfolioAccount represents a trading or investment account
type PortfolioAccount struct {
	ID             uuid.UUID   `json:"id"`
	UserID         uuid.UUID   `json:"userId"`
	Name           string      `json:"name"`
	AccountType    AccountType `json:"accountType"`
	Broker         string      `json:"broker,omitempty"`
	Currency       string      `json:"currency"`
	InitialBalance float64     `json:"initialBalance"`
	CurrentBalance float64     `json:"currentBalance"`
	DrawdownLimit  *float64    `json:"drawdownLimit,omitempty"`
	IsActive       bool        `json:"isActive"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// PortfolioAccountInput represents input for creating an account
type PortfolioAccountInput struct {
	Name           string      `json:"name" validate:"required,min=1,max=100"`
	AccountType    AccountType `json:"accountType" validate:"required"`
	Broker         string      `json:"broker,omitempty" validate:"max=100"`
	Currency       string      `json:"currency,omitempty" validate:"omitempty,len=3"`
	InitialBalance float64     `json:"initialBalance" validate:"gte=0"`
	DrawdownLimit  *float64    `json:"drawdownLimit,omitempty" validate:"omitempty,gt=0"`
}

// PortfolioAccountUpdate represents a partial account update
type PortfolioAccountUpdate struct {
	Name           *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Broker         *string  `json:"broker,omitempty" validate:"omitempty,max=100"`
	CurrentBalance *float64 `json:"currentBalance,omitempty" validate:"omitempty,gte=0"`
	DrawdownLimit  *float64 `json:"drawdownLimit,omitempty" validate:"omitempty,gt=0"`
	IsActive       *bool    `json:"isActive,omitempty"`
}

// PortfolioAccountList represents a paginated list of accounts
type PortfolioAccountList struct {
	Accounts   []PortfolioAccount `json:"accounts"`
	TotalCount int64              `json:"totalCount"`
	HasMore    bool               `json:"hasMore"`
}

// RiskProfile captures a user's risk tolerance. Exactly one exists
// per user; reads create it with defaults when missing.
type RiskProfile struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"userId"`
	MaxDrawdownPct     float64   `json:"maxDrawdownPct"`
	RiskPerTradePct    float64   `json:"riskPerTradePct"`
	MaxOpenPositions   int       `json:"maxOpenPositions"`
	ESGScreening       bool      `json:"esgScreening"`
	ESGMinScore        float64   `json:"esgMinScore"`
	PreferIndexFunds   bool      `json:"preferIndexFunds"`
	VanguardStyleScore float64   `json:"vanguardStyleScore"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Default risk settings applied when a profile is first created.
const (
	DefaultMaxDrawdownPct   = 5.00
	DefaultRiskPerTradePct  = 1.00
	DefaultMaxOpenPositions = 5
)

// NewRiskProfile returns a profile with default settings for a user
func NewRiskProfile(userID uuid.UUID) *RiskProfile {
	now := time.Now()
	return &RiskProfile{
		ID:               uuid.New(),
		UserID:           userID,
		MaxDrawdownPct:   DefaultMaxDrawdownPct,
		RiskPerTradePct:  DefaultRiskPerTradePct,
		MaxOpenPositions: DefaultMaxOpenPositions,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// RiskProfileUpdate represents a partial risk profile update
type RiskProfileUpdate struct {
	MaxDrawdownPct     *float64 `json:"maxDrawdownPct,omitempty" validate:"omitempty,gt=0,lte=100"`
	RiskPerTradePct    *float64 `json:"riskPerTradePct,omitempty" validate:"omitempty,gt=0,lte=100"`
	MaxOpenPositions   *int     `json:"maxOpenPositions,omitempty" validate:"omitempty,gte=1,lte=100"`
	ESGScreening       *bool    `json:"esgScreening,omitempty"`
	ESGMinScore        *float64 `json:"esgMinScore,omitempty" validate:"omitempty,gte=0,lte=100"`
	PreferIndexFunds   *bool    `json:"preferIndexFunds,omitempty"`
	VanguardStyleScore *float64 `json:"vanguardStyleScore,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// PortfolioAudit is a point-in-time performance review of a portfolio
type PortfolioAudit struct {
	ID           uuid.UUID          `json:"id"`
	UserID       uuid.UUID          `json:"userId"`
	AuditDate    time.Time          `json:"auditDate"`
	PeriodMonths int                `json:"periodMonths"`
	TWRPct       *float64           `json:"twrPct,omitempty"`
	IRRPct       *float64           `json:"irrPct,omitempty"`
	Sharpe       *float64           `json:"sharpe,omitempty"`
	Sortino      *float64           `json:"sortino,omitempty"`
	Beta         *float64           `json:"beta,omitempty"`
	Allocations  map[string]float64 `json:"allocations,omitempty"`
	Strengths    []string           `json:"strengths,omitempty"`
	Weaknesses   []string           `json:"weaknesses,omitempty"`
	Actions      []string           `json:"actions,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// PortfolioAuditInput represents input for recording an audit
type PortfolioAuditInput struct {
	AuditDate    time.Time          `json:"auditDate" validate:"required"`
	PeriodMonths int                `json:"periodMonths" validate:"required,gte=1,lte=120"`
	TWRPct       *float64           `json:"twrPct,omitempty"`
	IRRPct       *float64           `json:"irrPct,omitempty"`
	Sharpe       *float64           `json:"sharpe,omitempty"`
	Sortino      *float64           `json:"sortino,omitempty"`
	Beta         *float64           `json:"beta,omitempty"`
	Allocations  map[string]float64 `json:"allocations,omitempty"`
	Strengths    []string           `json:"strengths,omitempty"`
	Weaknesses   []string           `json:"weaknesses,omitempty"`
	Actions      []string           `json:"actions,omitempty"`
	Notes        string             `json:"notes,omitempty" validate:"max=10000"`
}

// PortfolioAuditList represents a paginated list of audits
type PortfolioAuditList struct {
	Audits     []PortfolioAudit `json:"audits"`
	TotalCount int64            `json:"totalCount"`
	HasMore    bool             `json:"hasMore"`
}
