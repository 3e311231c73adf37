package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tradeboard/tradeboard/internal/domain"
)

// AuditRepository defines portfolio audit repository operations
type AuditRepository interface {
	Create(ctx context.Context, a *domain.PortfolioAudit) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.PortfolioAudit, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*domain.PortfolioAuditList, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// AuditService handles portfolio audit operations
type AuditService struct {
	auditRepo AuditRepository
}

// NewAuditService creates a new portfolio audit service
func NewAuditService(auditRepo AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Create records a new audit for a user
func (s *AuditService) Create(ctx context.Context, userID uuid.UUID, input *domain.PortfolioAuditInput) (*domain.PortfolioAudit, error) {
	audit := &domain.PortfolioAudit{
		ID:           uuid.New(),
		UserID:       userID,
		AuditDate:    input.AuditDate,
		PeriodMonths: input.PeriodMonths,
		TWRPct:       input.TWRPct,
		IRRPct:       input.IRRPct,
		Sharpe:       input.Sharpe,
		Sortino:      input.Sortino,
		Beta:         input.Beta,
		Allocations:  input.Allocations,
		Strengths:    input.Strengths,
		Weaknesses:   input.Weaknesses,
		Actions:      input.Actions,
		Notes:        input.Notes,
		CreatedAt:    time.Now(),
	}

	if err := s.auditRepo.Create(ctx, audit); err != nil {
		return nil, err
	}

	return audit, nil
}

// Get retrieves one of the user's audits
func (s *AuditService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.PortfolioAudit, error) {
	return s.auditRepo.GetByID(ctx, userID, id)
}

// List retrieves the user's audits, newest audit date first
func (s *AuditService) List(ctx context.Context, userID uuid.UUID, limit, offset int) (*domain.PortfolioAuditList, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.auditRepo.ListByUser(ctx, userID, limit, offset)
}

// Delete removes one of the user's audits
func (s *AuditService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.auditRepo.Delete(ctx, userID, id)
}
