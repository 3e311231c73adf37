package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tradeboard/tradeboard/internal/domain"
)

// RiskProfileRepository defines risk profile repository operations
type RiskProfileRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*domain.RiskProfile, error)
	Upsert(ctx context.Context, p *domain.RiskProfile) error
}

// RiskProfileService handles risk profile operations. Every user has
// exactly one profile; the first read creates it with defaults.
type RiskProfileService struct {
	profileRepo RiskProfileRepository
}

// NewRiskProfileService creates a new risk profile service
func NewRiskProfileService(profileRepo RiskProfileRepository) *RiskProfileService {
	return &RiskProfileService{profileRepo: profileRepo}
}

// GetOrCreate retrieves the user's profile, creating a default one if
// none exists yet.
func (s *RiskProfileService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.RiskProfile, error) {
	profile, err := s.profileRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	profile = domain.NewRiskProfile(userID)
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// Update applies a partial update to the user's profile
func (s *RiskProfileService) Update(ctx context.Context, userID uuid.UUID, update *domain.RiskProfileUpdate) (*domain.RiskProfile, error) {
	profile, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.MaxDrawdownPct != nil {
		profile.MaxDrawdownPct = *update.MaxDrawdownPct
	}
	if update.RiskPerTradePct != nil {
		profile.RiskPerTradePct = *update.RiskPerTradePct
	}
	if update.MaxOpenPositions != nil {
		profile.MaxOpenPositions = *update.MaxOpenPositions
	}
	if update.ESGScreening != nil {
		profile.ESGScreening = *update.ESGScreening
	}
	if update.ESGMinScore != nil {
		profile.ESGMinScore = *update.ESGMinScore
	}
	if update.PreferIndexFunds != nil {
		profile.PreferIndexFunds = *update.PreferIndexFunds
	}
	if update.VanguardStyleScore != nil {
		profile.VanguardStyleScore = *update.VanguardStyleScore
	}
	profile.UpdatedAt = time.Now()

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}
