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

// MockRiskProfileRepository is a mock implementation of the risk
// profile repository
type MockRiskProfileRepository struct {
	mock.Mock
}

func (m *MockRiskProfileRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.RiskProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RiskProfile), args.Error(1)
}

func (m *MockRiskProfileRepository) Upsert(ctx context.Context, p *domain.RiskProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func TestRiskProfileService_GetOrCreate(t *testing.T) {
	t.Run("returns existing profile untouched", func(t *testing.T) {
		profileRepo := new(MockRiskProfileRepository)
		svc := NewRiskProfileService(profileRepo)

		userID := uuid.New()
		existing := &domain.RiskProfile{
			ID:             uuid.New(),
			UserID:         userID,
			MaxDrawdownPct: 3.5,
		}
		profileRepo.On("GetByUser", mock.Anything, userID).Return(existing, nil)

		profile, err := svc.GetOrCreate(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, existing.ID, profile.ID)
		assert.Equal(t, 3.5, profile.MaxDrawdownPct)
		profileRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("creates defaults on first read", func(t *testing.T) {
		profileRepo := new(MockRiskProfileRepository)
		svc := NewRiskProfileService(profileRepo)

		userID := uuid.New()
		profileRepo.On("GetByUser", mock.Anything, userID).Return(nil, nil)
		profileRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(p *domain.RiskProfile) bool {
			return p.UserID == userID &&
				p.MaxDrawdownPct == domain.DefaultMaxDrawdownPct &&
				p.RiskPerTradePct == domain.DefaultRiskPerTradePct &&
				p.MaxOpenPositions == domain.DefaultMaxOpenPositions
		})).Return(nil)

		profile, err := svc.GetOrCreate(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, domain.DefaultMaxDrawdownPct, profile.MaxDrawdownPct)
		profileRepo.AssertExpectations(t)
	})
}

func TestRiskProfileService_Update(t *testing.T) {
	t.Run("applies only provided fields", func(t *testing.T) {
		profileRepo := new(MockRiskProfileRepository)
		svc := NewRiskProfileService(profileRepo)

		userID := uuid.New()
		existing := &domain.RiskProfile{
			ID:               uuid.New(),
			UserID:           userID,
			MaxDrawdownPct:   5,
			RiskPerTradePct:  1,
			MaxOpenPositions: 5,
		}
		profileRepo.On("GetByUser", mock.Anything, userID).Return(existing, nil)
		profileRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(p *domain.RiskProfile) bool {
			return p.RiskPerTradePct == 2 && p.MaxDrawdownPct == 5
		})).Return(nil)

		risk := 2.0
		profile, err := svc.Update(context.Background(), userID, &domain.RiskProfileUpdate{
			RiskPerTradePct: &risk,
		})

		require.NoError(t, err)
		assert.Equal(t, 2.0, profile.RiskPerTradePct)
		assert.Equal(t, 5.0, profile.MaxDrawdownPct)
		profileRepo.AssertExpectations(t)
	})
}
