package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/pkg/crypto"
	apperrors "github.com/tradeboard/tradeboard/internal/pkg/errors"
)

// MockAPIKeyRepository is a mock implementation of the API key repository
type MockAPIKeyRepository struct {
	mock.Mock
}

func (m *MockAPIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.APIKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) List(ctx context.Context) ([]domain.APIKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) ResolveForProvider(ctx context.Context, userID *uuid.UUID, provider string) (*domain.APIKey, error) {
	args := m.Called(ctx, userID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) Update(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestBox(t *testing.T) *crypto.SecretBox {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	box, err := crypto.NewSecretBox(key)
	require.NoError(t, err)
	return box
}

func TestAPIKeyService_Create(t *testing.T) {
	t.Run("seals the value and stores a preview", func(t *testing.T) {
		keyRepo := new(MockAPIKeyRepository)
		box := newTestBox(t)
		svc := NewAPIKeyService(keyRepo, box)

		keyRepo.On("Create", mock.Anything, mock.MatchedBy(func(k *domain.APIKey) bool {
			plain, err := box.Open(k.EncryptedValue)
			return err == nil &&
				plain == "sk-live-abcd1234" &&
				k.Preview == "...1234" &&
				k.IsActive
		})).Return(nil)

		key, err := svc.Create(context.Background(), &domain.APIKeyInput{
			Name:     "polygon-main",
			Provider: "polygon",
			Value:    "sk-live-abcd1234",
			IsGlobal: true,
		})

		require.NoError(t, err)
		assert.NotContains(t, key.EncryptedValue, "abcd1234")
		keyRepo.AssertExpectations(t)
	})

	t.Run("rejects global key with an assignee", func(t *testing.T) {
		svc := NewAPIKeyService(new(MockAPIKeyRepository), newTestBox(t))

		userID := uuid.New()
		_, err := svc.Create(context.Background(), &domain.APIKeyInput{
			Name:       "bad",
			Provider:   "polygon",
			Value:      "v",
			IsGlobal:   true,
			AssignedTo: &userID,
		})

		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("rejects non-global key without an assignee", func(t *testing.T) {
		svc := NewAPIKeyService(new(MockAPIKeyRepository), newTestBox(t))

		_, err := svc.Create(context.Background(), &domain.APIKeyInput{
			Name:     "bad",
			Provider: "polygon",
			Value:    "v",
		})

		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestAPIKeyService_Reveal(t *testing.T) {
	t.Run("decrypts and stamps last use", func(t *testing.T) {
		keyRepo := new(MockAPIKeyRepository)
		box := newTestBox(t)
		svc := NewAPIKeyService(keyRepo, box)

		sealed, err := box.Seal("sk-secret-value")
		require.NoError(t, err)

		keyID := uuid.New()
		keyRepo.On("GetByID", mock.Anything, keyID).Return(&domain.APIKey{
			ID:             keyID,
			EncryptedValue: sealed,
		}, nil)
		keyRepo.On("TouchLastUsed", mock.Anything, keyID, mock.Anything).Return(nil)

		value, err := svc.Reveal(context.Background(), keyID)

		require.NoError(t, err)
		assert.Equal(t, "sk-secret-value", value)
		keyRepo.AssertExpectations(t)
	})
}

func TestAPIKeyService_Update(t *testing.T) {
	t.Run("re-seals on value change", func(t *testing.T) {
		keyRepo := new(MockAPIKeyRepository)
		box := newTestBox(t)
		svc := NewAPIKeyService(keyRepo, box)

		sealed, _ := box.Seal("old-value")
		keyID := uuid.New()
		keyRepo.On("GetByID", mock.Anything, keyID).Return(&domain.APIKey{
			ID:             keyID,
			EncryptedValue: sealed,
			Preview:        "...alue",
		}, nil)
		keyRepo.On("Update", mock.Anything, mock.MatchedBy(func(k *domain.APIKey) bool {
			plain, err := box.Open(k.EncryptedValue)
			return err == nil && plain == "new-value-9876" && k.Preview == "...9876"
		})).Return(nil)

		newValue := "new-value-9876"
		_, err := svc.Update(context.Background(), keyID, &domain.APIKeyUpdate{Value: &newValue})

		require.NoError(t, err)
		keyRepo.AssertExpectations(t)
	})
}

func TestAPIKeyService_ResolveForProvider(t *testing.T) {
	t.Run("returns decrypted value for usable key", func(t *testing.T) {
		keyRepo := new(MockAPIKeyRepository)
		box := newTestBox(t)
		svc := NewAPIKeyService(keyRepo, box)

		sealed, _ := box.Seal("provider-key")
		keyID := uuid.New()
		userID := uuid.New()

		keyRepo.On("ResolveForProvider", mock.Anything, &userID, "openai").Return(&domain.APIKey{
			ID:             keyID,
			EncryptedValue: sealed,
			IsActive:       true,
		}, nil)
		keyRepo.On("TouchLastUsed", mock.Anything, keyID, mock.Anything).Return(nil)

		value, err := svc.ResolveForProvider(context.Background(), &userID, "openai")

		require.NoError(t, err)
		assert.Equal(t, "provider-key", value)
	})

	t.Run("refuses expired key", func(t *testing.T) {
		keyRepo := new(MockAPIKeyRepository)
		box := newTestBox(t)
		svc := NewAPIKeyService(keyRepo, box)

		sealed, _ := box.Seal("provider-key")
		past := time.Now().Add(-time.Hour)

		keyRepo.On("ResolveForProvider", mock.Anything, (*uuid.UUID)(nil), "openai").Return(&domain.APIKey{
			ID:             uuid.New(),
			EncryptedValue: sealed,
			IsActive:       true,
			ExpiresAt:      &past,
		}, nil)

		_, err := svc.ResolveForProvider(context.Background(), nil, "openai")

		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
