package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/pkg/crypto"
	apperrors "github.com/tradeboard/tradeboard/internal/pkg/errors"
)

// APIKeyRepository defines API key repository operations
type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.APIKey, error)
	List(ctx context.Context) ([]domain.APIKey, error)
	ResolveForProvider(ctx context.Context, userID *uuid.UUID, provider string) (*domain.APIKey, error)
	Update(ctx context.Context, key *domain.APIKey) error
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// APIKeyService manages the encrypted API key store
type APIKeyService struct {
	keyRepo APIKeyRepository
	box     *crypto.SecretBox
}

// NewAPIKeyService creates a new API key service
func NewAPIKeyService(keyRepo APIKeyRepository, box *crypto.SecretBox) *APIKeyService {
	return &APIKeyService{keyRepo: keyRepo, box: box}
}

// Create seals and stores a new API key
func (s *APIKeyService) Create(ctx context.Context, input *domain.APIKeyInput) (*domain.APIKey, error) {
	if input.IsGlobal && input.AssignedTo != nil {
		return nil, apperrors.Validation("key cannot be both global and user-assigned")
	}
	if !input.IsGlobal && input.AssignedTo == nil {
		return nil, apperrors.Validation("non-global key requires an assigned user")
	}

	sealed, err := s.box.Seal(input.Value)
	if err != nil {
		return nil, apperrors.Internal("failed to seal API key").WithError(err)
	}

	now := time.Now()
	key := &domain.APIKey{
		ID:             uuid.New(),
		Name:           input.Name,
		Provider:       input.Provider,
		EncryptedValue: sealed,
		Preview:        domain.PreviewOf(input.Value),
		IsGlobal:       input.IsGlobal,
		AssignedTo:     input.AssignedTo,
		IsActive:       true,
		ExpiresAt:      input.ExpiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.keyRepo.Create(ctx, key); err != nil {
		return nil, err
	}

	return key, nil
}

// Get retrieves a key's metadata; the value stays sealed
func (s *APIKeyService) Get(ctx context.Context, id uuid.UUID) (*domain.APIKey, error) {
	return s.keyRepo.GetByID(ctx, id)
}

// List retrieves all stored keys; values stay sealed
func (s *APIKeyService) List(ctx context.Context) (*domain.APIKeyList, error) {
	keys, err := s.keyRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.APIKeyList{APIKeys: keys, TotalCount: int64(len(keys))}, nil
}

// Reveal decrypts a key's value and stamps its last use
func (s *APIKeyService) Reveal(ctx context.Context, id uuid.UUID) (string, error) {
	key, err := s.keyRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	value, err := s.box.Open(key.EncryptedValue)
	if err != nil {
		return "", apperrors.Internal("failed to decrypt API key").WithError(err)
	}

	if err := s.keyRepo.TouchLastUsed(ctx, key.ID, time.Now()); err != nil {
		return "", err
	}

	return value, nil
}

// Update applies a partial update, re-sealing on value change
func (s *APIKeyService) Update(ctx context.Context, id uuid.UUID, update *domain.APIKeyUpdate) (*domain.APIKey, error) {
	key, err := s.keyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		key.Name = *update.Name
	}
	if update.Value != nil {
		sealed, err := s.box.Seal(*update.Value)
		if err != nil {
			return nil, apperrors.Internal("failed to seal API key").WithError(err)
		}
		key.EncryptedValue = sealed
		key.Preview = domain.PreviewOf(*update.Value)
	}
	if update.IsActive != nil {
		key.IsActive = *update.IsActive
	}
	if update.ExpiresAt != nil {
		key.ExpiresAt = update.ExpiresAt
	}

	if err := s.keyRepo.Update(ctx, key); err != nil {
		return nil, err
	}

	return key, nil
}

// Delete removes a stored key
func (s *APIKeyService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.keyRepo.Delete(ctx, id)
}

// ResolveForProvider returns the decrypted key to use for a provider
// call. Active unexpired global keys win over user-assigned keys; the
// resolved key's last use is stamped.
func (s *APIKeyService) ResolveForProvider(ctx context.Context, userID *uuid.UUID, provider string) (string, error) {
	key, err := s.keyRepo.ResolveForProvider(ctx, userID, provider)
	if err != nil {
		return "", err
	}
	if !key.Usable(time.Now()) {
		return "", apperrors.NotFound("API key")
	}

	value, err := s.box.Open(key.EncryptedValue)
	if err != nil {
		return "", apperrors.Internal("failed to decrypt API key").WithError(err)
	}

	if err := s.keyRepo.TouchLastUsed(ctx, key.ID, time.Now()); err != nil {
		return "", err
	}

	return value, nil
}
