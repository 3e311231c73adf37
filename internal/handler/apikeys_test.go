package handler

import (
	"bytes"
	"context"
	"encoding/base64"
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
	"github.com/tradeboard/tradeboard/internal/pkg/crypto"
	"github.com/tradeboard/tradeboard/internal/service"
	"github.com/tradeboard/tradeboard/internal/testutil"
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

func testSecretBox(t *testing.T) *crypto.SecretBox {
	t.Helper()
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x42}, 32))
	box, err := crypto.NewSecretBox(key)
	require.NoError(t, err)
	return box
}

func setupAPIKeysTestApp(t *testing.T, repo *MockAPIKeyRepository) (*fiber.App, *crypto.SecretBox) {
	app := fiber.New()
	app.Use(testutil.TestUserMiddleware(uuid.New()))

	box := testSecretBox(t)
	h := NewAPIKeyHandler(service.NewAPIKeyService(repo, box), zap.NewNop())
	app.Post("/api/v1/apikeys", h.Create)
	app.Get("/api/v1/apikeys", h.List)
	app.Post("/api/v1/apikeys/:id/reveal", h.Reveal)
	app.Delete("/api/v1/apikeys/:id", h.Delete)

	return app, box
}

func TestAPIKeyHandler_Create(t *testing.T) {
	t.Run("stores a sealed global key", func(t *testing.T) {
		repo := new(MockAPIKeyRepository)
		app, _ := setupAPIKeysTestApp(t, repo)

		repo.On("Create", mock.Anything, mock.MatchedBy(func(k *domain.APIKey) bool {
			return k.Provider == "openai" &&
				k.IsGlobal &&
				k.EncryptedValue != "" &&
				k.EncryptedValue != "sk-test-1234abcd"
		})).Return(nil)

		body, _ := json.Marshal(domain.APIKeyInput{
			Name:     "shared-openai",
			Provider: "openai",
			Value:    "sk-test-1234abcd",
			IsGlobal: true,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/apikeys", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var key domain.APIKey
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&key))
		assert.Equal(t, "...abcd", key.Preview)
		assert.Empty(t, key.EncryptedValue)
		repo.AssertExpectations(t)
	})

	t.Run("rejects a non-global key without an assignee", func(t *testing.T) {
		repo := new(MockAPIKeyRepository)
		app, _ := setupAPIKeysTestApp(t, repo)

		body, _ := json.Marshal(domain.APIKeyInput{
			Name:     "orphan",
			Provider: "openai",
			Value:    "sk-test-1234abcd",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/apikeys", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		repo.AssertNotCalled(t, "Create")
	})
}

func TestAPIKeyHandler_Reveal(t *testing.T) {
	t.Run("decrypts a stored key", func(t *testing.T) {
		repo := new(MockAPIKeyRepository)
		app, box := setupAPIKeysTestApp(t, repo)

		sealed, err := box.Seal("sk-test-1234abcd")
		require.NoError(t, err)

		key := testutil.NewTestAPIKey()
		key.EncryptedValue = sealed
		repo.On("GetByID", mock.Anything, key.ID).Return(key, nil)
		repo.On("TouchLastUsed", mock.Anything, key.ID, mock.Anything).Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/apikeys/"+key.ID.String()+"/reveal", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var revealed RevealResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&revealed))
		assert.Equal(t, "sk-test-1234abcd", revealed.Value)
		repo.AssertExpectations(t)
	})
}

func TestAPIKeyHandler_List(t *testing.T) {
	t.Run("lists keys without values", func(t *testing.T) {
		repo := new(MockAPIKeyRepository)
		app, _ := setupAPIKeysTestApp(t, repo)

		key := testutil.NewTestAPIKey()
		key.EncryptedValue = "sealed"
		repo.On("List", mock.Anything).Return([]domain.APIKey{*key}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/apikeys", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var list domain.APIKeyList
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		assert.Equal(t, int64(1), list.TotalCount)
		require.Len(t, list.APIKeys, 1)
		assert.Empty(t, list.APIKeys[0].EncryptedValue)
	})
}
