package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tradeboard/tradeboard/internal/config"
	"github.com/tradeboard/tradeboard/internal/domain"
	apperrors "github.com/tradeboard/tradeboard/internal/pkg/errors"
)

// MockUserRepository is a mock implementation of the user repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func authTestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:        "test-secret-key-for-signing",
			Expiry:        time.Hour,
			RefreshExpiry: 7 * 24 * time.Hour,
			Issuer:        "tradeboard",
		},
	}
}

func TestAuthService_Register(t *testing.T) {
	t.Run("creates user and issues tokens", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewAuthService(authTestConfig(), userRepo)

		userRepo.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
		userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "new@example.com" &&
				u.IsActive &&
				u.PasswordHash != "" &&
				u.PasswordHash != "hunter22secret"
		})).Return(nil)

		result, err := svc.Register(context.Background(), &domain.RegisterInput{
			Email:    "new@example.com",
			Name:     "New User",
			Password: "hunter22secret",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.True(t, result.ExpiresAt.After(time.Now()))
		userRepo.AssertExpectations(t)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewAuthService(authTestConfig(), userRepo)

		userRepo.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

		_, err := svc.Register(context.Background(), &domain.RegisterInput{
			Email:    "taken@example.com",
			Password: "hunter22secret",
		})

		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	user := &domain.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}

	t.Run("issues tokens for valid credentials", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewAuthService(authTestConfig(), userRepo)

		userRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(user, nil)

		result, err := svc.Login(context.Background(), &domain.LoginInput{
			Email:    "user@example.com",
			Password: "correct-password",
		})

		require.NoError(t, err)
		assert.Equal(t, user.ID, result.User.ID)
		assert.NotEmpty(t, result.AccessToken)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewAuthService(authTestConfig(), userRepo)

		userRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(user, nil)

		_, err := svc.Login(context.Background(), &domain.LoginInput{
			Email:    "user@example.com",
			Password: "wrong-password",
		})

		require.Error(t, err)
		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("does not reveal whether the account exists", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewAuthService(authTestConfig(), userRepo)

		userRepo.On("GetByEmail", mock.Anything, "nobody@example.com").
			Return(nil, apperrors.NotFound("user"))

		_, err := svc.Login(context.Background(), &domain.LoginInput{
			Email:    "nobody@example.com",
			Password: "whatever",
		})

		require.Error(t, err)
		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("rejects disabled account", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewAuthService(authTestConfig(), userRepo)

		disabled := *user
		disabled.IsActive = false
		userRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(&disabled, nil)

		_, err := svc.Login(context.Background(), &domain.LoginInput{
			Email:    "user@example.com",
			Password: "correct-password",
		})

		require.Error(t, err)
		assert.True(t, apperrors.IsUnauthorized(err))
	})
}

func TestAuthService_VerifyToken(t *testing.T) {
	t.Run("round-trips claims through a signed token", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewAuthService(authTestConfig(), userRepo)

		userRepo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
		userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		result, err := svc.Register(context.Background(), &domain.RegisterInput{
			Email:    "claims@example.com",
			Password: "hunter22secret",
		})
		require.NoError(t, err)

		claims, err := svc.VerifyToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "claims@example.com", claims.Email)
		assert.Equal(t, result.User.ID.String(), claims.UserID)
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		svc := NewAuthService(authTestConfig(), new(MockUserRepository))

		_, err := svc.VerifyToken("not.a.token")
		require.Error(t, err)
		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("rejects token signed with a different secret", func(t *testing.T) {
		other := authTestConfig()
		other.JWT.Secret = "a-different-secret-entirely"

		userRepo := new(MockUserRepository)
		userRepo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
		userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		issuer := NewAuthService(other, userRepo)
		result, err := issuer.Register(context.Background(), &domain.RegisterInput{
			Email:    "foreign@example.com",
			Password: "hunter22secret",
		})
		require.NoError(t, err)

		verifier := NewAuthService(authTestConfig(), new(MockUserRepository))
		_, err = verifier.VerifyToken(result.AccessToken)
		assert.Error(t, err)
	})
}
