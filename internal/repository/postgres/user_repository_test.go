package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeboard/tradeboard/internal/domain"
	apperrors "github.com/tradeboard/tradeboard/internal/pkg/errors"
)

// createTestUser creates a user with test data
func createTestUser(email string) *domain.User {
	now := time.Now()
	return &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: "$2a$10$testpasswordhash",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_Create(t *testing.T) {
	db := getTestDB(t)
	if db == nil {
		return
	}
	defer db.Close()

	repo := NewUserRepository(db)
	ctx := context.Background()
	email := "test-create@example.com"

	// Cleanup before and after
	cleanupUsers(t, db, email)
	defer cleanupUsers(t, db, email)

	user := createTestUser(email)

	err := repo.Create(ctx, user)
	require.NoError(t, err)

	// Verify by fetching
	fetched, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, fetched.ID)
	assert.Equal(t, user.Email, fetched.Email)
	assert.Equal(t, user.Name, fetched.Name)
	assert.True(t, fetched.IsActive)
}

func TestUserRepository_GetByID(t *testing.T) {
	db := getTestDB(t)
	if db == nil {
		return
	}
	defer db.Close()

	repo := NewUserRepository(db)
	ctx := context.Background()
	email := "test-getbyid@example.com"

	cleanupUsers(t, db, email)
	defer cleanupUsers(t, db, email)

	user := createTestUser(email)
	err := repo.Create(ctx, user)
	require.NoError(t, err)

	t.Run("existing user", func(t *testing.T) {
		fetched, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, fetched.ID)
		assert.Equal(t, user.Email, fetched.Email)
		assert.Equal(t, user.Name, fetched.Name)
	})

	t.Run("non-existent user", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db := getTestDB(t)
	if db == nil {
		return
	}
	defer db.Close()

	repo := NewUserRepository(db)
	ctx := context.Background()
	email := "test-getbyemail@example.com"

	cleanupUsers(t, db, email)
	defer cleanupUsers(t, db, email)

	user := createTestUser(email)
	err := repo.Create(ctx, user)
	require.NoError(t, err)

	t.Run("existing email", func(t *testing.T) {
		fetched, err := repo.GetByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, user.ID, fetched.ID)
		assert.Equal(t, user.Email, fetched.Email)
	})

	t.Run("non-existent email", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "nonexistent@example.com")
		assert.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	db := getTestDB(t)
	if db == nil {
		return
	}
	defer db.Close()

	repo := NewUserRepository(db)
	ctx := context.Background()
	email := "test-exists@example.com"

	cleanupUsers(t, db, email)
	defer cleanupUsers(t, db, email)

	t.Run("user does not exist", func(t *testing.T) {
		exists, err := repo.ExistsByEmail(ctx, email)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("user exists", func(t *testing.T) {
		user := createTestUser(email)
		err := repo.Create(ctx, user)
		require.NoError(t, err)

		exists, err := repo.ExistsByEmail(ctx, email)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
