package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tradeboard/tradeboard/internal/domain"
	"github.com/tradeboard/tradeboard/internal/pkg/database"
	apperrors "github.com/tradeboard/tradeboard/internal/pkg/errors"
)

// APIKeyRepository handles API key data operations in PostgreSQL
type APIKeyRepository struct {
	db *database.PostgresDB
}

// NewAPIKeyRepository creates a new API key repository
func NewAPIKeyRepository(db *database.PostgresDB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

const apiKeyColumns = `id, name, provider, encrypted_value, preview, is_global, assigned_to, is_active, expires_at, last_used_at, created_at, updated_at`

func scanAPIKey(row pgx.Row) (*domain.APIKey, error) {
	var key domain.APIKey
	err := row.Scan(
		&key.ID,
		&key.Name,
		&key.Provider,
		&key.EncryptedValue,
		&key.Preview,
		&key.IsGlobal,
		&key.AssignedTo,
		&key.IsActive,
		&key.ExpiresAt,
		&key.LastUsedAt,
		&key.CreatedAt,
		&key.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// Create creates a new API key
func (r *APIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	query := `
		INSERT INTO api_keys (id, name, provider, encrypted_value, preview, is_global, assigned_to, is_active, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		key.ID,
		key.Name,
		key.Provider,
		key.EncryptedValue,
		key.Preview,
		key.IsGlobal,
		key.AssignedTo,
		key.IsActive,
		key.ExpiresAt,
		key.CreatedAt,
		key.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("API key name already exists")
		}
		return fmt.Errorf("failed to create API key: %w", err)
	}

	return nil
}

// GetByID retrieves an API key by ID
func (r *APIKeyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE id = $1`

	key, err := scanAPIKey(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("API key")
		}
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}

	return key, nil
}

// GetByName retrieves an API key by its unique name
func (r *APIKeyRepository) GetByName(ctx context.Context, name string) (*domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE name = $1`

	key, err := scanAPIKey(r.db.Pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("API key")
		}
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}

	return key, nil
}

// List retrieves all API keys, newest first
func (r *APIKeyRepository) List(ctx context.Context) ([]domain.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}
	defer rows.Close()

	var keys []domain.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan API key: %w", err)
		}
		keys = append(keys, *key)
	}

	return keys, rows.Err()
}

// ResolveForProvider finds a usable key for a provider call. Global
// keys take precedence over user-assigned keys.
func (r *APIKeyRepository) ResolveForProvider(ctx context.Context, userID *uuid.UUID, provider string) (*domain.APIKey, error) {
	query := `
		SELECT ` + apiKeyColumns + `
		FROM api_keys
		WHERE provider = $1
		  AND is_active = true
		  AND (expires_at IS NULL OR expires_at > NOW())
		  AND (is_global = true OR assigned_to = $2)
		ORDER BY is_global DESC, created_at DESC
		LIMIT 1
	`

	key, err := scanAPIKey(r.db.Pool.QueryRow(ctx, query, provider, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("API key")
		}
		return nil, fmt.Errorf("failed to resolve API key: %w", err)
	}

	return key, nil
}

// Update updates an API key
func (r *APIKeyRepository) Update(ctx context.Context, key *domain.APIKey) error {
	query := `
		UPDATE api_keys
		SET name = $2, encrypted_value = $3, preview = $4, is_active = $5, expires_at = $6, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		key.ID,
		key.Name,
		key.EncryptedValue,
		key.Preview,
		key.IsActive,
		key.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("API key name already exists")
		}
		return fmt.Errorf("failed to update API key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("API key")
	}

	return nil
}

// TouchLastUsed stamps the key's last use time
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`

	_, err := r.db.Pool.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to touch API key: %w", err)
	}

	return nil
}

// Delete deletes an API key
func (r *APIKeyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete API key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("API key")
	}

	return nil
}
