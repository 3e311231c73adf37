package domain

import (
	"time"

	"github.com/google/uuid"
)

// APIKey represents a stored third-party provider credential. The
// value is sealed at rest and only decrypted on explicit reveal or
// when a service resolves a key for a provider call.
type APIKey struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Provider       string     `json:"provider"`
	EncryptedValue string     `json:"-"`
	Preview        string     `json:"preview"`
	IsGlobal       bool       `json:"isGlobal"`
	AssignedTo     *uuid.UUID `json:"assignedTo,omitempty"`
	IsActive       bool       `json:"isActive"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	LastUsedAt     *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// IsExpired reports whether the key is past its expiry
func (k *APIKey) IsExpired(now time.Time) bool {
	return k.ExpiresAt != nil && now.After(*k.ExpiresAt)
}

// Usable reports whether the key may be handed to a provider call
func (k *APIKey) Usable(now time.Time) bool {
	return k.IsActive && !k.IsExpired(now)
}

// Preview masks a key value down to its last four characters.
func PreviewOf(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return "..." + value[len(value)-4:]
}

// APIKeyInput represents input for storing an API key
type APIKeyInput struct {
	Name       string     `json:"name" validate:"required,min=1,max=100"`
	Provider   string     `json:"provider" validate:"required,min=1,max=50"`
	Value      string     `json:"value" validate:"required,min=8"`
	IsGlobal   bool       `json:"isGlobal"`
	AssignedTo *uuid.UUID `json:"assignedTo,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// APIKeyUpdate represents a partial API key update
type APIKeyUpdate struct {
	Name      *string    `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Value     *string    `json:"value,omitempty" validate:"omitempty,min=8"`
	IsActive  *bool      `json:"isActive,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// APIKeyList represents a list of API keys
type APIKeyList struct {
	APIKeys    []APIKey `json:"apiKeys"`
	TotalCount int64    `json:"totalCount"`
}
