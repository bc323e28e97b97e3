package models

import (
	"time"

	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
)

// AuthToken is the persisted half of a bearer token.
// Only the SHA-256 hash of the token handed to the client is stored, so a
// leaked table cannot be replayed.
type AuthToken struct {
	ID          int64       `json:"id" db:"id"`
	AccountKind AccountKind `json:"-" db:"account_kind"`
	AccountID   int64       `json:"account_id" db:"account_id"`
	Name        string      `json:"name" db:"name"`
	TokenHash   string      `json:"-" db:"token_hash"`
	LastUsedAt  *time.Time  `json:"last_used_at" db:"last_used_at"`
	ExpiresAt   *time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// NewAuthToken creates a token record for the account. A zero ttl creates a
// token that stays valid until it is revoked.
func NewAuthToken(account *Account, tokenHash string, ttl time.Duration) *AuthToken {
	now := time.Now().UTC()
	token := &AuthToken{
		AccountKind: account.Kind,
		AccountID:   account.ID,
		Name:        constants.DefaultTokenName,
		TokenHash:   tokenHash,
		CreatedAt:   now,
	}
	if ttl > 0 {
		expiresAt := now.Add(ttl)
		token.ExpiresAt = &expiresAt
	}
	return token
}

// TableName returns the database table name for the AuthToken model.
func (t *AuthToken) TableName() string {
	return constants.TableAuthTokens
}

// IsExpired reports whether the token carries an expiry that has passed.
func (t *AuthToken) IsExpired() bool {
	return t.ExpiresAt != nil && time.Now().After(*t.ExpiresAt)
}
