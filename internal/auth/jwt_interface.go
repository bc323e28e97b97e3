package auth

import (
	"time"

	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
)

// JWTValidator defines the interface for JWT validation
type JWTValidator interface {
	// ValidateToken validates a token and returns its claims if valid
	ValidateToken(tokenString string, kind models.AccountKind) (*Claims, error)

	// ValidateSignature validates the signature and kind of a token, ignoring its expiry
	ValidateSignature(tokenString string, kind models.AccountKind) (*Claims, error)
}

// TokenSigner issues tokens and validates the ones it issued.
type TokenSigner interface {
	JWTValidator

	// GenerateToken signs a new token for the account
	GenerateToken(accountID int64, kind models.AccountKind) (string, *time.Time, error)
}
