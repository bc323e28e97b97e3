package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/yasinhessnawi1/backoffice-auth/internal/config"
	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
)

// JWT errors
var (
	ErrInvalidToken         = errors.New("invalid token")
	ErrExpiredToken         = errors.New("token has expired")
	ErrInvalidSigningMethod = errors.New("invalid signing method")
	ErrWrongAccountKind     = errors.New("token belongs to another account kind")
)

// Claims are carried by every bearer token. The token ID makes two tokens
// issued within the same second distinct.
type Claims struct {
	AccountID int64              `json:"account_id"`
	Kind      models.AccountKind `json:"kind"`
	jwt.RegisteredClaims
}

// JWTService signs and parses bearer tokens.
type JWTService struct {
	config *config.TokenSettings
	now    func() time.Time
}

// NewJWTService creates a new JWTService instance
func NewJWTService(cfg *config.TokenSettings) *JWTService {
	return &JWTService{
		config: cfg,
		now:    time.Now,
	}
}

// GenerateToken signs a token for the account. expiresAt is nil when tokens
// are configured not to expire.
func (s *JWTService) GenerateToken(accountID int64, kind models.AccountKind) (string, *time.Time, error) {
	now := s.now().UTC()

	claims := Claims{
		AccountID: accountID,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   strconv.FormatInt(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	var expiresAt *time.Time
	if s.config.Expiry > 0 {
		exp := now.Add(s.config.Expiry)
		expiresAt = &exp
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken checks the signature, the time claims and the account kind.
func (s *JWTService) ValidateToken(tokenString string, kind models.AccountKind) (*Claims, error) {
	return s.parse(tokenString, kind, jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})))
}

// ValidateSignature checks the signature and the account kind but accepts an
// expired token, so an expired session can still be logged out.
func (s *JWTService) ValidateSignature(tokenString string, kind models.AccountKind) (*Claims, error) {
	return s.parse(tokenString, kind, jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	))
}

func (s *JWTService) parse(tokenString string, kind models.AccountKind, parser *jwt.Parser) (*Claims, error) {
	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if s.config.Issuer != "" && claims.Issuer != s.config.Issuer {
		return nil, ErrInvalidToken
	}

	if claims.Kind != kind {
		return nil, ErrWrongAccountKind
	}

	if claims.AccountID <= 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
