package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/backoffice-auth/internal/auth"
	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
	"github.com/yasinhessnawi1/backoffice-auth/internal/repository"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils"
)

// IssuedToken pairs the bearer value, shown to the client once, with its
// persisted record.
type IssuedToken struct {
	PlainText string
	Token     *models.AuthToken
}

// TokenIssuer creates, checks and revokes bearer tokens.
type TokenIssuer struct {
	tokens   repository.TokenRepository
	accounts repository.AccountRepository
	signer   auth.TokenSigner
	now      func() time.Time
}

// NewTokenIssuer creates a new TokenIssuer
func NewTokenIssuer(tokens repository.TokenRepository, accounts repository.AccountRepository, signer auth.TokenSigner) *TokenIssuer {
	return &TokenIssuer{
		tokens:   tokens,
		accounts: accounts,
		signer:   signer,
		now:      time.Now,
	}
}

// Issue creates an additional token for the account.
func (i *TokenIssuer) Issue(ctx context.Context, account *models.Account) (*IssuedToken, error) {
	issued, err := i.sign(account)
	if err != nil {
		return nil, err
	}

	if err := i.tokens.Create(ctx, issued.Token); err != nil {
		return nil, err
	}

	return issued, nil
}

// IssueFresh revokes every token of the account and issues a new one, as a
// single step with respect to other logins of the same account.
func (i *TokenIssuer) IssueFresh(ctx context.Context, account *models.Account) (*IssuedToken, error) {
	issued, err := i.sign(account)
	if err != nil {
		return nil, err
	}

	if err := i.tokens.ReplaceForAccount(ctx, issued.Token); err != nil {
		return nil, err
	}

	return issued, nil
}

func (i *TokenIssuer) sign(account *models.Account) (*IssuedToken, error) {
	plainText, expiresAt, err := i.signer.GenerateToken(account.ID, account.Kind)
	if err != nil {
		return nil, err
	}

	token := models.NewAuthToken(account, auth.HashToken(plainText), 0)
	token.ExpiresAt = expiresAt

	return &IssuedToken{PlainText: plainText, Token: token}, nil
}

// RevokeAll deletes every token of the account.
func (i *TokenIssuer) RevokeAll(ctx context.Context, account *models.Account) (int64, error) {
	return i.tokens.DeleteByAccount(ctx, account.Kind, account.ID)
}

// Revoke deletes the token with the given bearer value. Revoking a token that
// no longer exists is not an error.
func (i *TokenIssuer) Revoke(ctx context.Context, kind models.AccountKind, plainText string) error {
	count, err := i.tokens.DeleteByHash(ctx, kind, auth.HashToken(plainText))
	if err != nil {
		return err
	}

	log.Debug().
		Str(constants.AccountKindContextKey, kind.String()).
		Int64("revoked", count).
		Msg("Token revoked")

	return nil
}

// Authenticate resolves a bearer value to its account. The token must carry a
// valid signature for the kind, must not be expired and must still be stored.
func (i *TokenIssuer) Authenticate(ctx context.Context, kind models.AccountKind, plainText string) (*models.Account, error) {
	claims, err := i.signer.ValidateToken(plainText, kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrUnauthorized, err)
	}

	token, err := i.tokens.GetByHash(ctx, kind, auth.HashToken(plainText))
	if err != nil {
		if utils.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: token revoked", utils.ErrUnauthorized)
		}
		return nil, utils.NewInternalServerError(err)
	}

	if token.AccountID != claims.AccountID || token.IsExpired() {
		return nil, fmt.Errorf("%w: token does not match its record", utils.ErrUnauthorized)
	}

	account, err := i.accounts.GetByID(ctx, kind, token.AccountID)
	if err != nil {
		if utils.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: account removed", utils.ErrUnauthorized)
		}
		return nil, utils.NewInternalServerError(err)
	}

	if err := i.tokens.Touch(ctx, token.ID, i.now()); err != nil {
		log.Warn().Err(err).Int64("token_id", token.ID).Msg("Failed to record token use")
	}

	return account, nil
}

// PruneExpired deletes tokens whose expiry has passed.
func (i *TokenIssuer) PruneExpired(ctx context.Context) (int64, error) {
	return i.tokens.DeleteExpired(ctx, i.now())
}
