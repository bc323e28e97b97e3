// Package auth provides password hashing, bearer token signing and the
// middleware that authenticates customers and administrators.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils"
)

// ContextKey is a custom type for context keys to prevent collisions.
type ContextKey string

// Context keys for storing authenticated account information.
const (
	AccountIDContextKey ContextKey = constants.AccountIDContextKey
	AccountContextKey   ContextKey = "account"
	TokenContextKey     ContextKey = "bearer_token"
)

// TokenAuthenticator resolves a bearer token to the account it was issued to.
// It rejects tokens that were revoked or replaced by a newer login.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, kind models.AccountKind, rawToken string) (*models.Account, error)
}

// ExtractBearerToken returns the token from the Authorization header.
func ExtractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(constants.HeaderAuthorization)
	if len(header) < len(constants.BearerTokenPrefix) ||
		!strings.EqualFold(header[:len(constants.BearerTokenPrefix)], constants.BearerTokenPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(constants.BearerTokenPrefix):])
	return token, token != ""
}

// RequireToken admits only requests carrying a live token of the given kind.
// The account is stored in the request context.
func RequireToken(kind models.AccountKind, authenticator TokenAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := ExtractBearerToken(r)
			if !ok {
				rejectRequest(w, r, kind, utils.ErrUnauthorized)
				return
			}

			account, err := authenticator.Authenticate(r.Context(), kind, token)
			if err != nil {
				rejectRequest(w, r, kind, err)
				return
			}

			ctx := context.WithValue(r.Context(), AccountContextKey, account)
			ctx = context.WithValue(ctx, AccountIDContextKey, account.ID)
			ctx = context.WithValue(ctx, TokenContextKey, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSignedToken admits requests carrying a token signed by this service
// for the given kind, whether or not it is still stored. Logout sits behind it
// so that revoking an already revoked token succeeds.
func RequireSignedToken(kind models.AccountKind, validator JWTValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := ExtractBearerToken(r)
			if !ok {
				rejectRequest(w, r, kind, utils.ErrUnauthorized)
				return
			}

			claims, err := validator.ValidateSignature(token, kind)
			if err != nil {
				rejectRequest(w, r, kind, err)
				return
			}

			ctx := context.WithValue(r.Context(), AccountIDContextKey, claims.AccountID)
			ctx = context.WithValue(ctx, TokenContextKey, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func rejectRequest(w http.ResponseWriter, r *http.Request, kind models.AccountKind, err error) {
	log.Info().
		Err(err).
		Str(constants.AccountKindContextKey, kind.String()).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Authentication failed")

	var appErr *utils.AppError
	if errors.As(err, &appErr) && appErr.StatusCode >= http.StatusInternalServerError {
		utils.ErrorFromAppError(w, appErr)
		return
	}

	utils.Unauthorized(w, constants.MsgAuthRequired)
}

// GetAccount returns the account stored by RequireToken.
func GetAccount(r *http.Request) (*models.Account, bool) {
	account, ok := r.Context().Value(AccountContextKey).(*models.Account)
	return account, ok
}

// GetAccountID returns the authenticated account ID.
func GetAccountID(r *http.Request) (int64, bool) {
	accountID, ok := r.Context().Value(AccountIDContextKey).(int64)
	return accountID, ok
}

// GetBearerToken returns the token presented by the authenticated request.
func GetBearerToken(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(TokenContextKey).(string)
	return token, ok
}
