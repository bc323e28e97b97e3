package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils"
)

// AuthService implements the authentication operations of one account kind.
type AuthService struct {
	kind        models.AccountKind
	credentials *CredentialStore
	tokens      *TokenIssuer
	broker      *PasswordResetBroker
}

// NewAuthService creates a new AuthService
func NewAuthService(
	kind models.AccountKind,
	credentials *CredentialStore,
	tokens *TokenIssuer,
	broker *PasswordResetBroker,
) *AuthService {
	return &AuthService{
		kind:        kind,
		credentials: credentials,
		tokens:      tokens,
		broker:      broker,
	}
}

// Kind returns the account kind served by the service.
func (s *AuthService) Kind() models.AccountKind {
	return s.kind
}

// Register creates an account and issues its first token. Every field rule
// is checked before anything is written.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResult, error) {
	fields, err := utils.CollectValidationErrors(req)
	if err != nil {
		return nil, utils.NewBadRequestError(err.Error())
	}
	if fields == nil {
		fields = utils.ValidationErrors{}
	}

	if !fields.Has("email") {
		exists, err := s.credentials.EmailExists(ctx, s.kind, req.Email)
		if err != nil {
			return nil, utils.NewInternalServerError(fmt.Errorf("failed to check email existence: %w", err))
		}
		if exists {
			fields.Add("email", fmt.Sprintf(constants.MsgFieldTaken, "email"))
		}
	}

	if len(fields) > 0 {
		return nil, utils.NewValidationErrors(fields)
	}

	account, err := s.credentials.Create(ctx, s.kind, req.Name, req.Email, req.Password)
	if err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, utils.ErrDuplicateEmail) {
			return nil, utils.NewDuplicateEmailError()
		}
		utils.LogAuth("register", s.kind.String(), 0, req.Email, false, err.Error())
		return nil, utils.NewTokenCreationError(err)
	}

	issued, err := s.tokens.Issue(ctx, account)
	if err != nil {
		utils.LogAuth("register", s.kind.String(), account.ID, account.Email, false, err.Error())
		return nil, utils.NewTokenCreationError(err)
	}

	utils.LogAuth("register", s.kind.String(), account.ID, account.Email, true, "")

	return &models.AuthResult{Token: issued.PlainText, Account: account.Sanitize()}, nil
}

// Login checks the credentials and starts a new session, revoking every
// earlier token of the account.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	account, err := s.credentials.FindByEmail(ctx, s.kind, req.Email)
	if err != nil {
		return nil, utils.NewInternalServerError(err)
	}

	if account == nil || !s.credentials.VerifyPassword(account, req.Password) {
		utils.LogAuth("login", s.kind.String(), 0, req.Email, false, "invalid credentials")
		return nil, utils.NewInvalidCredentialsError()
	}

	s.credentials.RehashIfNeeded(ctx, account, req.Password)

	issued, err := s.tokens.IssueFresh(ctx, account)
	if err != nil {
		utils.LogAuth("login", s.kind.String(), account.ID, account.Email, false, err.Error())
		return nil, utils.NewTokenCreationError(err)
	}

	utils.LogAuth("login", s.kind.String(), account.ID, account.Email, true, "")

	return &models.AuthResult{Token: issued.PlainText, Account: account.Sanitize()}, nil
}

// Logout revokes the presented token. A token that was already revoked is
// accepted silently.
func (s *AuthService) Logout(ctx context.Context, accountID int64, bearer string) error {
	if err := s.tokens.Revoke(ctx, s.kind, bearer); err != nil {
		return utils.NewInternalServerError(fmt.Errorf("failed to revoke token: %w", err))
	}

	utils.LogAuth("logout", s.kind.String(), accountID, "", true, "")
	return nil
}

// Forgot sends a reset link to a registered email.
func (s *AuthService) Forgot(ctx context.Context, req *models.ForgotPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	exists, err := s.credentials.EmailExists(ctx, s.kind, req.Email)
	if err != nil {
		return utils.NewInternalServerError(fmt.Errorf("failed to check email existence: %w", err))
	}
	if !exists {
		return utils.NewValidationError("email", fmt.Sprintf(constants.MsgFieldNotFound, "email"))
	}

	status, err := s.broker.RequestReset(ctx, req.Email)
	logResetOutcome(s.kind, "forgot", req.Email, status, err)

	if err != nil {
		var deliveryErr *DeliveryError
		if errors.As(err, &deliveryErr) {
			return utils.NewRequestProcessingError(deliveryErr.Err)
		}
		if errors.Is(err, utils.ErrUnknownEmail) {
			return utils.NewValidationError("email", fmt.Sprintf(constants.MsgFieldNotFound, "email"))
		}
		return utils.NewUnableToSendResetLinkError(err.Error())
	}

	if status != ResetLinkSent {
		return utils.NewUnableToSendResetLinkError(status.Key())
	}

	return nil
}

// Reset redeems a reset ticket and returns the resulting status.
func (s *AuthService) Reset(ctx context.Context, req *models.ResetPasswordRequest) (ResetStatus, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return "", err
	}

	status, err := s.broker.Redeem(ctx, ResetInput{
		Email:                req.Email,
		Token:                req.Token,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	logResetOutcome(s.kind, "reset", req.Email, status, err)

	switch {
	case err == nil:
		s.endSessions(ctx, req.Email)
		return status, nil
	case errors.Is(err, utils.ErrConfirmationMismatch):
		return status, utils.NewValidationError("password", status.Message())
	case errors.Is(err, utils.ErrInvalidOrExpiredTicket):
		return status, utils.NewValidationError("email", status.Message())
	default:
		utils.LogError(err, map[string]interface{}{
			"operation":                     "password_reset",
			constants.AccountKindContextKey: s.kind.String(),
			constants.EmailContextKey:       utils.MaskEmail(req.Email),
		})
		return "", utils.NewInternalServerError(err)
	}
}

// endSessions revokes the tokens issued before a password reset. The reset
// itself already succeeded, so failures are only logged.
func (s *AuthService) endSessions(ctx context.Context, email string) {
	account, err := s.credentials.FindByEmail(ctx, s.kind, email)
	if err == nil && account != nil {
		_, err = s.tokens.RevokeAll(ctx, account)
	}
	if err != nil {
		utils.LogError(err, map[string]interface{}{
			"operation":                     "revoke_tokens_after_reset",
			constants.AccountKindContextKey: s.kind.String(),
		})
	}
}

// Authenticate resolves a bearer token to its account.
func (s *AuthService) Authenticate(ctx context.Context, kind models.AccountKind, bearer string) (*models.Account, error) {
	return s.tokens.Authenticate(ctx, kind, bearer)
}
