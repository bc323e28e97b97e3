package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/backoffice-auth/internal/auth"
	"github.com/yasinhessnawi1/backoffice-auth/internal/config"
	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
	"github.com/yasinhessnawi1/backoffice-auth/internal/repository"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils"
)

// ResetStatus is the outcome of a broker operation.
type ResetStatus string

const (
	ResetLinkSent         ResetStatus = constants.ResetStatusSent
	PasswordReset         ResetStatus = constants.ResetStatusReset
	ResetInvalidUser      ResetStatus = constants.ResetStatusInvalidUser
	ResetInvalidToken     ResetStatus = constants.ResetStatusInvalidToken
	ResetThrottled        ResetStatus = constants.ResetStatusThrottled
	ResetNotSent          ResetStatus = constants.ResetStatusNotSent
	ResetConfirmationFail ResetStatus = constants.ResetStatusConfirmation
)

// Key returns the status key, e.g. "passwords.sent".
func (s ResetStatus) Key() string {
	return string(s)
}

// Message returns the human readable text of the status.
func (s ResetStatus) Message() string {
	switch s {
	case ResetLinkSent:
		return constants.MsgResetSent
	case PasswordReset:
		return constants.MsgResetDone
	case ResetInvalidUser:
		return constants.MsgResetInvalidUser
	case ResetInvalidToken:
		return constants.MsgResetInvalidToken
	case ResetThrottled:
		return constants.MsgResetThrottled
	case ResetNotSent:
		return constants.MsgResetNotSent
	case ResetConfirmationFail:
		return fmt.Sprintf(constants.MsgFieldConfirmation, "password")
	default:
		return string(s)
	}
}

// ResetInput is a reset link redemption.
type ResetInput struct {
	Email                string
	Token                string
	Password             string
	PasswordConfirmation string
}

// PasswordResetBroker issues and redeems reset tickets for one account kind.
type PasswordResetBroker struct {
	kind        models.AccountKind
	credentials *CredentialStore
	resets      repository.PasswordResetRepository
	notifier    ResetNotifier
	ttl         time.Duration
	throttle    time.Duration
	resetURL    string
	now         func() time.Time
}

// NewPasswordResetBroker creates the broker of one account kind.
func NewPasswordResetBroker(
	kind models.AccountKind,
	credentials *CredentialStore,
	resets repository.PasswordResetRepository,
	notifier ResetNotifier,
	settings *config.PasswordResetSettings,
) *PasswordResetBroker {
	return &PasswordResetBroker{
		kind:        kind,
		credentials: credentials,
		resets:      resets,
		notifier:    notifier,
		ttl:         settings.TTL,
		throttle:    settings.Throttle,
		resetURL:    settings.ResetURL,
		now:         time.Now,
	}
}

// Kind returns the account kind served by the broker.
func (b *PasswordResetBroker) Kind() models.AccountKind {
	return b.kind
}

// RequestReset stores a new ticket for the email, replacing any earlier one,
// and hands the link to the delivery channel. Channel failures are returned
// as *DeliveryError.
func (b *PasswordResetBroker) RequestReset(ctx context.Context, email string) (ResetStatus, error) {
	account, err := b.credentials.FindByEmail(ctx, b.kind, email)
	if err != nil {
		return "", err
	}
	if account == nil {
		return ResetInvalidUser, utils.ErrUnknownEmail
	}

	now := b.now().UTC()

	if b.throttle > 0 {
		existing, err := b.resets.Get(ctx, b.kind, account.Email)
		if err != nil && !utils.IsNotFoundError(err) {
			return "", err
		}
		if existing != nil && existing.RecentlyCreated(b.throttle, now) {
			return ResetThrottled, nil
		}
	}

	token, err := auth.GenerateRandomToken(constants.ResetTokenBytes)
	if err != nil {
		return "", err
	}

	ticket := &models.PasswordResetTicket{
		AccountKind: b.kind,
		Email:       account.Email,
		TokenHash:   auth.HashToken(token),
		CreatedAt:   now,
	}
	if err := b.resets.Replace(ctx, ticket); err != nil {
		return "", err
	}

	sent, err := b.notifier.SendPasswordReset(ctx, PasswordResetMail{
		Kind:      b.kind,
		ToName:    account.Name,
		ToEmail:   account.Email,
		Token:     token,
		ResetURL:  b.ResetLink(token, account.Email),
		ExpiresIn: b.ttl,
	})
	if err != nil {
		return "", &DeliveryError{Err: err}
	}
	if !sent {
		return ResetNotSent, nil
	}

	return ResetLinkSent, nil
}

// ResetLink builds the link sent to the account holder.
func (b *PasswordResetBroker) ResetLink(token, email string) string {
	return fmt.Sprintf(b.resetURL, b.kind, token, url.QueryEscape(email))
}

// Redeem checks the ticket and sets the new password. The ticket can be
// redeemed once; concurrent redemptions of the same ticket let exactly one succeed.
func (b *PasswordResetBroker) Redeem(ctx context.Context, input ResetInput) (ResetStatus, error) {
	if input.Password != input.PasswordConfirmation {
		return ResetConfirmationFail, utils.ErrConfirmationMismatch
	}

	account, err := b.credentials.FindByEmail(ctx, b.kind, input.Email)
	if err != nil {
		return "", err
	}
	if account == nil {
		return ResetInvalidToken, utils.ErrInvalidOrExpiredTicket
	}

	ticket, err := b.resets.Get(ctx, b.kind, account.Email)
	if err != nil {
		if utils.IsNotFoundError(err) {
			return ResetInvalidToken, utils.ErrInvalidOrExpiredTicket
		}
		return "", err
	}

	if !auth.TokensMatch(input.Token, ticket.TokenHash) {
		return ResetInvalidToken, utils.ErrInvalidOrExpiredTicket
	}

	if ticket.IsExpired(b.ttl, b.now().UTC()) {
		// The holder presented it, so there is no reason to wait for the sweep.
		if err := b.resets.Delete(ctx, b.kind, account.Email); err != nil {
			log.Warn().Err(err).Str(constants.AccountKindContextKey, b.kind.String()).Msg("Failed to delete expired password reset ticket")
		}
		return ResetInvalidToken, utils.ErrInvalidOrExpiredTicket
	}

	passwordHash, err := b.credentials.HashPassword(input.Password)
	if err != nil {
		return "", err
	}

	consumed, err := b.resets.Redeem(ctx, b.kind, account.Email, ticket.TokenHash, account.ID, passwordHash)
	if err != nil {
		return "", err
	}
	if !consumed {
		return ResetInvalidToken, utils.ErrInvalidOrExpiredTicket
	}

	return PasswordReset, nil
}

// PruneExpired deletes the tickets older than the TTL.
func (b *PasswordResetBroker) PruneExpired(ctx context.Context) (int64, error) {
	count, err := b.resets.DeleteCreatedBefore(ctx, b.kind, b.now().UTC().Add(-b.ttl))
	if err != nil {
		return 0, err
	}
	return count, nil
}

// IsDeliveryError reports whether err came from the delivery channel.
func IsDeliveryError(err error) bool {
	var deliveryErr *DeliveryError
	return errors.As(err, &deliveryErr)
}

func logResetOutcome(kind models.AccountKind, event, email string, status ResetStatus, err error) {
	reason := status.Key()
	if err != nil && !errors.Is(err, utils.ErrInvalidOrExpiredTicket) && !errors.Is(err, utils.ErrConfirmationMismatch) {
		reason = err.Error()
	}
	success := err == nil && (status == ResetLinkSent || status == PasswordReset)
	utils.LogAuth(event, kind.String(), 0, email, success, reason)

	if err != nil && IsDeliveryError(err) {
		log.Error().Err(err).Str(constants.AccountKindContextKey, kind.String()).Msg("Reset link delivery failed")
	}
}
