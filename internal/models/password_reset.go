package models

import (
	"time"

	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
)

// PasswordResetTicket is the live reset token for one email of one account kind.
// A newer ticket replaces an older one; a redeemed ticket is deleted.
type PasswordResetTicket struct {
	AccountKind AccountKind `db:"account_kind"`
	Email       string      `db:"email"`
	TokenHash   string      `db:"token_hash"`
	CreatedAt   time.Time   `db:"created_at"`
}

// TableName returns the database table name for the PasswordResetTicket model.
func (t *PasswordResetTicket) TableName() string {
	return constants.TablePasswordResetTokens
}

// IsExpired reports whether the ticket is older than ttl at the given instant.
func (t *PasswordResetTicket) IsExpired(ttl time.Duration, now time.Time) bool {
	return !now.Before(t.CreatedAt.Add(ttl))
}

// RecentlyCreated reports whether the ticket was issued less than window ago.
func (t *PasswordResetTicket) RecentlyCreated(window time.Duration, now time.Time) bool {
	return window > 0 && now.Before(t.CreatedAt.Add(window))
}

// ForgotPasswordRequest is the payload of the forgot operation.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the payload submitted from the emailed reset link.
type ResetPasswordRequest struct {
	Token                string `json:"token" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
}
