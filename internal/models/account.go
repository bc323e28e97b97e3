// Package models provides the data structures persisted and exchanged by the
// authentication service.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
)

// AccountKind distinguishes the populations that authenticate against the service.
// Each kind is stored in its own table, so email uniqueness is per kind.
type AccountKind string

const (
	KindCustomer AccountKind = constants.AccountKindCustomer
	KindAdmin    AccountKind = constants.AccountKindAdmin
)

// ParseAccountKind converts a raw value, such as a console flag, into an AccountKind.
func ParseAccountKind(raw string) (AccountKind, error) {
	switch kind := AccountKind(strings.ToLower(strings.TrimSpace(raw))); kind {
	case KindCustomer, KindAdmin:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown account kind %q", raw)
	}
}

// TableName returns the table holding accounts of this kind.
func (k AccountKind) TableName() string {
	if k == KindAdmin {
		return constants.TableAdmins
	}
	return constants.TableCustomers
}

// ResponseKey is the envelope key under which an account of this kind is returned.
func (k AccountKind) ResponseKey() string {
	return string(k)
}

// String implements fmt.Stringer.
func (k AccountKind) String() string {
	return string(k)
}

// Account is a customer or administrator able to authenticate.
type Account struct {
	ID              int64       `json:"id" db:"id"`
	Kind            AccountKind `json:"-" db:"-"`
	Name            string      `json:"name" db:"name"`
	Email           string      `json:"email" db:"email"`
	PasswordHash    string      `json:"-" db:"password_hash"`
	AvatarURL       *string     `json:"avatar_url,omitempty" db:"avatar_url"`
	EmailVerifiedAt *time.Time  `json:"email_verified_at" db:"email_verified_at"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// NewAccount creates an Account of the given kind. The password hash is set
// by the credential store before the record is persisted.
func NewAccount(kind AccountKind, name, email string) *Account {
	now := time.Now().UTC()
	return &Account{
		Kind:      kind,
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TableName returns the database table name for the Account model.
func (a *Account) TableName() string {
	return a.Kind.TableName()
}

// Sanitize removes sensitive information from the Account object when sending to clients.
func (a *Account) Sanitize() *Account {
	sanitized := *a
	sanitized.PasswordHash = ""
	return &sanitized
}

// RegisterRequest is the payload of the register operation.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the payload of the login operation.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login: the plaintext bearer token,
// shown once, and the account it belongs to.
type AuthResult struct {
	Token   string
	Account *Account
}
