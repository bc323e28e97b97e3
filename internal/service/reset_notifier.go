package service

import (
	"context"
	"time"

	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
)

// PasswordResetMail is what the delivery channel needs to send a reset link.
type PasswordResetMail struct {
	Kind      models.AccountKind
	ToName    string
	ToEmail   string
	Token     string
	ResetURL  string
	ExpiresIn time.Duration
}

// ResetNotifier delivers reset links. A channel that accepted the request
// but did not send it reports false without an error.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, msg PasswordResetMail) (bool, error)
}

// DeliveryError wraps a failure raised by the delivery channel.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return "password reset delivery failed: " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
