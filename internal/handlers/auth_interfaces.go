// Package handlers provides HTTP request handlers for the authentication API.
package handlers

import (
	"context"

	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
	"github.com/yasinhessnawi1/backoffice-auth/internal/service"
)

// AuthServiceInterface defines the methods required from the authentication service.
// One implementation serves one account kind; the handler is mounted once per kind.
type AuthServiceInterface interface {
	// Kind returns the account kind served by the service.
	Kind() models.AccountKind

	// Register creates an account and issues its first token.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - req: Name, email and password of the new account
	//
	// Returns:
	//   - The plaintext token and the sanitized account
	//   - A 422 AppError carrying per-field messages, or a 500 AppError
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResult, error)

	// Login checks the credentials, revokes every earlier token of the
	// account and issues a new one.
	//
	// Returns:
	//   - The plaintext token and the sanitized account
	//   - A 401 AppError for an unknown email or a wrong password alike
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error)

	// Logout revokes the presented bearer token of accountID. Revoking an
	// already revoked token succeeds.
	Logout(ctx context.Context, accountID int64, bearer string) error

	// Forgot stores a reset ticket for the email and sends the reset link.
	Forgot(ctx context.Context, req *models.ForgotPasswordRequest) error

	// Reset redeems a reset ticket and sets the new password.
	//
	// Returns:
	//   - The broker status of the redemption
	//   - A 422 AppError when the ticket is unusable or the confirmation differs
	Reset(ctx context.Context, req *models.ResetPasswordRequest) (service.ResetStatus, error)
}
