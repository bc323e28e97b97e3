package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/yasinhessnawi1/backoffice-auth/internal/config"
	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils"
)

const sendGridMailEndpoint = "/v3/mail/send"

// EmailService sends reset links through SendGrid.
type EmailService struct {
	apiKey   string
	host     string
	fromName string
	fromAddr string
}

// NewEmailService creates a new EmailService from the mail settings.
func NewEmailService(cfg *config.MailSettings) (*EmailService, error) {
	if cfg.SendGridAPIKey == "" {
		return nil, fmt.Errorf("sendgrid api key not configured")
	}

	host := cfg.SendGridHost
	if host == "" {
		host = constants.DefaultSendGridHost
	}

	return &EmailService{
		apiKey:   cfg.SendGridAPIKey,
		host:     host,
		fromName: cfg.FromName,
		fromAddr: cfg.FromAddress,
	}, nil
}

// SendPasswordReset sends the reset link. A response outside 2xx means the
// message was not accepted and is reported as not sent.
func (s *EmailService) SendPasswordReset(ctx context.Context, msg PasswordResetMail) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.MailSendTimeout)
	defer cancel()

	from := mail.NewEmail(s.fromName, s.fromAddr)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	subject := "Reset Password Notification"
	plainTextContent := fmt.Sprintf(
		"You are receiving this email because we received a password reset request for your account.\n\n%s\n\nThis password reset link will expire in %d minutes.\n\nIf you did not request a password reset, no further action is required.",
		msg.ResetURL, int(msg.ExpiresIn.Minutes()),
	)
	htmlContent := fmt.Sprintf(
		"<p>You are receiving this email because we received a password reset request for your account.</p><p><a href=\"%s\">Reset Password</a></p><p>This password reset link will expire in %d minutes.</p><p>If you did not request a password reset, no further action is required.</p>",
		msg.ResetURL, int(msg.ExpiresIn.Minutes()),
	)
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	request := sendgrid.GetRequest(s.apiKey, sendGridMailEndpoint, s.host)
	request.Method = http.MethodPost
	request.Body = mail.GetRequestBody(message)

	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		log.Error().Err(err).Msg("Failed to send password reset email")
		return false, err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		log.Warn().
			Int("status_code", response.StatusCode).
			Str(constants.EmailContextKey, utils.MaskEmail(msg.ToEmail)).
			Msg("Password reset email rejected")
		return false, nil
	}

	log.Info().
		Int("status_code", response.StatusCode).
		Str(constants.EmailContextKey, utils.MaskEmail(msg.ToEmail)).
		Msg("Password reset email sent")
	return true, nil
}

// LogMailer writes reset links to the log instead of sending them.
// It is meant for development.
type LogMailer struct{}

// SendPasswordReset logs the reset link.
func (LogMailer) SendPasswordReset(_ context.Context, msg PasswordResetMail) (bool, error) {
	log.Info().
		Str(constants.AccountKindContextKey, msg.Kind.String()).
		Str(constants.EmailContextKey, utils.MaskEmail(msg.ToEmail)).
		Str("reset_url", msg.ResetURL).
		Msg("Password reset link")
	return true, nil
}

// NewResetNotifier selects the delivery channel configured in cfg.
func NewResetNotifier(cfg *config.MailSettings) (ResetNotifier, error) {
	switch cfg.Provider {
	case constants.MailProviderSendGrid:
		service, err := NewEmailService(cfg)
		if err != nil {
			return nil, err
		}
		return service, nil
	case constants.MailProviderLog, "":
		return LogMailer{}, nil
	default:
		return nil, fmt.Errorf("unsupported mail provider: %s", cfg.Provider)
	}
}
