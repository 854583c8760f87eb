package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional email through Resend. In development it only logs.
type EmailService struct {
	client    *resend.Client
	fromEmail string
	appURL    string
	isDev     bool
}

// NewEmailService creates a new EmailService.
func NewEmailService(apiKey, fromEmail, appURL string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		appURL:    appURL,
		isDev:     isDev,
	}
}

func (s *EmailService) resetURL(token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", s.appURL, url.QueryEscape(token))
}

func passwordResetEmailTemplate(resetURL string) (subject, body string) {
	subject = "Reset your ReframeMe password"
	body = fmt.Sprintf(`Hi,

We received a request to reset the password for your ReframeMe account.

Use the link below to choose a new password. It expires soon and can only be used once.

%s

If you did not ask for this, you can ignore this email.

The ReframeMe team
`, resetURL)
	return subject, body
}

// SendPasswordResetEmail delivers the reset link for token to email.
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	resetURL := s.resetURL(token)
	subject, body := passwordResetEmailTemplate(resetURL)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "password_reset", "to", email, "subject", subject, "url", resetURL)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{email},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", "password_reset", "to", email)
	}
	return err
}
