package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// EmailSender sends a single email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogEmailSender logs emails instead of sending them — used when ENV=local
// or when no Resend API key is configured.
type LogEmailSender struct {
	logger *slog.Logger
}

func NewLogEmailSender(logger *slog.Logger) *LogEmailSender {
	return &LogEmailSender{logger: logger}
}

func (s *LogEmailSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("schedule email (local dev)", "to", to, "subject", subject, "body", body)
	return nil
}

// ResendEmailSender sends email via the Resend API.
type ResendEmailSender struct {
	client *resend.Client
	from   string
}

func NewResendEmailSender(apiKey, from string) *ResendEmailSender {
	return &ResendEmailSender{client: resend.NewClient(apiKey), from: from}
}

func (s *ResendEmailSender) Send(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NewEmailSender returns a LogEmailSender for ENV=local or when apiKey is
// empty, ResendEmailSender otherwise.
func NewEmailSender(env, apiKey, from string, logger *slog.Logger) EmailSender {
	if env == "local" || apiKey == "" {
		return NewLogEmailSender(logger)
	}
	return NewResendEmailSender(apiKey, from)
}
