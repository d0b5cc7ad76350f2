package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"vaidya/internal/config"
)

// Mailer delivers one HTML e-mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NewMailer picks the provider named by MAIL_PROVIDER.
func NewMailer(cfg *config.Config) Mailer {
	switch cfg.MailProvider {
	case "postmark":
		return NewPostmarkMailer(cfg.PostmarkAPIToken, cfg.MailFrom)
	case "sendgrid":
		return NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFrom)
	default:
		return LogMailer{}
	}
}

// PostmarkMailer sends e-mail using Postmark.
type PostmarkMailer struct {
	client *postmark.Client
	from   string
}

// NewPostmarkMailer creates a Postmark-backed mailer.
func NewPostmarkMailer(serverToken, from string) *PostmarkMailer {
	return &PostmarkMailer{
		client: postmark.NewClient(serverToken, ""),
		from:   from,
	}
}

func (m *PostmarkMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	_, err := m.client.SendEmail(postmark.Email{
		From:     m.from,
		To:       to,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: htmlBody,
	})
	if err != nil {
		return fmt.Errorf("failed to send email via postmark: %w", err)
	}
	return nil
}

// SendGridMailer sends e-mail using SendGrid.
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridMailer creates a SendGrid-backed mailer.
func NewSendGridMailer(apiKey, from string) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("Vaidya", from),
	}
}

func (m *SendGridMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", to), htmlBody, htmlBody)
	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid rejected email: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer only logs the message. Used in development.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	log.Printf("Mail to %s: %s", to, subject)
	return nil
}
