package services

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

// EmailSender delivers transactional mail. Implementations are best-effort;
// callers log failures and move on.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type SMTPSender struct {
	host     string
	port     string
	username string
	password string
}

func NewSMTPSender(host, port, username, password string) (*SMTPSender, error) {
	if host == "" {
		return nil, fmt.Errorf("SMTP_HOST not set")
	}
	if username == "" || password == "" {
		return nil, fmt.Errorf("SMTP credentials not set")
	}
	return &SMTPSender{host: host, port: port, username: username, password: password}, nil
}

func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	msg := []byte(
		"From: " + s.username + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			body,
	)

	if err := smtp.SendMail(addr, auth, s.username, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

// NoopEmailSender is used when SMTP is not configured; it logs instead of
// sending so the rest of the system stays unconditional.
type NoopEmailSender struct {
	Logger *zap.Logger
}

func (s *NoopEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	if s.Logger != nil {
		s.Logger.Info("Email sending disabled; dropping message",
			zap.String("to", to),
			zap.String("subject", subject),
		)
	}
	return nil
}
