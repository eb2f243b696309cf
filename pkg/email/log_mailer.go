package email

import (
	"context"
	"log/slog"
	"time"
)

// LogMailer stands in for SMTP during development: it waits for delay and logs the message.
type LogMailer struct {
	log   *slog.Logger
	delay time.Duration
}

func NewLogMailer(log *slog.Logger, delay time.Duration) *LogMailer {
	return &LogMailer{log: log.With("component", "log_mailer"), delay: delay}
}

func (m *LogMailer) SendContactEmail(ctx context.Context, data ContactEmailData) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.log.Info("Contact message delivered to log",
		"name", data.SenderName,
		"service", data.Service,
		"message_length", len(data.Message),
	)
	return nil
}

func (m *LogMailer) SendNewsletterSignup(ctx context.Context, subscriber string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.log.Info("Newsletter signup delivered to log")
	return nil
}

func (m *LogMailer) IsConfigured() bool {
	return true
}

func (m *LogMailer) wait(ctx context.Context) error {
	if m.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(m.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
