package mailer

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrDisabled is returned by senders that were configured off.
var ErrDisabled = errors.New("mailer: sending disabled")

// Sender delivers one rendered email. html is optional.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Config selects and configures a Sender.
type Config struct {
	Provider      string // mailgun, resend, log
	From          string
	Enabled       bool
	MailgunDomain string
	MailgunAPIKey string
	ResendAPIKey  string
}

// New builds the Sender named by cfg.Provider. Unknown providers, missing
// credentials and Enabled=false all fall back to a LogSender so the
// notification path never depends on mail configuration.
func New(cfg Config, logger *logrus.Logger) Sender {
	if !cfg.Enabled {
		return NewLogSender(logger)
	}
	switch strings.ToLower(cfg.Provider) {
	case "mailgun":
		if cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" {
			return NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.From)
		}
		logger.Warn("mailgun selected but MAILGUN_DOMAIN/MAILGUN_API_KEY missing; logging emails instead")
	case "resend":
		if cfg.ResendAPIKey != "" {
			return NewResend(cfg.ResendAPIKey, cfg.From)
		}
		logger.Warn("resend selected but RESEND_API_KEY missing; logging emails instead")
	}
	return NewLogSender(logger)
}

// LogSender writes the email to the log instead of delivering it.
type LogSender struct {
	logger *logrus.Logger
}

func NewLogSender(logger *logrus.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (l *LogSender) Send(_ context.Context, to, subject, text, _ string) error {
	l.logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
		"bytes":   len(text),
	}).Info("email (log provider)")
	return nil
}
