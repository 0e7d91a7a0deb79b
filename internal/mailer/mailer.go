// Package mailer delivers transactional email through a configurable driver.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/socialgraph/internal/config"
)

// ErrDeliveryFailed wraps every failure to hand a message to the transport.
var ErrDeliveryFailed = errors.New("mail delivery failed")

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Text    string
}

// Mailer sends a single message. Implementations must honor ctx cancellation.
type Mailer interface {
	SendMail(ctx context.Context, msg Message) error
}

// New builds the Mailer selected by cfg.MailDriver.
func New(cfg *config.Config, logger *slog.Logger) (Mailer, error) {
	switch cfg.MailDriver {
	case config.MailDriverLog:
		return NewLogMailer(logger), nil
	case config.MailDriverSMTP:
		return NewSMTPMailer(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			Timeout:  cfg.MailTimeout,
		}), nil
	case config.MailDriverPostmark:
		return NewPostmarkMailer(PostmarkConfig{
			ServerToken: cfg.PostmarkServerToken,
			From:        cfg.MailFrom,
			BaseURL:     cfg.PostmarkBaseURL,
			Timeout:     cfg.MailTimeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.MailDriver)
	}
}

func deliveryError(driver string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDeliveryFailed, driver, err)
}
