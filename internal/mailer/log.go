package mailer

import (
	"context"
	"log/slog"

	"github.com/utafrali/socialgraph/pkg/logger"
)

// LogMailer writes messages to the log instead of sending them. It exists for
// local development, where the reset link is read from the service output.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer. A nil logger discards output.
func NewLogMailer(l *slog.Logger) *LogMailer {
	if l == nil {
		l = logger.Discard()
	}
	return &LogMailer{logger: l}
}

// SendMail logs msg and always succeeds unless ctx is done.
func (m *LogMailer) SendMail(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return deliveryError("log", err)
	}
	m.logger.InfoContext(ctx, "mail sent",
		slog.String("driver", "log"),
		slog.String("to", logger.RedactEmail(msg.To)),
		slog.String("subject", msg.Subject),
		slog.String("text", msg.Text),
	)
	return nil
}
