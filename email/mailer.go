package email

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/quantonganh/newsletter"
)

// LogMailer only logs the emails it is asked to send
type LogMailer struct {
	logger zerolog.Logger
}

var _ newsletter.Mailer = (*LogMailer)(nil)

// NewLogMailer returns a mailer writing to logger
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message
func (m *LogMailer) Send(_ context.Context, msg *newsletter.Message) error {
	m.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("email sent")
	return nil
}
