package newsletter

import "context"

// Message is an email to a subscriber
type Message struct {
	To      string
	Name    string
	Subject string
	Body    string
}

// Mailer is the interface that wraps methods related to email delivery
type Mailer interface {
	Send(ctx context.Context, m *Message) error
}
