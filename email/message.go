// Package email turns subscription events into welcome emails.
package email

import (
	"github.com/quantonganh/newsletter"
)

// Boilerplate follows the greeting of every email
const Boilerplate = "You are receiving this email because you subscribed to one of our newsletters and consented to receive emails.\n" +
	"Remember that you can always cancel your subscription.\n" +
	"Best regards!\n"

// DefaultSubject is used when no subject is configured
const DefaultSubject = "Thank you for subscribing"

// NewMessage builds the welcome email of a subscriber
func NewMessage(s *newsletter.Subscription, subject string) *newsletter.Message {
	if subject == "" {
		subject = DefaultSubject
	}

	return &newsletter.Message{
		To:      s.Email,
		Name:    s.FirstName,
		Subject: subject,
		Body:    Greeting(s.FirstName) + Boilerplate,
	}
}

// Greeting addresses the subscriber by first name when known
func Greeting(firstName string) string {
	if firstName == "" {
		return "Dear user,\n"
	}
	return "Dear " + firstName + ",\n"
}
