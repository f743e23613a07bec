// Package gmail delivers emails through an SMTP server such as Gmail.
package gmail

import (
	"context"
	"strings"

	"github.com/matcornic/hermes/v2"
	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"

	"github.com/quantonganh/newsletter"
)

// Config holds the SMTP account and the branding of the emails
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	ProductName string
	ProductLink string
}

// Sender delivers a composed message
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type mailer struct {
	config Config
	hermes hermes.Hermes
	sender Sender
}

// NewMailer returns a mailer that renders HTML emails and sends them over SMTP
func NewMailer(config Config) newsletter.Mailer {
	return newMailer(config, gomail.NewDialer(config.Host, config.Port, config.Username, config.Password))
}

func newMailer(config Config, sender Sender) *mailer {
	return &mailer{
		config: config,
		hermes: hermes.Hermes{
			Product: hermes.Product{
				Name: config.ProductName,
				Link: config.ProductLink,
			},
		},
		sender: sender,
	}
}

// Send renders the message body as HTML and sends it
func (m *mailer) Send(_ context.Context, msg *newsletter.Message) error {
	html, err := m.render(msg)
	if err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.config.From)
	gm.SetAddressHeader("To", msg.To, msg.Name)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	gm.AddAlternative("text/html", html)

	if err := m.sender.DialAndSend(gm); err != nil {
		return errors.Errorf("failed to send mail to %s: %v", msg.To, err)
	}

	return nil
}

// render lays out the plain text body: the first line is the greeting, the rest are paragraphs
func (m *mailer) render(msg *newsletter.Message) (string, error) {
	lines := strings.Split(strings.TrimRight(msg.Body, "\n"), "\n")

	body := hermes.Body{
		Greeting:  strings.TrimSuffix(lines[0], ","),
		Signature: "Best regards",
	}
	for _, line := range lines[1:] {
		if line == "" || strings.HasPrefix(line, "Best regards") {
			continue
		}
		body.Intros = append(body.Intros, line)
	}

	html, err := m.hermes.GenerateHTML(hermes.Email{Body: body})
	if err != nil {
		return "", errors.Errorf("failed to generate HTML email: %v", err)
	}

	return html, nil
}
